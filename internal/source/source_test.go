package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/dynmod/internal/source"
)

func TestHTTPSource_Read(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/libs/foo.hcl" {
			_, _ = w.Write([]byte(`answer = 42`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := source.NewHTTPSource(srv.URL)
	defer func() { _ = s.Close() }()

	data, err := s.Read(context.Background(), "/libs/foo.hcl")
	require.NoError(t, err)
	require.Equal(t, "answer = 42", string(data))
}

func TestHTTPSource_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	s := source.NewHTTPSource(srv.URL)
	defer func() { _ = s.Close() }()

	_, err := s.Read(context.Background(), "/missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "/missing")
}
