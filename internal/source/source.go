package source

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"resty.dev/v3"
)

// Reader supplies raw content for a named resource. Read mode only;
// failures are surfaced as opaque causes and wrapped by the Cache.
type Reader interface {
	Read(ctx context.Context, location string) ([]byte, error)
}

// FileSource reads locations from a filesystem.
type FileSource struct {
	fsys afero.Fs
}

// NewFileSource creates a Reader over the given filesystem.
func NewFileSource(fsys afero.Fs) *FileSource {
	return &FileSource{fsys: fsys}
}

// Read implements Reader.
func (s *FileSource) Read(_ context.Context, location string) ([]byte, error) {
	return afero.ReadFile(s.fsys, location)
}

// HTTPSource reads locations from a remote artifact root over HTTP.
type HTTPSource struct {
	client *resty.Client
}

// NewHTTPSource creates a Reader fetching locations relative to baseURL.
func NewHTTPSource(baseURL string) *HTTPSource {
	client := resty.New().SetBaseURL(baseURL)
	return &HTTPSource{client: client}
}

// Read implements Reader.
func (s *HTTPSource) Read(ctx context.Context, location string) ([]byte, error) {
	res, err := s.client.R().SetContext(ctx).Get(location)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("GET %s: %s", location, res.Status())
	}
	return res.Bytes(), nil
}

// Close releases the HTTP client's resources.
func (s *HTTPSource) Close() error {
	return s.client.Close()
}
