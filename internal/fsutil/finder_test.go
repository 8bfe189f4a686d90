package fsutil_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/vk/dynmod/internal/fsutil"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	for _, p := range []string{
		"top/a.hcl",
		"top/nested/deep/b.hcl",
		"top/ignored.txt",
		"top/nested/c.hcl.bak",
	} {
		require.NoError(t, afero.WriteFile(fsys, p, []byte("x"), 0o600))
	}

	files, err := fsutil.FindFilesByExtension(fsys, "top", ".hcl")
	require.NoError(t, err)

	want := []string{"top/a.hcl", "top/nested/deep/b.hcl"}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Fatalf("unexpected file list (-want +got):\n%s", diff)
	}
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_, _ = fsutil.FindFilesByExtension(afero.NewMemMapFs(), "top", "")
	})
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := fsutil.FindFilesByExtension(afero.NewMemMapFs(), "absent", ".hcl")
	require.Error(t, err)
}
