package transform_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/dynmod/internal/transform"
)

func TestStripComments(t *testing.T) {
	t.Parallel()

	src := `# leading comment
a = 1
  // indented comment
b = "value with # inside"
`
	got, err := transform.StripComments(context.Background(), src, "lib/x")
	require.NoError(t, err)
	require.Equal(t, `a = 1
b = "value with # inside"
`, got)
}
