package artifact

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemStoreRoundTrip(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir(), nil)
	require.NoError(t, err)

	ref, err := store.Write(context.Background(), "email", "abc-123", []byte("# Launch\n\nbody"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("artifacts", "email", "abc-123.md"), ref)

	body, err := store.Read(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "# Launch\n\nbody", string(body))
}

func TestFilesystemStoreSanitizesRefs(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir(), nil)
	require.NoError(t, err)

	ref, err := store.Write(context.Background(), "../evil", "../../id", []byte("x"))
	require.NoError(t, err)
	assert.NotContains(t, ref, "..")

	_, err = store.Read(context.Background(), "../outside.md")
	assert.Error(t, err)
	_, err = store.Read(context.Background(), "/etc/passwd")
	assert.Error(t, err)
}

func TestShouldMaterialize(t *testing.T) {
	svc := NewService(nil, nil, nil)

	long := strings.Repeat("x", 201)
	assert.True(t, svc.ShouldMaterialize(RouteCurrentContext, long))
	assert.False(t, svc.ShouldMaterialize("edit", long))
	assert.False(t, svc.ShouldMaterialize(RouteCurrentContext, strings.Repeat("x", 200)))
	assert.False(t, svc.ShouldMaterialize(RouteCurrentContext, strings.Repeat(" ", 300)))
}

func TestShouldMaterializeTunableLength(t *testing.T) {
	svc := NewService(nil, nil, nil)
	svc.MinResponseLen = 10

	assert.True(t, svc.ShouldMaterialize(RouteCurrentContext, "hello there, world"))
	assert.False(t, svc.ShouldMaterialize(RouteCurrentContext, "short"))
}
