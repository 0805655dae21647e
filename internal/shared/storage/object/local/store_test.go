package local

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhunt-backend/internal/shared/storage/object"
)

func TestSaveOpenDelete(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	obj, err := store.Save(ctx, "user-1", "my cv.pdf", strings.NewReader("%PDF-1.4 hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("%PDF-1.4 hello")), obj.Size)
	assert.Equal(t, "application/pdf", obj.MimeType)
	assert.True(t, strings.HasSuffix(obj.Key, "_my cv.pdf"))

	rc, err := store.Open(ctx, obj.Key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 hello", string(data))

	require.NoError(t, store.Delete(ctx, obj.Key))
	_, err = store.Open(ctx, obj.Key)
	assert.ErrorIs(t, err, object.ErrNotFound)
	assert.NoError(t, store.Delete(ctx, obj.Key))
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Open(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
	_, err = store.Save(context.Background(), "u", "../x.pdf", strings.NewReader("x"))
	assert.Error(t, err)
}
