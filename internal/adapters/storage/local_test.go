// internal/adapters/storage/local_test.go
package storage_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennethmarkhui/inventory-api/internal/adapters/storage"
	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
	"github.com/kennethmarkhui/inventory-api/test/helpers"
)

// pngBytes returns a payload that sniffs as image/png.
func pngBytes(size int) []byte {
	header := []byte("\x89PNG\r\n\x1a\n")
	if size < len(header) {
		return header
	}
	return append(header, bytes.Repeat([]byte{0}, size-len(header))...)
}

func jpegBytes() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
}

func newTestStore(t *testing.T) *storage.LocalStore {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir(), helpers.TestLogger())
	require.NoError(t, err)
	return store
}

func TestLocalStore_Accept(t *testing.T) {
	tests := []struct {
		name          string
		declaredType  string
		payload       []byte
		expectedError bool
		expectedKind  domain.Kind
		expectedExt   string
		expectedType  string
	}{
		{
			name:         "accepts_png",
			declaredType: "image/png",
			payload:      pngBytes(64),
			expectedExt:  ".png",
			expectedType: "image/png",
		},
		{
			name:         "accepts_jpeg",
			declaredType: "image/jpeg",
			payload:      jpegBytes(),
			expectedExt:  ".jpg",
			expectedType: "image/jpeg",
		},
		{
			name:         "accepts_legacy_jpg_declaration",
			declaredType: "image/jpg",
			payload:      jpegBytes(),
			expectedExt:  ".jpg",
			expectedType: "image/jpeg",
		},
		{
			name:          "rejects_disallowed_declared_type",
			declaredType:  "application/pdf",
			payload:       pngBytes(64),
			expectedError: true,
			expectedKind:  domain.KindUnsupportedMedia,
		},
		{
			name:          "rejects_oversized_payload",
			declaredType:  "image/png",
			payload:       pngBytes(storage.MaxFileSize + 1),
			expectedError: true,
			expectedKind:  domain.KindPayloadTooLarge,
		},
		{
			name:          "rejects_empty_payload",
			declaredType:  "image/png",
			payload:       []byte{},
			expectedError: true,
			expectedKind:  domain.KindUnsupportedMedia,
		},
		{
			name:          "rejects_content_that_is_not_an_image",
			declaredType:  "image/png",
			payload:       []byte("definitely not a picture"),
			expectedError: true,
			expectedKind:  domain.KindUnsupportedMedia,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)

			stored, err := store.Accept(context.Background(), bytes.NewReader(tt.payload), tt.declaredType)

			if tt.expectedError {
				require.Error(t, err)
				assert.Equal(t, tt.expectedKind, domain.KindOf(err))
				return
			}

			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.True(t, strings.HasSuffix(stored.Path, tt.expectedExt), "path %q should end in %s", stored.Path, tt.expectedExt)
			assert.Equal(t, int64(len(tt.payload)), stored.Size)
			assert.Equal(t, tt.expectedType, stored.ContentType)

			exists, err := store.Exists(context.Background(), stored.Path)
			require.NoError(t, err)
			assert.True(t, exists)
		})
	}
}

func TestLocalStore_Accept_GeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Accept(context.Background(), bytes.NewReader(pngBytes(32)), "image/png")
	require.NoError(t, err)
	second, err := store.Accept(context.Background(), bytes.NewReader(pngBytes(32)), "image/png")
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
}

func TestLocalStore_AcceptPayloadAtExactLimit(t *testing.T) {
	store := newTestStore(t)

	stored, err := store.Accept(context.Background(), bytes.NewReader(pngBytes(storage.MaxFileSize)), "image/png")
	require.NoError(t, err)
	assert.Equal(t, int64(storage.MaxFileSize), stored.Size)
}

func TestLocalStore_Open(t *testing.T) {
	store := newTestStore(t)
	payload := pngBytes(48)

	stored, err := store.Accept(context.Background(), bytes.NewReader(payload), "image/png")
	require.NoError(t, err)

	rc, err := store.Open(context.Background(), stored.Path)
	require.NoError(t, err)
	defer rc.Close()

	read, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, read)
}

func TestLocalStore_Open_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Open(context.Background(), "missing.png")
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestLocalStore_Discard(t *testing.T) {
	store := newTestStore(t)

	stored, err := store.Accept(context.Background(), bytes.NewReader(pngBytes(32)), "image/png")
	require.NoError(t, err)

	require.NoError(t, store.Discard(context.Background(), stored.Path))

	exists, err := store.Exists(context.Background(), stored.Path)
	require.NoError(t, err)
	assert.False(t, exists)

	// Discarding an already-gone file is not an error.
	require.NoError(t, store.Discard(context.Background(), stored.Path))
}

func TestLocalStore_RejectsEscapingPaths(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, path := range []string{"../secrets.txt", "/etc/passwd", "a/../../b.png", "."} {
		t.Run(path, func(t *testing.T) {
			assert.Error(t, store.Discard(ctx, path))

			_, err := store.Open(ctx, path)
			assert.Error(t, err)

			_, err = store.Exists(ctx, path)
			assert.Error(t, err)
		})
	}
}
