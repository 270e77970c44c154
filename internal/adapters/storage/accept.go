// internal/adapters/storage/accept.go
package storage

import (
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
)

// MaxFileSize is the upload ceiling for item images.
const MaxFileSize = 2 << 20 // 2 MiB

// allowedTypes maps accepted media types to the extension used for the
// stored name.
var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
}

// acceptPayload applies the acceptance rules shared by every file store:
// the declared media type must be on the allow-list, the payload must fit
// under the size ceiling, and the sniffed content must itself be an
// allowed image type. Nothing is returned for persistence unless all
// checks pass, so a rejected upload never touches storage.
//
// The returned name is freshly generated; the client's filename is never
// consulted.
func acceptPayload(r io.Reader, declaredType string) (name string, data []byte, contentType string, err error) {
	ext, ok := allowedTypes[declaredType]
	if !ok {
		return "", nil, "", domain.Ef(domain.KindUnsupportedMedia,
			"media type %q is not allowed, expected png or jpeg", declaredType)
	}

	// Read one byte past the ceiling so an oversized payload is
	// distinguishable from one that exactly fits.
	data, err = io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxFileSize {
		return "", nil, "", domain.Ef(domain.KindPayloadTooLarge,
			"file exceeds the %d byte limit", MaxFileSize)
	}
	if len(data) == 0 {
		return "", nil, "", domain.E(domain.KindUnsupportedMedia, "uploaded file is empty")
	}

	sniffed := http.DetectContentType(data[:min(len(data), 512)])
	if _, ok := allowedTypes[sniffed]; !ok {
		return "", nil, "", domain.Ef(domain.KindUnsupportedMedia,
			"file content is %q, expected png or jpeg", sniffed)
	}

	return uuid.New().String() + ext, data, sniffed, nil
}
