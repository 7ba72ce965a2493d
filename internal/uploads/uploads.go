// Package uploads stores identity documents and hands back an opaque reference.
package uploads

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"boatbooking/internal/domain/models"
)

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

// CheckDocument enforces the size and type policy shared by every backend.
// It returns the normalized extension and content type.
func CheckDocument(doc models.IDDocument, maxBytes int64) (string, string, error) {
	if len(doc.Data) == 0 {
		return "", "", errors.New("identity document is empty")
	}
	if maxBytes > 0 && int64(len(doc.Data)) > maxBytes {
		return "", "", fmt.Errorf("identity document exceeds %d bytes", maxBytes)
	}
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	contentType, ok := allowedExt[ext]
	if !ok {
		return "", "", fmt.Errorf("unsupported identity document type %q", ext)
	}
	return ext, contentType, nil
}
