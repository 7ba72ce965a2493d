package uploads

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"boatbooking/internal/domain/models"

	"github.com/google/uuid"
)

// LocalStore writes documents under Dir with random names.
type LocalStore struct {
	Dir      string
	MaxBytes int64
}

func (s LocalStore) Store(ctx context.Context, doc models.IDDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext, _, err := CheckDocument(doc, s.MaxBytes)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.Dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, doc.Data, 0o640); err != nil {
		return "", fmt.Errorf("write identity document: %w", err)
	}
	return path, nil
}
