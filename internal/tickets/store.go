package tickets

import (
	"fmt"
	"os"
	"path/filepath"

	"boatbooking/internal/utils"
)

// FileStore keeps rendered tickets on disk as <Dir>/<booking_id>.pdf.
type FileStore struct {
	Dir string
}

func (s FileStore) Path(bookingID string) string {
	return filepath.Join(s.Dir, utils.SafeFilenamePart(bookingID)+".pdf")
}

func (s FileStore) Exists(bookingID string) bool {
	info, err := os.Stat(s.Path(bookingID))
	return err == nil && !info.IsDir() && info.Size() > 0
}

// Save writes through a temp file and rename so a reader never sees a partial PDF.
func (s FileStore) Save(bookingID string, pdf []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return "", fmt.Errorf("create tickets dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, ".ticket-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create ticket temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(pdf); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write ticket: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close ticket: %w", err)
	}
	path := s.Path(bookingID)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("publish ticket: %w", err)
	}
	return path, nil
}
