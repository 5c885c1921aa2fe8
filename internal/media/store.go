package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/sirupsen/logrus"
)

// Store writes uploaded incident attachments to a local directory.
type Store struct {
	dir      string
	maxBytes int64
	logger   *logrus.Logger
}

func NewStore(dir string, maxBytes int64, logger *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: could not create upload dir %s: %w", dir, err)
	}
	return &Store{dir: dir, maxBytes: maxBytes, logger: logger}, nil
}

// Save stores r as <prefix>_<sanitized filename> and returns its path.
// Files over the size limit are removed and rejected with a validation error.
func (s *Store) Save(ctx context.Context, prefix, filename string, r io.Reader) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return "", models.NewValidationError("file", "file name is empty")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, prefix+"_"+name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("media: %s already exists: %w", path, models.ErrConflict)
		}
		return "", fmt.Errorf("media: could not create %s: %w", path, err)
	}

	var src io.Reader = r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		s.remove(path)
		return "", fmt.Errorf("media: could not write %s: %w", path, copyErr)
	case closeErr != nil:
		s.remove(path)
		return "", fmt.Errorf("media: could not close %s: %w", path, closeErr)
	case s.maxBytes > 0 && n > s.maxBytes:
		s.remove(path)
		return "", models.NewValidationError("file", "exceeds the %d byte limit", s.maxBytes)
	}

	s.logger.WithFields(logrus.Fields{
		"component": "media",
		"path":      path,
		"bytes":     n,
	}).Info("Upload stored")
	return path, nil
}

// Delete removes a file previously returned by Save. Paths outside the
// upload dir are refused; a file that is already gone is not an error.
func (s *Store) Delete(_ context.Context, path string) error {
	if filepath.Dir(filepath.Clean(path)) != filepath.Clean(s.dir) {
		return fmt.Errorf("media: %s is outside the upload dir: %w", path, models.ErrValidation)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media: could not remove %s: %w", path, err)
	}
	s.logger.WithFields(logrus.Fields{
		"component": "media",
		"path":      path,
	}).Info("Upload removed")
	return nil
}

func (s *Store) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.WithError(err).WithField("path", path).Warn("Failed to remove partial upload")
	}
}

// SanitizeFilename keeps the base name and replaces everything except
// ASCII letters, digits, dot, dash and underscore.
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
