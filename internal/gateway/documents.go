package gateway

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/collections-engine/internal/domain"
)

// LocalDocumentStore writes proof documents to a local directory. It stands
// in for the real object-store backend behind the same port.
type LocalDocumentStore struct {
	baseDir string
}

func NewLocalDocumentStore(baseDir string) (*LocalDocumentStore, error) {
	trimmed := strings.TrimSpace(baseDir)
	if trimmed == "" {
		return nil, fmt.Errorf("document store directory is required")
	}
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare document store directory: %w", err)
	}

	return &LocalDocumentStore{baseDir: trimmed}, nil
}

func (s *LocalDocumentStore) Store(ctx context.Context, content []byte, meta DocumentMetadata) (string, error) {
	if s == nil {
		return "", fmt.Errorf("document store is not initialized")
	}
	if len(content) == 0 {
		return "", fmt.Errorf("%w: document content is required", domain.ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := strings.TrimSpace(meta.FileName)
	if name == "" {
		name = "document"
	}
	name = filepath.Base(name)

	day := time.Now().UTC().Format("20060102")
	dir := filepath.Join(s.baseDir, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to prepare document directory: %v", domain.ErrExternalDependency, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s", uuid.NewString(), name))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to store document: %v", domain.ErrExternalDependency, err)
	}

	return path, nil
}
