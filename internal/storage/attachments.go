// Package storage persists visit attachments as opaque blobs. The booking
// engine never interprets the bytes; it only carries the returned reference
// on the slot and asks for deletion when a hold is released.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttachmentStore is the collaborator interface the services depend on.
type AttachmentStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (ref string, err error)
	Delete(ctx context.Context, ref string) error
}

// DiskStore keeps attachments as uuid-named files under one directory.
type DiskStore struct {
	dir    string
	logger *zap.Logger
}

func NewDiskStore(dir string, logger *zap.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, logger: logger}, nil
}

// Dir returns the backing directory, for static serving.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes the blob and returns its opaque reference. The original name
// only contributes its extension.
func (s *DiskStore) Save(_ context.Context, originalName string, r io.Reader) (string, error) {
	ref := uuid.NewString() + filepath.Ext(filepath.Base(originalName))

	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write attachment: %w", err)
	}

	s.logger.Debug("attachment stored", zap.String("ref", ref))
	return ref, nil
}

// Delete removes the blob. A missing blob is not an error, so releases stay
// idempotent.
func (s *DiskStore) Delete(_ context.Context, ref string) error {
	// Refs are generated by Save; Base guards against traversal anyway.
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete attachment: %w", err)
	}

	return nil
}
