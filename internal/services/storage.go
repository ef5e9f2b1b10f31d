package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KRaymonne/pro/internal/apperr"

	"go.uber.org/zap"
)

// MediaStorage persists recording audio. Delete exists for the compensating
// rollback when session finalization fails after the bytes were stored.
type MediaStorage interface {
	Store(ctx context.Context, name string, r io.Reader) (ref string, size int64, err error)
	Delete(ctx context.Context, ref string) error
}

// DiskStorage keeps recordings on the local filesystem under a single
// directory, served back through a static route. Same layout the old server
// used for its uploads.
type DiskStorage struct {
	log     *zap.Logger
	dir     string
	baseURL string
}

func NewDiskStorage(dir, baseURL string, log *zap.Logger) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create upload directory: %w", err)
	}
	return &DiskStorage{log: log, dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Store writes the audio bytes under name and returns the public reference.
func (d *DiskStorage) Store(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	name = filepath.Base(name)
	path := filepath.Join(d.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, apperr.Storage("échec de l'enregistrement du fichier audio", err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, apperr.Storage("échec de l'enregistrement du fichier audio", err)
	}

	d.log.Debug("Stored recording", zap.String("file", name), zap.Int64("bytes", size))
	return d.baseURL + "/" + name, size, nil
}

// Delete removes a stored recording by its public reference.
func (d *DiskStorage) Delete(ctx context.Context, ref string) error {
	name := filepath.Base(strings.TrimPrefix(ref, d.baseURL))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return apperr.Storage("référence de fichier invalide", nil)
	}
	if err := os.Remove(filepath.Join(d.dir, name)); err != nil {
		return apperr.Storage("échec de la suppression du fichier audio", err)
	}
	return nil
}
