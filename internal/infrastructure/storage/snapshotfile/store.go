// Package snapshotfile persists graph snapshots on the local filesystem.
package snapshotfile

import (
	"context"
	"os"
	"path/filepath"

	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
	"github.com/precedex/precedex/pkg/errors"
)

// Store writes snapshots to a single file path. It implements graph.Store.
// Saves go through a temp file and rename so readers never observe a
// partially written snapshot.
type Store struct {
	path string
	log  logging.Logger
}

func NewStore(path string, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{path: path, log: log}
}

func (s *Store) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "snapshot save cancelled")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to create snapshot directory")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to create temp snapshot file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to write snapshot")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to close snapshot file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to replace snapshot file")
	}

	s.log.Info("snapshot written",
		logging.String("path", s.path),
		logging.Int("bytes", len(data)))
	return nil
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "snapshot load cancelled")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeSnapshotNotFound, "no snapshot file found").WithDetail(s.path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to read snapshot file")
	}
	return data, nil
}
