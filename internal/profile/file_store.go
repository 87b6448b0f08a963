package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "tradievoice/internal/common/errors"
	"tradievoice/internal/common/logger"
)

// FileStore keeps the profile in a single JSON file. Writes go through a
// temp file plus rename so a reader never observes a partially written
// record. Last writer wins; there is no locking.
type FileStore struct {
	path   string
	logger logger.Logger
}

func NewFileStore(path string, log logger.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: log.WithFields(map[string]interface{}{"component": "profile-store", "backend": "file"}),
	}
}

func (s *FileStore) Load(ctx context.Context) (*BusinessProfile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultProfile(), nil
		}
		return nil, apperrors.NewStoreReadError(err)
	}

	var p BusinessProfile
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("profile file is corrupt, substituting defaults", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return DefaultProfile(), nil
	}

	return &p, nil
}

func (s *FileStore) Save(ctx context.Context, p *BusinessProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return apperrors.NewStoreWriteError(err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".profile-*.json")
	if err != nil {
		return apperrors.NewStoreWriteError(fmt.Errorf("creating temp file: %w", err))
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.NewStoreWriteError(fmt.Errorf("writing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewStoreWriteError(fmt.Errorf("closing temp file: %w", err))
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewStoreWriteError(fmt.Errorf("replacing profile file: %w", err))
	}

	return nil
}
