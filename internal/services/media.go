package services

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/models"
	"github.com/civiceye/backend/internal/orchestration"
	"github.com/civiceye/backend/internal/storage"
)

// MediaStore is the persistence the media vault needs
type MediaStore interface {
	Create(ctx context.Context, m *models.Media) error
	Get(ctx context.Context, id int64) (*models.Media, error)
	ListByComplaint(ctx context.Context, complaintID int64) ([]models.Media, error)
	Delete(ctx context.Context, id int64) error
}

// Upload is a file received for a complaint
type Upload struct {
	ComplaintID int64
	FileName    string
	ContentType string
	Content     io.Reader
}

// MediaService handles media business logic
type MediaService struct {
	store      MediaStore
	files      storage.Storage
	complaints orchestration.Validator
	logger     *zap.SugaredLogger
	now        func() time.Time
}

// NewMediaService creates a new media service
func NewMediaService(store MediaStore, files storage.Storage, complaints orchestration.Validator, logger *zap.SugaredLogger) *MediaService {
	return &MediaService{
		store:      store,
		files:      files,
		complaints: complaints,
		logger:     logger,
		now:        time.Now,
	}
}

// Upload stores a file for an existing complaint. Nothing is written when the
// complaint cannot be confirmed; a stored file whose metadata fails to save
// is removed again.
func (s *MediaService) Upload(ctx context.Context, up Upload) (*models.Media, error) {
	if up.ComplaintID <= 0 {
		return nil, apperr.Invalid("complaintId is required")
	}
	if up.Content == nil || up.FileName == "" {
		return nil, apperr.Invalid("file is required")
	}
	if up.ContentType == "" {
		up.ContentType = "application/octet-stream"
	}

	ref := orchestration.Reference{Kind: orchestration.KindComplaint, ID: up.ComplaintID}

	return orchestration.CreateDependent(ctx, "media", s.complaints, ref,
		func(ctx context.Context, _ orchestration.Result) (*models.Media, error) {
			key, size, err := s.files.Store(ctx, up.FileName, up.Content, up.ContentType)
			if err != nil {
				return nil, apperr.PersistenceFailed(err, "failed to store file")
			}

			m := &models.Media{
				ComplaintID: up.ComplaintID,
				FileName:    up.FileName,
				FileType:    up.ContentType,
				FileSize:    size,
				FileURL:     key,
				UploadedAt:  s.now().UTC(),
			}
			if err := s.store.Create(ctx, m); err != nil {
				if derr := s.files.Delete(ctx, key); derr != nil {
					s.logger.Warnw("Failed to remove orphaned file", "key", key, "error", derr)
				}
				return nil, err
			}

			s.logger.Infow("Media uploaded",
				"media_id", m.ID,
				"complaint_id", m.ComplaintID,
				"file_size", m.FileSize,
			)
			return m, nil
		},
		nil,
	)
}

// Get returns media metadata by id
func (s *MediaService) Get(ctx context.Context, id int64) (*models.Media, error) {
	return s.store.Get(ctx, id)
}

// ListByComplaint returns the media attached to a complaint
func (s *MediaService) ListByComplaint(ctx context.Context, complaintID int64) ([]models.Media, error) {
	return s.store.ListByComplaint(ctx, complaintID)
}

// Open returns the metadata and content of a stored file. The caller closes
// the reader.
func (s *MediaService) Open(ctx context.Context, id int64) (*models.Media, io.ReadCloser, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.files.Retrieve(ctx, m.FileURL)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, apperr.NotFound("file not found for media id: %d", id)
	}
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open file for media %d", id)
	}
	return m, rc, nil
}

// Delete removes the stored file, then the metadata record.
func (s *MediaService) Delete(ctx context.Context, id int64) error {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.files.Delete(ctx, m.FileURL); err != nil {
		return errors.Wrapf(err, "remove file for media %d", id)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Infow("Media deleted", "media_id", id, "complaint_id", m.ComplaintID)
	return nil
}
