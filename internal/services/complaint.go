// Package services contains business logic layers.
// Services are called by handlers and talk to their store and, through the
// orchestration package, to sibling services.
package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/models"
	"github.com/civiceye/backend/internal/orchestration"
	"github.com/civiceye/backend/internal/validation"
)

// ComplaintStore is the persistence the complaint ledger needs
type ComplaintStore interface {
	Create(ctx context.Context, c *models.Complaint) error
	Get(ctx context.Context, id int64) (*models.Complaint, error)
	List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error)
	Update(ctx context.Context, c *models.Complaint) error
	UpdateStatus(ctx context.Context, id int64, status models.ComplaintStatus, now time.Time) (models.ComplaintStatus, *models.Complaint, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// ComplaintService handles complaint business logic
type ComplaintService struct {
	store    ComplaintStore
	users    orchestration.Validator
	notifier orchestration.Notifier
	validate *validation.Validator
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewComplaintService creates a new complaint service
func NewComplaintService(store ComplaintStore, users orchestration.Validator, notifier orchestration.Notifier, validate *validation.Validator, logger *zap.SugaredLogger) *ComplaintService {
	return &ComplaintService{
		store:    store,
		users:    orchestration.UserValidator(users),
		notifier: notifier,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

// Create files a complaint for an existing user and notifies them. The
// complaint always starts PENDING regardless of the request.
func (s *ComplaintService) Create(ctx context.Context, req *models.ComplaintSubmission) (*models.Complaint, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	ref := orchestration.Reference{Kind: orchestration.KindUser, ID: req.UserID}

	return orchestration.CreateDependent(ctx, "complaint", s.users, ref,
		func(ctx context.Context, validated orchestration.Result) (*models.Complaint, error) {
			s.logger.Debugw("Complaint owner validated",
				"user_id", validated.Owner.ID,
				"username", validated.Owner.Username,
			)

			now := s.now().UTC()
			c := &models.Complaint{
				UserID:      req.UserID,
				Title:       req.Title,
				Description: req.Description,
				Category:    req.Category,
				Status:      models.StatusPending,
				Latitude:    req.Latitude,
				Longitude:   req.Longitude,
				Address:     req.Address,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.store.Create(ctx, c); err != nil {
				return nil, err
			}

			s.logger.Infow("Complaint created",
				"complaint_id", c.ID,
				"user_id", c.UserID,
				"category", c.Category,
			)
			return c, nil
		},
		func(ctx context.Context, c *models.Complaint) {
			s.notifier.DispatchNotification(ctx, c.UserID, &c.ID,
				fmt.Sprintf("Your complaint '%s' has been submitted successfully.", c.Title),
				models.NotificationComplaintUpdate)
		},
	)
}

// Get returns a complaint by id
func (s *ComplaintService) Get(ctx context.Context, id int64) (*models.Complaint, error) {
	return s.store.Get(ctx, id)
}

// List returns complaints matching f. An unknown status filter is rejected.
func (s *ComplaintService) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Invalid("invalid status: %s", f.Status)
	}
	return s.store.List(ctx, f)
}

// Update applies a sparse patch. Applying the same patch twice leaves the
// record as after the first application.
func (s *ComplaintService) Update(ctx context.Context, id int64, patch *models.ComplaintPatch) (*models.Complaint, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !patch.Apply(c, s.now().UTC()) {
		return c, nil
	}

	if err := s.store.Update(ctx, c); err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			return nil, apperr.PersistenceFailed(err, "failed to update complaint")
		}
		return nil, err
	}

	s.logger.Infow("Complaint updated", "complaint_id", c.ID)
	return c, nil
}

// SetStatus overwrites the status and notifies the owner. Setting the
// current status again succeeds and still notifies.
func (s *ComplaintService) SetStatus(ctx context.Context, id int64, status models.ComplaintStatus) (*models.StatusChange, error) {
	if !status.Valid() {
		return nil, apperr.Invalid("invalid status: %s", status)
	}

	return orchestration.MutateLocal(ctx, "complaint status",
		func(ctx context.Context) (*models.StatusChange, error) {
			old, c, err := s.store.UpdateStatus(ctx, id, status, s.now().UTC())
			if err != nil {
				return nil, err
			}
			s.logger.Infow("Complaint status changed",
				"complaint_id", c.ID,
				"old_status", old,
				"new_status", c.Status,
			)
			return &models.StatusChange{Old: old, New: c.Status, Complaint: c}, nil
		},
		func(ctx context.Context, change *models.StatusChange) {
			c := change.Complaint
			s.notifier.DispatchNotification(ctx, c.UserID, &c.ID,
				fmt.Sprintf("Your complaint '%s' status changed to: %s", c.Title, c.Status),
				models.NotificationComplaintUpdate)
		},
	)
}

// Delete removes a complaint. Media and notifications that reference it are
// owned by other services and stay in place.
func (s *ComplaintService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("Complaint deleted", "complaint_id", id)
	return nil
}

// Count returns the total number of complaints
func (s *ComplaintService) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}
