package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/models"
	"github.com/civiceye/backend/internal/orchestration"
	"github.com/civiceye/backend/internal/repository"
	"github.com/civiceye/backend/internal/validation"
)

func newNotificationService(users orchestration.Validator) *NotificationService {
	svc := NewNotificationService(repository.NewMemoryNotificationStore(), users, validation.New(), nopLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestNotificationService_CreateAndMarkRead(t *testing.T) {
	svc := newNotificationService(validatorExists(`{"id":42}`))
	ctx := context.Background()
	complaintID := int64(3)

	n, err := svc.Create(ctx, &models.NotificationRequest{
		UserID:      42,
		ComplaintID: &complaintID,
		Message:     "Your complaint 'Pothole' status changed to: RESOLVED",
		Type:        models.NotificationComplaintUpdate,
	})
	require.NoError(t, err)
	assert.False(t, n.IsRead)
	assert.Equal(t, testNow, n.CreatedAt)

	read, err := svc.MarkRead(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	// marking twice is fine
	_, err = svc.MarkRead(ctx, n.ID)
	require.NoError(t, err)

	unread, err := svc.ListByUser(ctx, 42, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestNotificationService_Create_UnknownUser(t *testing.T) {
	svc := newNotificationService(&fakeValidator{outcome: orchestration.OutcomeNotFound})

	_, err := svc.Create(context.Background(), &models.NotificationRequest{
		UserID:  404,
		Message: "hello",
		Type:    models.NotificationSystemAlert,
	})

	assert.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "user not found with id: 404")

	list, err := svc.ListByUser(context.Background(), 404, false)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotificationService_MarkRead_Unknown(t *testing.T) {
	svc := newNotificationService(validatorExists(`{}`))

	_, err := svc.MarkRead(context.Background(), 12)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestNotificationService_Create_AlwaysUnread(t *testing.T) {
	svc := newNotificationService(validatorExists(`{"id":42}`))
	ctx := context.Background()

	n, err := svc.Create(ctx, &models.NotificationRequest{
		UserID:  42,
		Message: "Scheduled maintenance on Sunday",
		Type:    models.NotificationSystemAlert,
		IsRead:  true,
	})
	require.NoError(t, err)
	assert.False(t, n.IsRead)

	unread, err := svc.ListByUser(ctx, 42, true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}
