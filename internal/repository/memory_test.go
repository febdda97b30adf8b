package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/models"
)

func TestMemoryComplaintStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryComplaintStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	addr := "12 Main St"
	c := &models.Complaint{UserID: 42, Title: "Pothole", Description: "Deep pothole on Main",
		Category: "ROADS", Status: models.StatusPending, Address: &addr, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Create(ctx, c))
	assert.Equal(t, int64(1), c.ID)

	// the stored copy must not alias the caller's pointers
	addr = "changed"
	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "12 Main St", *got.Address)

	old, updated, err := s.UpdateStatus(ctx, c.ID, models.StatusResolved, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, old)
	assert.Equal(t, models.StatusResolved, updated.Status)
	assert.Equal(t, now.Add(time.Hour), updated.UpdatedAt)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, s.Delete(ctx, c.ID))
	_, err = s.Get(ctx, c.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(s.Delete(ctx, c.ID), apperr.KindNotFound))
}

func TestMemoryComplaintStore_UpdateKeepsOwnerAndStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryComplaintStore()

	c := &models.Complaint{UserID: 42, Title: "Broken light", Status: models.StatusInProgress}
	require.NoError(t, s.Create(ctx, c))

	tampered := *c
	tampered.UserID = 99
	tampered.Status = models.StatusRejected
	tampered.Title = "Broken street light"
	require.NoError(t, s.Update(ctx, &tampered))

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, "Broken street light", got.Title)

	missing := models.Complaint{ID: 404}
	assert.True(t, apperr.Is(s.Update(ctx, &missing), apperr.KindNotFound))
}

func TestMemoryComplaintStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryComplaintStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seed := []models.Complaint{
		{UserID: 1, Category: "ROADS", Status: models.StatusPending, CreatedAt: base},
		{UserID: 1, Category: "WATER", Status: models.StatusResolved, CreatedAt: base.Add(time.Minute)},
		{UserID: 2, Category: "ROADS", Status: models.StatusResolved, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		require.NoError(t, s.Create(ctx, &seed[i]))
	}

	all, err := s.List(ctx, models.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].ID, "newest first")

	byUser, err := s.List(ctx, models.ComplaintFilter{UserID: 1})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	resolvedRoads, err := s.List(ctx, models.ComplaintFilter{Status: models.StatusResolved, Category: "ROADS"})
	require.NoError(t, err)
	require.Len(t, resolvedRoads, 1)
	assert.Equal(t, int64(2), resolvedRoads[0].UserID)
}

func TestMemoryMediaStore_ListByComplaint(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryMediaStore()

	for _, cid := range []int64{7, 8, 7} {
		require.NoError(t, s.Create(ctx, &models.Media{ComplaintID: cid, FileName: "a.jpg"}))
	}

	media, err := s.ListByComplaint(ctx, 7)
	require.NoError(t, err)
	require.Len(t, media, 2)
	assert.Equal(t, int64(1), media[0].ID)
	assert.Equal(t, int64(3), media[1].ID)

	require.NoError(t, s.Delete(ctx, 1))
	_, err = s.Get(ctx, 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestMemoryNotificationStore_UnreadAndMarkRead(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryNotificationStore()

	first := &models.Notification{UserID: 42, Message: "one", Type: models.NotificationComplaintUpdate}
	second := &models.Notification{UserID: 42, Message: "two", Type: models.NotificationComplaintUpdate}
	other := &models.Notification{UserID: 43, Message: "three", Type: models.NotificationSystemAlert}
	for _, n := range []*models.Notification{first, second, other} {
		require.NoError(t, s.Create(ctx, n))
	}

	read, err := s.MarkRead(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	all, err := s.ListByUser(ctx, 42, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unread, err := s.ListByUser(ctx, 42, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "two", unread[0].Message)

	_, err = s.MarkRead(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestMemoryUserStore_Uniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	alice := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	require.NoError(t, s.Create(ctx, alice))

	err := s.Create(ctx, &models.User{Username: "alice2", Email: "alice@example.com"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	err = s.Create(ctx, &models.User{Username: "alice", Email: "other@example.com"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	bob := &models.User{Username: "bob", Email: "bob@example.com"}
	require.NoError(t, s.Create(ctx, bob))

	bob.Email = "alice@example.com"
	assert.True(t, apperr.Is(s.Update(ctx, bob), apperr.KindConflict))

	// updating a user to its own values is not a conflict
	alice.PhoneNumber = "555-0100"
	require.NoError(t, s.Update(ctx, alice))

	got, err := s.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h", got.PasswordHash)
	assert.Equal(t, "555-0100", got.PhoneNumber)

	exists, err := s.ExistsByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.ExistsByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, exists)
}
