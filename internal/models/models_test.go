package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func fltPtr(f float64) *float64 { return &f }

func sampleComplaint() Complaint {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return Complaint{
		ID:          7,
		UserID:      42,
		Title:       "Pothole on Main St",
		Description: "Deep hole near the bus stop",
		Category:    "ROADS",
		Status:      StatusPending,
		Latitude:    fltPtr(12.97),
		Longitude:   fltPtr(77.59),
		Address:     strPtr("Main St 10"),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestComplaintPatch_OnlyProvidedFieldsChange(t *testing.T) {
	c := sampleComplaint()
	before := c
	now := before.UpdatedAt.Add(time.Hour)

	changed := ComplaintPatch{Title: strPtr("Pothole on Main Street")}.Apply(&c, now)

	require.True(t, changed)
	assert.Equal(t, "Pothole on Main Street", c.Title)
	assert.Equal(t, before.Description, c.Description)
	assert.Equal(t, before.Category, c.Category)
	assert.Equal(t, before.Latitude, c.Latitude)
	assert.Equal(t, before.Longitude, c.Longitude)
	assert.Equal(t, before.Address, c.Address)
	assert.Equal(t, before.Status, c.Status)
	assert.Equal(t, before.CreatedAt, c.CreatedAt)
	assert.Equal(t, now, c.UpdatedAt)
}

func TestComplaintPatch_Idempotent(t *testing.T) {
	patch := ComplaintPatch{
		Description: strPtr("Deep hole, now flooded"),
		Latitude:    fltPtr(13.0),
	}
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	once := sampleComplaint()
	patch.Apply(&once, now)

	twice := sampleComplaint()
	patch.Apply(&twice, now)
	changed := patch.Apply(&twice, now.Add(time.Minute))

	assert.False(t, changed, "second application must be a no-op")
	assert.Equal(t, once, twice)
}

func TestComplaintPatch_EmptyPatchKeepsTimestamp(t *testing.T) {
	c := sampleComplaint()
	changed := ComplaintPatch{}.Apply(&c, time.Now())

	assert.False(t, changed)
	assert.Equal(t, sampleComplaint(), c)
}

func TestComplaintPatch_DoesNotAliasPatchValues(t *testing.T) {
	c := sampleComplaint()
	addr := "Elm St 4"
	ComplaintPatch{Address: &addr}.Apply(&c, time.Now())

	addr = "mutated"
	require.NotNil(t, c.Address)
	assert.Equal(t, "Elm St 4", *c.Address)
}

func TestUserPatch_Apply(t *testing.T) {
	u := User{ID: 1, Username: "asha", Email: "asha@example.com", PhoneNumber: "555", Role: "CITIZEN", PasswordHash: "h"}
	now := time.Now()

	changed := UserPatch{PhoneNumber: strPtr("556")}.Apply(&u, now)

	assert.True(t, changed)
	assert.Equal(t, "556", u.PhoneNumber)
	assert.Equal(t, "asha", u.Username)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, "CITIZEN", u.Role)
	assert.Equal(t, "h", u.PasswordHash)
}

func TestComplaintStatus_Valid(t *testing.T) {
	for _, s := range []ComplaintStatus{StatusPending, StatusInProgress, StatusResolved, StatusRejected} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, ComplaintStatus("CLOSED").Valid())
	assert.False(t, ComplaintStatus("").Valid())
}
