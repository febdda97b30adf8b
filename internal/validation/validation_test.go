package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/models"
)

func TestValidator_ComplaintSubmission(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     models.ComplaintSubmission
		isValid bool
		msg     string
	}{
		{
			name: "valid",
			req: models.ComplaintSubmission{
				UserID: 42, Title: "Pothole on Main St", Description: "Deep hole here", Category: "ROADS",
			},
			isValid: true,
		},
		{
			name: "title_too_short",
			req: models.ComplaintSubmission{
				UserID: 42, Title: "Hole", Description: "Deep hole here", Category: "ROADS",
			},
			msg: "title must be at least 5 characters",
		},
		{
			name: "description_too_short",
			req: models.ComplaintSubmission{
				UserID: 42, Title: "Pothole on Main St", Description: "short", Category: "ROADS",
			},
			msg: "description must be at least 10 characters",
		},
		{
			name: "address_too_long",
			req: models.ComplaintSubmission{
				UserID: 42, Title: "Pothole on Main St", Description: "Deep hole here", Category: "ROADS",
				Address: func() *string { s := strings.Repeat("a", 501); return &s }(),
			},
			msg: "address must be at most 500 characters",
		},
		{
			name: "missing_user",
			req: models.ComplaintSubmission{
				Title: "Pothole on Main St", Description: "Deep hole here", Category: "ROADS",
			},
			msg: "userId is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.isValid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidator_SparsePatchSkipsAbsentFields(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(models.ComplaintPatch{}))

	short := "abc"
	err := v.Struct(models.ComplaintPatch{Title: &short})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title must be at least 5 characters")
}

func TestValidator_NotificationMessageLimit(t *testing.T) {
	v := New()

	err := v.Struct(models.NotificationRequest{UserID: 1, Message: strings.Repeat("m", 1001), Type: "SYSTEM_ALERT"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message must be at most 1000 characters")
}
