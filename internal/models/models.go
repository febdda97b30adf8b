// Package models defines the records owned by each service and the request
// bodies that create or patch them. JSON names are the inter-service wire
// contract and must stay stable.
package models

import (
	"time"
)

// ComplaintStatus is the processing state of a complaint. Any status may be
// set from any other; there is no transition table.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "PENDING"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusResolved   ComplaintStatus = "RESOLVED"
	StatusRejected   ComplaintStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Complaint is a citizen complaint owned by the complaint ledger.
type Complaint struct {
	ID          int64           `json:"id" db:"id"`
	UserID      int64           `json:"userId" db:"user_id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Category    string          `json:"category" db:"category"`
	Status      ComplaintStatus `json:"status" db:"status"`
	Latitude    *float64        `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64        `json:"longitude,omitempty" db:"longitude"`
	Address     *string         `json:"address,omitempty" db:"address"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// ComplaintSubmission is the request body for filing a new complaint
type ComplaintSubmission struct {
	UserID      int64    `json:"userId" validate:"required,gt=0"`
	Title       string   `json:"title" validate:"required,min=5,max=200"`
	Description string   `json:"description" validate:"required,min=10,max=2000"`
	Category    string   `json:"category" validate:"required"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,max=500"`
}

// ComplaintPatch carries a sparse update. Nil fields are left untouched.
type ComplaintPatch struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=5,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=10,max=2000"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,min=1"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,max=500"`
}

// Apply merges p into c field by field and reports whether anything changed.
// UpdatedAt is bumped to now only on change.
func (p ComplaintPatch) Apply(c *Complaint, now time.Time) bool {
	changed := false
	changed = setString(&c.Title, p.Title) || changed
	changed = setString(&c.Description, p.Description) || changed
	changed = setString(&c.Category, p.Category) || changed
	changed = setFloatPtr(&c.Latitude, p.Latitude) || changed
	changed = setFloatPtr(&c.Longitude, p.Longitude) || changed
	changed = setStringPtr(&c.Address, p.Address) || changed
	if changed {
		c.UpdatedAt = now
	}
	return changed
}

// StatusUpdate is the body of PUT /complaints/{id}/status
type StatusUpdate struct {
	Status ComplaintStatus `json:"status" validate:"required"`
}

// StatusChange reports a status transition for observability.
type StatusChange struct {
	Old       ComplaintStatus `json:"oldStatus"`
	New       ComplaintStatus `json:"newStatus"`
	Complaint *Complaint      `json:"complaint"`
}

// ComplaintFilter narrows complaint listings. Zero values match everything.
type ComplaintFilter struct {
	UserID   int64
	Status   ComplaintStatus
	Category string
}

// Media is the metadata of an uploaded file. FileURL is the storage locator,
// FileName the original name kept for download headers.
type Media struct {
	ID          int64     `json:"id" db:"id"`
	ComplaintID int64     `json:"complaintId" db:"complaint_id"`
	FileName    string    `json:"fileName" db:"file_name"`
	FileType    string    `json:"fileType" db:"file_type"`
	FileSize    int64     `json:"fileSize" db:"file_size"`
	FileURL     string    `json:"fileUrl" db:"file_url"`
	UploadedAt  time.Time `json:"uploadedAt" db:"uploaded_at"`
}

// Notification types
const (
	NotificationComplaintUpdate = "COMPLAINT_UPDATE"
	NotificationSystemAlert     = "SYSTEM_ALERT"
)

// Notification is a message addressed to a user.
type Notification struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"userId" db:"user_id"`
	ComplaintID *int64    `json:"complaintId,omitempty" db:"complaint_id"`
	Message     string    `json:"message" db:"message"`
	Type        string    `json:"type" db:"type"`
	IsRead      bool      `json:"isRead" db:"is_read"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// NotificationRequest is the body of POST /notifications, also sent by the
// complaint ledger's dispatcher.
type NotificationRequest struct {
	UserID      int64  `json:"userId" validate:"required,gt=0"`
	ComplaintID *int64 `json:"complaintId,omitempty"`
	Message     string `json:"message" validate:"required,max=1000"`
	Type        string `json:"type" validate:"required"`
	IsRead      bool   `json:"isRead"` // sent as false; creation ignores it
}

// User is an account owned by the identity registry. PasswordHash never
// leaves the service.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PhoneNumber  string    `json:"phoneNumber" db:"phone_number"`
	Role         string    `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// UserSnapshot is the non-sensitive copy of a user other services obtain
// while validating a reference. It is never persisted.
type UserSnapshot struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

// Registration is the body of POST /users/register
type Registration struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=20"`
	Role        string `json:"role" validate:"omitempty,oneof=CITIZEN ADMIN OFFICER"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /users/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserPatch carries a sparse user update. Nil fields are left untouched.
type UserPatch struct {
	Username    *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,max=20"`
	Role        *string `json:"role,omitempty" validate:"omitempty,oneof=CITIZEN ADMIN OFFICER"`
}

// Apply merges p into u field by field and reports whether anything changed.
func (p UserPatch) Apply(u *User, now time.Time) bool {
	changed := false
	changed = setString(&u.Username, p.Username) || changed
	changed = setString(&u.Email, p.Email) || changed
	changed = setString(&u.PhoneNumber, p.PhoneNumber) || changed
	changed = setString(&u.Role, p.Role) || changed
	if changed {
		u.UpdatedAt = now
	}
	return changed
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime,omitempty"`
	Database string `json:"database,omitempty"`
}

func setString(dst *string, src *string) bool {
	if src == nil || *dst == *src {
		return false
	}
	*dst = *src
	return true
}

func setStringPtr(dst **string, src *string) bool {
	if src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func setFloatPtr(dst **float64, src *float64) bool {
	if src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}
