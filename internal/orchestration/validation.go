// Package orchestration sequences writes that reference entities owned by
// sibling services: validate the hard dependency, commit locally, then fire
// the soft side effect.
package orchestration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/config"
	"github.com/civiceye/backend/internal/discovery"
	"github.com/civiceye/backend/internal/models"
)

// maxSnapshotBytes bounds how much of a lookup response is read.
const maxSnapshotBytes = 1 << 20

// Outcome is the result class of a validation lookup.
type Outcome int

const (
	OutcomeUnreachable Outcome = iota
	OutcomeNotFound
	OutcomeExists
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExists:
		return "exists"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unreachable"
	}
}

// EntityKind names a resource owned by another service.
type EntityKind struct {
	Service  string // logical service name
	Resource string // path segment under /api/v1
	Label    string
}

var (
	KindUser      = EntityKind{Service: config.UserService, Resource: "users", Label: "user"}
	KindComplaint = EntityKind{Service: config.ComplaintService, Resource: "complaints", Label: "complaint"}
)

// Result is the outcome of a single lookup. Only Exists matters to callers
// deciding whether a dependent write may proceed; Outcome and Err are kept
// for logging.
type Result struct {
	Outcome  Outcome
	Snapshot json.RawMessage
	Owner    *models.UserSnapshot // decoded snapshot of a user lookup made through UserValidator
	Err      error
}

func (r Result) Exists() bool { return r.Outcome == OutcomeExists }

// Validator resolves a foreign id against the service that owns it.
type Validator interface {
	Validate(ctx context.Context, kind EntityKind, id int64) Result
}

// ValidationClient validates references with one GET to the owner's
// read-by-id route. It never retries and never caches.
type ValidationClient struct {
	resolver discovery.Resolver
	client   *http.Client
	logger   *zap.SugaredLogger
}

// NewValidationClient creates a client whose lookups are bounded by timeout.
func NewValidationClient(resolver discovery.Resolver, timeout time.Duration, logger *zap.SugaredLogger) *ValidationClient {
	return &ValidationClient{
		resolver: resolver,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Validate looks up kind/id. Absence, transport failure, unexpected status
// and malformed bodies are all negative results.
func (c *ValidationClient) Validate(ctx context.Context, kind EntityKind, id int64) Result {
	// An abandoned inbound request does not abort a lookup already issued.
	ctx = context.WithoutCancel(ctx)

	res := c.lookup(ctx, kind, id)
	if res.Exists() {
		c.logger.Debugw("Reference validated", "kind", kind.Label, "id", id)
	} else {
		c.logger.Warnw("Reference validation failed",
			"kind", kind.Label,
			"id", id,
			"outcome", res.Outcome.String(),
			"error", res.Err,
		)
	}
	return res
}

func (c *ValidationClient) lookup(ctx context.Context, kind EntityKind, id int64) Result {
	base, err := c.resolver.Resolve(ctx, kind.Service)
	if err != nil {
		return Result{Outcome: OutcomeUnreachable, Err: err}
	}

	url := fmt.Sprintf("%s/api/v1/%s/%d", base, kind.Resource, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Outcome: OutcomeUnreachable, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeUnreachable, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Result{Outcome: OutcomeNotFound, Err: fmt.Errorf("%s %d not found", kind.Label, id)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Result{Outcome: OutcomeUnreachable, Err: fmt.Errorf("unexpected status %d from %s", resp.StatusCode, kind.Service)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return Result{Outcome: OutcomeUnreachable, Err: fmt.Errorf("read response: %w", err)}
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' || !json.Valid(body) {
		return Result{Outcome: OutcomeUnreachable, Err: fmt.Errorf("malformed response from %s", kind.Service)}
	}

	return Result{Outcome: OutcomeExists, Snapshot: json.RawMessage(body)}
}

// ValidateUser validates a user reference and decodes the owner snapshot. A
// body that does not decode into a user with the requested id is negative.
func ValidateUser(ctx context.Context, v Validator, id int64) (*models.UserSnapshot, Result) {
	res := v.Validate(ctx, KindUser, id)
	if !res.Exists() {
		return nil, res
	}

	var snap models.UserSnapshot
	if err := json.Unmarshal(res.Snapshot, &snap); err != nil {
		return nil, Result{Outcome: OutcomeUnreachable, Err: fmt.Errorf("decode user snapshot: %w", err)}
	}
	if snap.ID != id {
		return nil, Result{Outcome: OutcomeUnreachable, Err: fmt.Errorf("user snapshot id %d does not match %d", snap.ID, id)}
	}
	return &snap, res
}

// UserValidator wraps v so user lookups go through ValidateUser: the
// snapshot is decoded into Result.Owner, and a body that does not describe
// the requested user is a negative result. Other kinds pass through.
func UserValidator(v Validator) Validator {
	if _, ok := v.(userValidator); ok {
		return v
	}
	return userValidator{next: v}
}

type userValidator struct {
	next Validator
}

func (u userValidator) Validate(ctx context.Context, kind EntityKind, id int64) Result {
	if kind != KindUser {
		return u.next.Validate(ctx, kind, id)
	}
	owner, res := ValidateUser(ctx, u.next, id)
	res.Owner = owner
	return res
}

// Failure converts a negative result into a ValidationFailed error.
func Failure(kind EntityKind, id int64, res Result) error {
	if res.Outcome == OutcomeNotFound {
		return apperr.ValidationFailed(nil, "%s not found with id: %d", kind.Label, id)
	}
	return apperr.ValidationFailed(res.Err, "failed to validate %s %d", kind.Label, id)
}
