package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/orchestration"
)

var testNow = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func nopLogger() *zap.SugaredLogger { return zap.NewNop().Sugar() }

// fakeValidator answers every lookup with a fixed outcome and counts calls.
type fakeValidator struct {
	mu       sync.Mutex
	outcome  orchestration.Outcome
	snapshot string
	calls    []int64
}

func validatorExists(snapshot string) *fakeValidator {
	return &fakeValidator{outcome: orchestration.OutcomeExists, snapshot: snapshot}
}

func (f *fakeValidator) Validate(_ context.Context, _ orchestration.EntityKind, id int64) orchestration.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	switch f.outcome {
	case orchestration.OutcomeExists:
		return orchestration.Result{Outcome: orchestration.OutcomeExists, Snapshot: json.RawMessage(f.snapshot)}
	case orchestration.OutcomeNotFound:
		return orchestration.Result{Outcome: orchestration.OutcomeNotFound, Err: fmt.Errorf("id %d not found", id)}
	default:
		return orchestration.Result{Outcome: orchestration.OutcomeUnreachable, Err: errors.New("connection refused")}
	}
}

type sentNotification struct {
	UserID    int64
	RelatedID *int64
	Message   string
	Type      string
}

// recordingNotifier captures dispatches instead of sending them.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) DispatchNotification(_ context.Context, userID int64, relatedID *int64, message, typ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, RelatedID: relatedID, Message: message, Type: typ})
}

func (n *recordingNotifier) all() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

func strPtr(s string) *string { return &s }
