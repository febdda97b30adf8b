package orchestration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/config"
	"github.com/civiceye/backend/internal/discovery"
	"github.com/civiceye/backend/internal/models"
)

// Notifier delivers notifications on a best-effort basis. Implementations
// must swallow every failure.
type Notifier interface {
	DispatchNotification(ctx context.Context, userID int64, relatedID *int64, message, typ string)
}

// Dispatcher posts notifications to the notification relay. Failures are
// logged as SideEffectFailed and dropped; nothing is retried.
type Dispatcher struct {
	resolver discovery.Resolver
	client   *http.Client
	async    bool
	logger   *zap.SugaredLogger

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher. With async set, each dispatch runs on
// its own goroutine started by the caller after its commit, so ordering
// relative to the committed write is kept.
func NewDispatcher(resolver discovery.Resolver, timeout time.Duration, async bool, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		client:   &http.Client{Timeout: timeout},
		async:    async,
		logger:   logger,
	}
}

// DispatchNotification sends a notification and never reports failure.
func (d *Dispatcher) DispatchNotification(ctx context.Context, userID int64, relatedID *int64, message, typ string) {
	payload := models.NotificationRequest{
		UserID:      userID,
		ComplaintID: relatedID,
		Message:     message,
		Type:        typ,
		IsRead:      false,
	}
	ctx = context.WithoutCancel(ctx)

	if !d.async {
		d.deliver(ctx, payload)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(ctx, payload)
	}()
}

// Wait blocks until in-flight async dispatches finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, payload models.NotificationRequest) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorw("Notification dispatch panicked",
				"kind", apperr.KindSideEffectFailed.String(),
				"user_id", payload.UserID,
				"panic", r,
			)
		}
	}()

	if err := d.send(ctx, payload); err != nil {
		d.logger.Warnw("Notification dispatch failed",
			"kind", apperr.KindSideEffectFailed.String(),
			"user_id", payload.UserID,
			"complaint_id", payload.ComplaintID,
			"error", err,
		)
		return
	}

	d.logger.Infow("Notification dispatched",
		"user_id", payload.UserID,
		"complaint_id", payload.ComplaintID,
		"type", payload.Type,
	)
}

func (d *Dispatcher) send(ctx context.Context, payload models.NotificationRequest) error {
	base, err := d.resolver.Resolve(ctx, config.NotificationService)
	if err != nil {
		return apperr.SideEffectFailed(err, "resolve %s", config.NotificationService)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return apperr.SideEffectFailed(err, "encode notification")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/v1/notifications", bytes.NewReader(body))
	if err != nil {
		return apperr.SideEffectFailed(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return apperr.SideEffectFailed(err, "post notification")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxSnapshotBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.SideEffectFailed(fmt.Errorf("status %d", resp.StatusCode), "notification rejected")
	}
	return nil
}
