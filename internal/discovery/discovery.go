// Package discovery resolves logical service names to base URLs.
//
// Services register their advertised address in redis under a TTL and keep it
// alive with a Heartbeat; callers resolve through a chain that falls back to
// statically configured URLs.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrUnknownService is returned when no resolver knows the name.
var ErrUnknownService = errors.New("unknown service")

// Resolver maps a logical service name to a base address such as
// "http://10.0.0.4:8081".
type Resolver interface {
	Resolve(ctx context.Context, service string) (string, error)
}

// StaticResolver resolves from a fixed map.
type StaticResolver map[string]string

func (s StaticResolver) Resolve(_ context.Context, service string) (string, error) {
	addr, ok := s[service]
	if !ok || addr == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownService, service)
	}
	return strings.TrimRight(addr, "/"), nil
}

// Chain tries each resolver in order and returns the first address found.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, service string) (string, error) {
	var errs []error
	for _, r := range c {
		addr, err := r.Resolve(ctx, service)
		if err == nil {
			return addr, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownService, service)
	}
	return "", errors.Join(errs...)
}

const keyPrefix = "discovery:"

// RedisRegistry stores service addresses in redis with an expiry.
type RedisRegistry struct {
	client *redis.Client
}

func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

// Register publishes addr for service, valid for ttl.
func (r *RedisRegistry) Register(ctx context.Context, service, addr string, ttl time.Duration) error {
	if err := r.client.Set(ctx, keyPrefix+service, addr, ttl).Err(); err != nil {
		return fmt.Errorf("register %s: %w", service, err)
	}
	return nil
}

// Deregister removes the service entry, typically on shutdown.
func (r *RedisRegistry) Deregister(ctx context.Context, service string) error {
	return r.client.Del(ctx, keyPrefix+service).Err()
}

func (r *RedisRegistry) Resolve(ctx context.Context, service string) (string, error) {
	addr, err := r.client.Get(ctx, keyPrefix+service).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrUnknownService, service)
	}
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", service, err)
	}
	return strings.TrimRight(addr, "/"), nil
}

// Registrar is the part of RedisRegistry the heartbeat needs.
type Registrar interface {
	Register(ctx context.Context, service, addr string, ttl time.Duration) error
	Deregister(ctx context.Context, service string) error
}

// Heartbeat periodically re-registers a service so its entry never expires
// while the process is alive.
type Heartbeat struct {
	registrar Registrar
	service   string
	addr      string
	logger    *zap.SugaredLogger
}

func NewHeartbeat(r Registrar, service, addr string, logger *zap.SugaredLogger) *Heartbeat {
	return &Heartbeat{registrar: r, service: service, addr: addr, logger: logger}
}

// Start registers immediately, then every interval until ctx is done. The TTL
// is three intervals so a single missed beat does not drop the entry.
func (h *Heartbeat) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ttl := 3 * interval
	h.beat(ctx, ttl)

	for {
		select {
		case <-ctx.Done():
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := h.registrar.Deregister(cleanupCtx, h.service); err != nil {
				h.logger.Warnw("Deregistration failed", "service", h.service, "error", err)
			}
			cancel()
			h.logger.Info("Discovery heartbeat stopped")
			return
		case <-ticker.C:
			h.beat(ctx, ttl)
		}
	}
}

func (h *Heartbeat) beat(ctx context.Context, ttl time.Duration) {
	if err := h.registrar.Register(ctx, h.service, h.addr, ttl); err != nil {
		h.logger.Warnw("Heartbeat failed", "service", h.service, "error", err)
		return
	}
	h.logger.Debugw("Heartbeat sent", "service", h.service, "addr", h.addr)
}
