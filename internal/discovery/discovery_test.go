package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStaticResolver(t *testing.T) {
	r := StaticResolver{"user-service": "http://users:8081/"}

	addr, err := r.Resolve(context.Background(), "user-service")
	require.NoError(t, err)
	assert.Equal(t, "http://users:8081", addr)

	_, err = r.Resolve(context.Background(), "media-service")
	assert.ErrorIs(t, err, ErrUnknownService)
}

type failingResolver struct{ err error }

func (f failingResolver) Resolve(context.Context, string) (string, error) { return "", f.err }

func TestChain_FallsThrough(t *testing.T) {
	c := Chain{
		failingResolver{err: errors.New("redis down")},
		StaticResolver{"complaint-service": "http://complaints:8082"},
	}

	addr, err := c.Resolve(context.Background(), "complaint-service")
	require.NoError(t, err)
	assert.Equal(t, "http://complaints:8082", addr)

	_, err = c.Resolve(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.ErrorIs(t, err, ErrUnknownService)
}

type recordingRegistrar struct {
	mu           sync.Mutex
	registered   int
	deregistered bool
	lastTTL      time.Duration
}

func (r *recordingRegistrar) Register(_ context.Context, _, _ string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered++
	r.lastTTL = ttl
	return nil
}

func (r *recordingRegistrar) Deregister(context.Context, string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deregistered = true
	return nil
}

func TestHeartbeat_RegistersUntilCancelled(t *testing.T) {
	reg := &recordingRegistrar{}
	hb := NewHeartbeat(reg, "media-service", "http://media:8083", zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hb.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		reg.mu.Lock()
		defer reg.mu.Unlock()
		return reg.registered >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	reg.mu.Lock()
	defer reg.mu.Unlock()
	assert.True(t, reg.deregistered)
	assert.Equal(t, 30*time.Millisecond, reg.lastTTL)
}
