package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (c *countingExpirer) ExpireAll(context.Context) (int64, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestExpirySweeper_RunsUntilCancelled(t *testing.T) {
	exp := &countingExpirer{}
	s := NewExpirySweeper(exp, 5*time.Millisecond, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return exp.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestExpirySweeper_DisabledReturnsImmediately(t *testing.T) {
	exp := &countingExpirer{}
	NewExpirySweeper(exp, 0, logger.NewNop()).Run(context.Background())
	assert.Equal(t, int32(0), exp.calls.Load())
}

func TestExpirySweeper_SweepLogsErrors(t *testing.T) {
	exp := &countingExpirer{err: errors.New("mongo down")}
	s := NewExpirySweeper(exp, time.Hour, logger.NewNop())

	assert.NotPanics(t, func() { s.Sweep(context.Background()) })
	assert.Equal(t, int32(1), exp.calls.Load())
}
