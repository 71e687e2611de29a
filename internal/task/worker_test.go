package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolRunsTasks(t *testing.T) {
	wp := NewWorkerPool(2)
	wp.Start()
	defer wp.Stop()

	var n atomic.Int32
	done := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		err := wp.Submit(context.Background(), NewTask("", "room", func(_ context.Context, target string, md map[string]any) error {
			assert.Equal(t, "room", target)
			assert.Equal(t, "v", md["k"])
			n.Add(1)
			done <- struct{}{}
			return nil
		}).WithMetadata("k", "v"))
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("task not executed")
		}
	}
	assert.EqualValues(t, 5, n.Load())
}

func TestWorkerPoolSurvivesPanic(t *testing.T) {
	wp := NewWorkerPool(1)
	wp.Start()
	defer wp.Stop()

	require.NoError(t, wp.Submit(context.Background(), NewTask("p", "x", func(context.Context, string, map[string]any) error {
		panic("boom")
	})))
	done := make(chan struct{})
	require.NoError(t, wp.Submit(context.Background(), NewTask("ok", "x", func(context.Context, string, map[string]any) error {
		close(done)
		return errors.New("still logged")
	})))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after panic")
	}
}

func TestWorkerPoolStopCancelsTasks(t *testing.T) {
	wp := NewWorkerPool(1)
	wp.Start()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	require.NoError(t, wp.Submit(context.Background(), NewTask("", "x", func(ctx context.Context, _ string, _ map[string]any) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})))
	<-started
	assert.Equal(t, 1, wp.Running())
	wp.Stop()

	select {
	case <-cancelled:
	default:
		t.Fatal("task ctx not cancelled")
	}
	assert.ErrorIs(t, wp.Submit(context.Background(), NewTask("", "x", nil)), ErrPoolClosed)
	wp.Stop()
}

func TestNewTaskGeneratesID(t *testing.T) {
	a := NewTask("", "x", nil)
	b := NewTask("", "x", nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "fixed", NewTask("fixed", "x", nil).ID)
	assert.NoError(t, a.Execute(context.Background()))
}
