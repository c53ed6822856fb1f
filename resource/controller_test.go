package resource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})
	assert.Equal(t, 2, c.Workers())

	require.NoError(t, c.AcquireWorker(context.Background()))
	assert.True(t, c.TryAcquireWorker())
	assert.False(t, c.TryAcquireWorker())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireWorker(ctx), context.DeadlineExceeded)

	c.ReleaseWorker()
	assert.True(t, c.TryAcquireWorker())
}

func TestController_DefaultWorkers(t *testing.T) {
	c := NewController(Config{})
	assert.GreaterOrEqual(t, c.Workers(), 1)
}

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.ReserveMemory(60))
	assert.ErrorIs(t, c.ReserveMemory(50), ErrMemoryLimitExceeded)
	assert.Equal(t, int64(60), c.MemoryUsage())

	c.ReleaseMemory(30)
	require.NoError(t, c.ReserveMemory(50))
	assert.Equal(t, int64(80), c.MemoryUsage())

	unlimited := NewController(Config{})
	require.NoError(t, unlimited.ReserveMemory(1<<40))
	assert.Equal(t, int64(1<<40), unlimited.MemoryUsage())
}

func TestController_AcquireIOSplitsLargeRequests(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	// Larger than the burst but within the initial bucket plus ~1s.
	require.NoError(t, c.AcquireIO(context.Background(), (1<<20)+1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.AcquireIO(ctx, 1<<20))
}

func TestController_NilIsUnlimited(t *testing.T) {
	var c *Controller
	assert.Equal(t, 1, c.Workers())
	require.NoError(t, c.AcquireWorker(context.Background()))
	assert.True(t, c.TryAcquireWorker())
	c.ReleaseWorker()
	require.NoError(t, c.AcquireIO(context.Background(), 1<<30))
	require.NoError(t, c.ReserveMemory(10))
	c.ReleaseMemory(10)
	assert.Zero(t, c.MemoryUsage())

	var buf bytes.Buffer
	w := c.Writer(context.Background(), &buf)
	_, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", buf.String())
}

func TestController_ThrottledReaderWriter(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	ctx := context.Background()

	var buf bytes.Buffer
	w := c.Writer(ctx, &buf)
	_, err := io.Copy(w, strings.NewReader("hello world"))
	require.NoError(t, err)

	got, err := io.ReadAll(c.Reader(ctx, &buf))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}
