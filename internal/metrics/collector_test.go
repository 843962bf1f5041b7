package metrics

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()

	c.RecordTiming(OpTextGenerate, 100*time.Millisecond, nil)
	c.RecordTiming(OpTextGenerate, 300*time.Millisecond, errors.New("status 500"))

	snap := c.Snapshot()
	require.NotNil(t, snap.TextGenerate)
	assert.Equal(t, int64(2), snap.TextGenerate.Count)
	assert.Equal(t, int64(1), snap.TextGenerate.Failures)
	assert.Equal(t, int64(400), snap.TextGenerate.TotalTimeMs)
	assert.Equal(t, 200.0, snap.TextGenerate.AvgTimeMs)
	assert.Equal(t, int64(100), snap.TextGenerate.MinTimeMs)
	assert.Equal(t, int64(300), snap.TextGenerate.MaxTimeMs)

	assert.Nil(t, snap.ImageGenerate)
	assert.Nil(t, snap.StoreWrite)
}

func TestTimeReturnsError(t *testing.T) {
	c := NewCollector()
	want := errors.New("write failed")

	err := c.Time(OpStoreWrite, func() error { return want })
	assert.ErrorIs(t, err, want)

	require.NoError(t, c.Time(OpStoreWrite, func() error { return nil }))

	snap := c.Snapshot()
	require.NotNil(t, snap.StoreWrite)
	assert.Equal(t, int64(2), snap.StoreWrite.Count)
	assert.Equal(t, int64(1), snap.StoreWrite.Failures)
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordTiming(OpImageGenerate, time.Second, nil)
		_ = c.Time(OpImageGenerate, func() error { return nil })
	})
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordTiming(OpImageGenerate, time.Millisecond, nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), c.Snapshot().ImageGenerate.Count)
}

func TestSnapshotLogValue(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpTextGenerate, 10*time.Millisecond, nil)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("session stats", "metrics", c.Snapshot())

	assert.Contains(t, buf.String(), "metrics.text_generate.count=1")
	assert.NotContains(t, buf.String(), "image_generate")
}
