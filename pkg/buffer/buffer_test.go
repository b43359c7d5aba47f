package buffer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/scopelink/metric"
)

func TestNewCircularBuffer(t *testing.T) {
	buf, err := NewCircularBuffer[int](10)
	require.NoError(t, err)

	assert.Equal(t, 10, buf.Capacity())
	assert.Equal(t, 0, buf.Size())
	assert.True(t, buf.IsEmpty())
	assert.False(t, buf.IsFull())
}

func TestNewCircularBuffer_MinimumCapacity(t *testing.T) {
	buf, err := NewCircularBuffer[int](0)
	require.NoError(t, err)
	assert.Equal(t, 1, buf.Capacity())

	buf, err = NewCircularBuffer[int](-5)
	require.NoError(t, err)
	assert.Equal(t, 1, buf.Capacity())
}

func TestWriteRead_FIFO(t *testing.T) {
	buf, err := NewCircularBuffer[string](3)
	require.NoError(t, err)

	require.NoError(t, buf.Write("a"))
	require.NoError(t, buf.Write("b"))
	require.NoError(t, buf.Write("c"))
	assert.True(t, buf.IsFull())

	for _, want := range []string{"a", "b", "c"} {
		got, ok := buf.Read()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := buf.Read()
	assert.False(t, ok)
}

func TestOverflow_DropOldest(t *testing.T) {
	var dropped []int
	buf, err := NewCircularBuffer[int](2,
		WithOverflowPolicy[int](DropOldest),
		WithDropCallback[int](func(item int) { dropped = append(dropped, item) }),
	)
	require.NoError(t, err)

	require.NoError(t, buf.Write(1))
	require.NoError(t, buf.Write(2))
	require.NoError(t, buf.Write(3)) // drops 1

	assert.Equal(t, []int{1}, dropped)
	assert.Equal(t, int64(1), buf.Stats().Drops())
	assert.Equal(t, int64(1), buf.Stats().Overflows())

	got, ok := buf.Read()
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestOverflow_DropNewest(t *testing.T) {
	var dropped []int
	buf, err := NewCircularBuffer[int](2,
		WithOverflowPolicy[int](DropNewest),
		WithDropCallback[int](func(item int) { dropped = append(dropped, item) }),
	)
	require.NoError(t, err)

	require.NoError(t, buf.Write(1))
	require.NoError(t, buf.Write(2))
	require.NoError(t, buf.Write(3)) // 3 is dropped

	assert.Equal(t, []int{3}, dropped)

	got, ok := buf.Read()
	require.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestOverflow_Block(t *testing.T) {
	buf, err := NewCircularBuffer[int](1, WithOverflowPolicy[int](Block))
	require.NoError(t, err)

	require.NoError(t, buf.Write(1))

	var wg sync.WaitGroup
	wg.Add(1)
	unblocked := make(chan struct{})
	go func() {
		defer wg.Done()
		// Blocks until the reader below makes room
		_ = buf.Write(2)
		close(unblocked)
	}()

	select {
	case <-unblocked:
		t.Fatal("write should have blocked on a full buffer")
	case <-time.After(50 * time.Millisecond):
	}

	got, ok := buf.Read()
	require.True(t, ok)
	assert.Equal(t, 1, got)

	wg.Wait()
	got, ok = buf.Read()
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestDropCallback_MayReenterBuffer(t *testing.T) {
	// The callback runs after the buffer lock is released, so touching
	// the buffer from inside it must not deadlock.
	var buf Buffer[int]
	var sizesSeen []int

	buf, err := NewCircularBuffer[int](1,
		WithOverflowPolicy[int](DropOldest),
		WithDropCallback[int](func(int) {
			sizesSeen = append(sizesSeen, buf.Size())
		}),
	)
	require.NoError(t, err)
	require.NoError(t, buf.Write(1))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = buf.Write(2) // drops 1, callback reads buf.Size()
		buf.Clear()      // drops 2, callback reads buf.Size()
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drop callback deadlocked against the buffer lock")
	}
	assert.Equal(t, []int{1, 0}, sizesSeen)
}

func TestReadBatch(t *testing.T) {
	buf, err := NewCircularBuffer[int](5)
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		require.NoError(t, buf.Write(i))
	}

	assert.Nil(t, buf.ReadBatch(0))
	assert.Equal(t, []int{1, 2}, buf.ReadBatch(2))
	assert.Equal(t, []int{3, 4}, buf.ReadBatch(10))
	assert.Nil(t, buf.ReadBatch(1))
}

func TestClear(t *testing.T) {
	var dropped []int
	buf, err := NewCircularBuffer[int](3,
		WithDropCallback[int](func(item int) { dropped = append(dropped, item) }),
	)
	require.NoError(t, err)

	require.NoError(t, buf.Write(1))
	require.NoError(t, buf.Write(2))

	buf.Clear()
	assert.True(t, buf.IsEmpty())
	assert.ElementsMatch(t, []int{1, 2}, dropped)
}

func TestClose(t *testing.T) {
	buf, err := NewCircularBuffer[int](2)
	require.NoError(t, err)

	require.NoError(t, buf.Write(1))
	require.NoError(t, buf.Close())
	require.NoError(t, buf.Close()) // idempotent

	// Writes after close fail, reads drain remaining items
	assert.Error(t, buf.Write(2))
	got, ok := buf.Read()
	require.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestStatistics(t *testing.T) {
	buf, err := NewCircularBuffer[int](2)
	require.NoError(t, err)

	require.NoError(t, buf.Write(1))
	require.NoError(t, buf.Write(2))
	buf.Read()

	stats := buf.Stats()
	assert.Equal(t, int64(2), stats.Writes())
	assert.Equal(t, int64(1), stats.Reads())
	assert.Equal(t, int64(1), stats.CurrentSize())
	assert.Equal(t, int64(2), stats.MaxSize())
	assert.Equal(t, 0.5, stats.Utilization(2))

	summary := stats.Summary()
	assert.Equal(t, int64(2), summary.Writes)
	assert.Equal(t, int64(1), summary.Reads)

	stats.Reset()
	assert.Equal(t, int64(0), stats.Writes())
}

func TestWithMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	buf, err := NewCircularBuffer[int](2, WithMetrics[int](registry, "sample-handoff"))
	require.NoError(t, err)

	require.NoError(t, buf.Write(1))
	buf.Read()

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	assert.True(t, names["scopelink_buffer_writes_total"])
	assert.True(t, names["scopelink_buffer_reads_total"])
}

func TestConcurrentAccess(t *testing.T) {
	buf, err := NewCircularBuffer[int](100)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = buf.Write(base + i)
			}
		}(w * 1000)
	}

	done := make(chan struct{})
	var readCount int
	go func() {
		defer close(done)
		deadline := time.After(2 * time.Second)
		for readCount < 300 {
			select {
			case <-deadline:
				return
			default:
				if _, ok := buf.Read(); ok {
					readCount++
				}
			}
		}
	}()

	wg.Wait()
	<-done
	assert.GreaterOrEqual(t, readCount, 300)
}

func TestOverflowPolicy_String(t *testing.T) {
	assert.Equal(t, "DropOldest", DropOldest.String())
	assert.Equal(t, "DropNewest", DropNewest.String())
	assert.Equal(t, "Block", Block.String())
	assert.Equal(t, "Unknown", OverflowPolicy(99).String())
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, DropOldest, ParsePolicy("drop_oldest"))
	assert.Equal(t, DropNewest, ParsePolicy("drop_newest"))
	assert.Equal(t, Block, ParsePolicy("block"))
	assert.Equal(t, DropOldest, ParsePolicy(""))
	assert.Equal(t, DropOldest, ParsePolicy("bogus"))
}
