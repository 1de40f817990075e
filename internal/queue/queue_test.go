package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolram/jobapp/internal/models"
)

// fakeSender records every delivery attempt. failures says how many leading
// attempts should fail with err before succeeding; -1 fails forever.
type fakeSender struct {
	mu       sync.Mutex
	batches  []*models.IngestRequest
	attempts int
	failures int
	err      error
}

func (f *fakeSender) Send(_ context.Context, batch *models.IngestRequest) (*models.IngestResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	if f.failures == -1 || f.attempts <= f.failures {
		return nil, f.err
	}

	copied := *batch
	copied.Opportunities = append([]models.IngestItem(nil), batch.Opportunities...)
	f.batches = append(f.batches, &copied)

	return &models.IngestResponse{Inserted: len(batch.Opportunities)}, nil
}

func (f *fakeSender) sentBatches() []*models.IngestRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.IngestRequest(nil), f.batches...)
}

func (f *fakeSender) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

// testConfig disables the timers so flushes only happen on Close, keeping
// the tests deterministic.
func testConfig() Config {
	return Config{
		FlushDebounce:   time.Hour,
		FlushInterval:   time.Hour,
		ChunkSize:       50,
		MaxRetries:      3,
		BackoffSchedule: []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond},
		AttemptTimeout:  time.Second,
	}
}

func record(source, url, title string) RawRecord {
	return RawRecord{
		IngestItem: models.IngestItem{
			Title:   title,
			Company: "Acme",
			URL:     url,
		},
		Source:      source,
		PageURL:     "https://" + source + ".example.com/jobs",
		CollectedAt: "2025-06-01T12:00:00Z",
	}
}

func TestQueueDedupesSameRequestKeyKeepingLast(t *testing.T) {
	sender := &fakeSender{}
	q := New(sender, testConfig())

	q.Add(record("linkedin", "https://l.example.com/jobs/1", "First title"))
	q.Add(record("linkedin", "https://l.example.com/jobs/1", "Second title"))
	q.Close()

	batches := sender.sentBatches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Opportunities, 1)
	assert.Equal(t, "Second title", batches[0].Opportunities[0].Title)
}

func TestQueueGroupsBySource(t *testing.T) {
	sender := &fakeSender{}
	q := New(sender, testConfig())

	q.Add(
		record("linkedin", "https://l.example.com/jobs/1", "A"),
		record("gupy", "https://g.example.com/jobs/1", "B"),
		record("linkedin", "https://l.example.com/jobs/2", "C"),
	)
	q.Close()

	batches := sender.sentBatches()
	require.Len(t, batches, 2)

	bySource := map[string]int{}
	for _, batch := range batches {
		bySource[batch.Source] = len(batch.Opportunities)
	}
	assert.Equal(t, map[string]int{"linkedin": 2, "gupy": 1}, bySource)
}

func TestQueueChunksLargeGroups(t *testing.T) {
	sender := &fakeSender{}
	q := New(sender, testConfig())

	records := make([]RawRecord, 0, 120)
	for i := 0; i < 120; i++ {
		records = append(records, record("linkedin",
			fmt.Sprintf("https://l.example.com/jobs/%d", i), fmt.Sprintf("Job %d", i)))
	}
	q.Add(records...)
	q.Close()

	batches := sender.sentBatches()
	require.Len(t, batches, 3)

	sizes := []int{len(batches[0].Opportunities), len(batches[1].Opportunities), len(batches[2].Opportunities)}
	assert.Equal(t, []int{50, 50, 20}, sizes)
}

func TestQueueRetriesThenAbandons(t *testing.T) {
	sender := &fakeSender{failures: -1, err: errors.New("connection refused")}
	cfg := testConfig()
	q := New(sender, cfg)

	q.Add(
		record("linkedin", "https://l.example.com/jobs/1", "A"),
		record("linkedin", "https://l.example.com/jobs/2", "B"),
	)
	q.Close()

	// First attempt plus MaxRetries retries, then the batch is dropped.
	assert.Equal(t, cfg.MaxRetries+1, sender.attemptCount())

	stats := q.Stats()
	assert.Equal(t, 2, stats.Attempted)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 0, stats.Succeeded)
	assert.True(t, stats.LastSync.IsZero())
}

func TestQueueRecoversOnRetry(t *testing.T) {
	sender := &fakeSender{failures: 2, err: errors.New("HTTP 503")}
	q := New(sender, testConfig())

	q.Add(record("linkedin", "https://l.example.com/jobs/1", "A"))
	q.Close()

	assert.Equal(t, 3, sender.attemptCount())

	stats := q.Stats()
	assert.Equal(t, 1, stats.Attempted)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 0, stats.Failed)
	assert.False(t, stats.LastSync.IsZero())
}

func TestQueueUnauthorizedIsTerminal(t *testing.T) {
	sender := &fakeSender{failures: -1, err: ErrUnauthorized}
	q := New(sender, testConfig())

	q.Add(record("linkedin", "https://l.example.com/jobs/1", "A"))
	q.Close()

	// No retries: the credential is wrong, retrying wastes cycles.
	assert.Equal(t, 1, sender.attemptCount())

	stats := q.Stats()
	assert.Equal(t, 1, stats.Failed)
}

func TestQueueStatsReflectQueueSize(t *testing.T) {
	sender := &fakeSender{}
	q := New(sender, testConfig())
	defer q.Close()

	q.Add(record("linkedin", "https://l.example.com/jobs/1", "A"))
	q.Add(record("linkedin", "https://l.example.com/jobs/2", "B"))

	assert.Equal(t, 2, q.Stats().QueueSize)
}

func TestQueueDebounceFlushes(t *testing.T) {
	sender := &fakeSender{}
	cfg := testConfig()
	cfg.FlushDebounce = 5 * time.Millisecond
	q := New(sender, cfg)
	defer q.Close()

	q.Add(record("linkedin", "https://l.example.com/jobs/1", "A"))

	require.Eventually(t, func() bool {
		return len(sender.sentBatches()) == 1
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, 0, q.Stats().QueueSize)
}

func TestBackoffScheduleRepeatsLastDelay(t *testing.T) {
	q := &Queue{cfg: Config{
		BackoffSchedule: []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second},
	}}

	assert.Equal(t, 2*time.Second, q.backoffDelay(0))
	assert.Equal(t, 4*time.Second, q.backoffDelay(1))
	assert.Equal(t, 8*time.Second, q.backoffDelay(2))
	assert.Equal(t, 8*time.Second, q.backoffDelay(3))
	assert.Equal(t, 8*time.Second, q.backoffDelay(10))
}

func TestQueueCloseDrains(t *testing.T) {
	sender := &fakeSender{}
	q := New(sender, testConfig())

	q.Add(record("gupy", "https://g.example.com/jobs/1", "A"))
	q.Close()

	require.Len(t, sender.sentBatches(), 1)
	assert.Equal(t, 0, q.Stats().QueueSize)
}
