// Package queue buffers scraped listings on the collector side and delivers
// them to the ingest API in batched, deduplicated, retried requests.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wolram/jobapp/internal/models"
)

// ErrUnauthorized signals that the server rejected the collector's token.
// It is terminal: retrying with the same credential is pointless.
var ErrUnauthorized = errors.New("ingest unauthorized")

// BatchSender delivers one batch to the server.
type BatchSender interface {
	Send(ctx context.Context, batch *models.IngestRequest) (*models.IngestResponse, error)
}

// RawRecord is one scraped listing plus the page metadata it was collected
// under. Records live only in queue memory until delivered or dropped.
type RawRecord struct {
	models.IngestItem
	Source      string
	PageURL     string
	CollectedAt string
}

// Config holds the queue's timing and batching knobs.
type Config struct {
	// FlushDebounce coalesces bursts from one page-load event.
	FlushDebounce time.Duration
	// FlushInterval drains the buffer even if no debounce fires.
	FlushInterval time.Duration
	// ChunkSize bounds the item count of a single request.
	ChunkSize int
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BackoffSchedule delays between attempts; the last value repeats.
	BackoffSchedule []time.Duration
	// AttemptTimeout bounds one network round trip so a hung connection
	// cannot stall the flush loop.
	AttemptTimeout time.Duration
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		FlushDebounce:   1 * time.Second,
		FlushInterval:   30 * time.Second,
		ChunkSize:       50,
		MaxRetries:      3,
		BackoffSchedule: []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second},
		AttemptTimeout:  15 * time.Second,
	}
}

// Stats is a snapshot of the queue's running totals.
type Stats struct {
	Attempted int       `json:"attempted"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	QueueSize int       `json:"queue_size"`
	LastSync  time.Time `json:"last_sync"`
}

// Queue accepts bursts of raw records and flushes them to a BatchSender.
// All flushes run on a single background goroutine, so at most one flush is
// ever in flight; triggers arriving mid-flush are dropped and the next
// scheduled flush picks up whatever buffered meanwhile.
type Queue struct {
	cfg    Config
	sender BatchSender

	mu     sync.Mutex
	buffer []RawRecord
	stats  Stats

	notifyCh chan struct{}
	flushCh  chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Queue and starts its flush loop.
func New(sender BatchSender, cfg Config) *Queue {
	q := &Queue{
		cfg:      cfg,
		sender:   sender,
		notifyCh: make(chan struct{}, 1),
		flushCh:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go q.run()
	return q
}

// Add appends records to the buffer and schedules a debounced flush.
// It never blocks on delivery.
func (q *Queue) Add(records ...RawRecord) {
	if len(records) == 0 {
		return
	}

	q.mu.Lock()
	q.buffer = append(q.buffer, records...)
	q.mu.Unlock()

	select {
	case q.notifyCh <- struct{}{}:
	default:
	}
}

// Flush requests an immediate flush. The request is a no-op if a flush is
// already queued or in progress.
func (q *Queue) Flush() {
	select {
	case q.flushCh <- struct{}{}:
	default:
	}
}

// Stats returns the current counters without blocking the flush loop.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	stats := q.stats
	stats.QueueSize = len(q.buffer)
	return stats
}

// Close drains the buffer one final time and stops the flush loop.
func (q *Queue) Close() {
	q.stopOnce.Do(func() {
		close(q.stopCh)
	})
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)

	debounce := time.NewTimer(q.cfg.FlushDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	ticker := time.NewTicker(q.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.notifyCh:
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(q.cfg.FlushDebounce)
		case <-debounce.C:
			q.flush()
		case <-ticker.C:
			q.flush()
		case <-q.flushCh:
			q.flush()
		case <-q.stopCh:
			q.flush()
			return
		}
	}
}

// flush drains the buffer and delivers its contents. The buffer stays
// mutable while delivery is in progress; anything added meanwhile waits for
// the next flush.
func (q *Queue) flush() {
	q.mu.Lock()
	pending := q.buffer
	q.buffer = nil
	q.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	for _, batch := range buildBatches(pending, q.cfg.ChunkSize) {
		q.deliver(batch)
	}
}

// buildBatches dedupes records by same-request key, groups them by source
// and splits each group into chunks. Dedupe here is a best-effort in-memory
// filter; the server's cryptographic key is the durability guarantee.
func buildBatches(records []RawRecord, chunkSize int) []*models.IngestRequest {
	// Keep the last-seen record per source:url, preserving first-seen order.
	position := make(map[string]int)
	var unique []RawRecord
	for _, record := range records {
		key := fmt.Sprintf("%s:%s", record.Source, record.URL)
		if idx, seen := position[key]; seen {
			unique[idx] = record
			continue
		}
		position[key] = len(unique)
		unique = append(unique, record)
	}

	// Group by source, taking the page metadata from the group's first record.
	groupIndex := make(map[string]int)
	var groups []*models.IngestRequest
	for _, record := range unique {
		idx, ok := groupIndex[record.Source]
		if !ok {
			idx = len(groups)
			groupIndex[record.Source] = idx
			groups = append(groups, &models.IngestRequest{
				Source:      record.Source,
				PageURL:     record.PageURL,
				CollectedAt: record.CollectedAt,
			})
		}
		groups[idx].Opportunities = append(groups[idx].Opportunities, record.IngestItem)
	}

	// Chunk each group so a single request stays bounded.
	var batches []*models.IngestRequest
	for _, group := range groups {
		items := group.Opportunities
		for start := 0; start < len(items); start += chunkSize {
			end := start + chunkSize
			if end > len(items) {
				end = len(items)
			}
			batches = append(batches, &models.IngestRequest{
				Source:        group.Source,
				PageURL:       group.PageURL,
				CollectedAt:   group.CollectedAt,
				Opportunities: items[start:end],
			})
		}
	}
	return batches
}

// deliver sends one batch, retrying transient failures per the backoff
// schedule. Items of an abandoned batch are not requeued: delivery is
// at-most-once per flush cycle.
func (q *Queue) deliver(batch *models.IngestRequest) {
	count := len(batch.Opportunities)

	for attempt := 0; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), q.cfg.AttemptTimeout)
		resp, err := q.sender.Send(ctx, batch)
		cancel()

		if err == nil {
			q.mu.Lock()
			q.stats.Attempted += count
			q.stats.Succeeded += resp.Inserted + resp.Updated
			q.stats.LastSync = time.Now()
			q.mu.Unlock()
			return
		}

		if errors.Is(err, ErrUnauthorized) {
			log.Printf("⚠️  Ingest batch rejected: invalid or revoked token (%d items dropped)", count)
			q.recordFailure(count)
			return
		}

		if attempt >= q.cfg.MaxRetries {
			log.Printf("❌ Ingest batch abandoned after %d attempts: %v (%d items dropped)", attempt+1, err, count)
			q.recordFailure(count)
			return
		}

		delay := q.backoffDelay(attempt)
		log.Printf("🔁 Ingest retry %d/%d in %s: %v", attempt+1, q.cfg.MaxRetries, delay, err)
		time.Sleep(delay)
	}
}

func (q *Queue) recordFailure(count int) {
	q.mu.Lock()
	q.stats.Attempted += count
	q.stats.Failed += count
	q.mu.Unlock()
}

// backoffDelay returns the delay before retry number attempt+1. Past the end
// of the schedule the last value repeats.
func (q *Queue) backoffDelay(attempt int) time.Duration {
	if len(q.cfg.BackoffSchedule) == 0 {
		return 0
	}
	if attempt >= len(q.cfg.BackoffSchedule) {
		return q.cfg.BackoffSchedule[len(q.cfg.BackoffSchedule)-1]
	}
	return q.cfg.BackoffSchedule[attempt]
}
