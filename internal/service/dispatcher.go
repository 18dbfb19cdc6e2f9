package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/programming666/personal-blog/config"
	"github.com/programming666/personal-blog/internal/metrics"
	"github.com/programming666/personal-blog/internal/model"
	"github.com/programming666/personal-blog/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// broadcastStore is the part of the broadcast repository a dispatcher run uses
type broadcastStore interface {
	FindWithDetails(ctx context.Context, id uint) (*model.BroadcastMessage, error)
	UpdateState(ctx context.Context, b *model.BroadcastMessage) error
	DeliverBatch(ctx context.Context, b *model.BroadcastMessage, deliver repository.DeliverFunc) error
	MarkFailed(ctx context.Context, id uint, message string) error
}

// messageWriter stores one message
type messageWriter interface {
	Create(ctx context.Context, message *model.Message) error
}

// Dispatcher fans broadcasts out into per-user messages in the background.
//
// A run walks the retryable entries of one broadcast in batches, one after
// another with a pause in between. The messages of a batch are committed in
// the same transaction as its entries and counters. A failing entry is
// recorded on the entry; only a failure of the run itself (store outage,
// shutdown) marks the whole broadcast failed.
type Dispatcher struct {
	store    broadcastStore
	messages messageWriter
	lock     repository.DispatchLock
	cfg      config.BroadcastConfig
	logger   zerolog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(store broadcastStore, messages messageWriter, lock repository.DispatchLock, cfg config.BroadcastConfig, logger zerolog.Logger) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = model.DefaultMaxRetries
	}
	if cfg.LockTTLSeconds <= 0 {
		cfg.LockTTLSeconds = 3600
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		store:    store,
		messages: messages,
		lock:     lock,
		cfg:      cfg,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Schedule starts a detached run for a broadcast and returns immediately.
// Errors end up on the broadcast record, never with the caller.
func (d *Dispatcher) Schedule(broadcastID uint) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn().Uint("broadcast_id", broadcastID).Msg("dispatcher is shutting down, run not scheduled")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error().Uint("broadcast_id", broadcastID).Interface("panic", r).Msg("dispatcher run panicked")
				d.markFailed(broadcastID, fmt.Sprintf("panic: %v", r))
			}
		}()

		if err := d.Run(d.ctx, broadcastID); err != nil {
			d.logger.Error().Err(err).Uint("broadcast_id", broadcastID).Msg("dispatcher run failed")
		}
	}()
}

// Shutdown stops accepting runs and waits for in-flight ones. When ctx expires
// first, running broadcasts are cancelled at their next batch boundary and
// marked failed so they can be retried.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
		return ctx.Err()
	}
}

// Run performs one dispatch of a broadcast synchronously. A missing broadcast
// or one already owned by another run is a silent no-op.
func (d *Dispatcher) Run(ctx context.Context, broadcastID uint) error {
	log := d.logger.With().Uint("broadcast_id", broadcastID).Logger()

	release, ok, err := d.lock.TryAcquire(ctx, broadcastID, d.cfg.LockTTL())
	if err != nil {
		return fmt.Errorf("acquire dispatch lock: %w", err)
	}
	if !ok {
		metrics.BroadcastRunsTotal.WithLabelValues("skipped").Inc()
		log.Debug().Msg("broadcast is being dispatched elsewhere")
		return nil
	}
	// The lock is dropped before a failure is recorded: a retry accepted after
	// the record turns failed must find the lock free.
	var once sync.Once
	unlock := func() { once.Do(release) }
	defer unlock()

	metrics.BroadcastRunsInFlight.Inc()
	defer metrics.BroadcastRunsInFlight.Dec()

	b, err := d.store.FindWithDetails(ctx, broadcastID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug().Msg("broadcast no longer exists")
			return nil
		}
		return storeError("load broadcast", err)
	}
	if b.Status != model.BroadcastPending && b.Status != model.BroadcastSending {
		metrics.BroadcastRunsTotal.WithLabelValues("skipped").Inc()
		log.Debug().Str("status", string(b.Status)).Msg("broadcast is not dispatchable")
		return nil
	}

	if err := d.process(ctx, b, log); err != nil {
		metrics.BroadcastRunsTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Int("success", b.SuccessCount).Int("failed", b.FailedCount).Msg("broadcast failed")
		unlock()
		d.markFailed(broadcastID, err.Error())
		return err
	}

	metrics.BroadcastRunsTotal.WithLabelValues("completed").Inc()
	log.Info().
		Int("total", b.TotalRecipients).
		Int("success", b.SuccessCount).
		Int("failed", b.FailedCount).
		Msg("broadcast completed")
	return nil
}

func (d *Dispatcher) process(ctx context.Context, b *model.BroadcastMessage, log zerolog.Logger) error {
	maxRetries := b.MaxRetries
	if maxRetries <= 0 {
		maxRetries = d.cfg.MaxRetries
	}

	// Entries settled by earlier runs keep counting towards progress.
	work := make([]int, 0, len(b.SendDetails))
	b.SuccessCount, b.FailedCount = 0, 0
	for i := range b.SendDetails {
		e := &b.SendDetails[i]
		switch {
		case e.Retryable(maxRetries):
			work = append(work, i)
		case e.Status == model.SendSent:
			b.SuccessCount++
		default:
			b.FailedCount++
		}
	}

	now := d.now()
	b.Status = model.BroadcastSending
	b.ErrorMessage = ""
	if b.StartedAt == nil {
		b.StartedAt = &now
	}
	*b = model.RecomputeProgress(*b, now)
	if b.TotalRecipients == 0 {
		b.Status = model.BroadcastCompleted
		b.Progress = 100
		b.CompletedAt = &now
	}
	if err := d.store.UpdateState(ctx, b); err != nil {
		return storeError("start broadcast", err)
	}

	log.Info().Int("total", b.TotalRecipients).Int("pending", len(work)).Msg("broadcast dispatch started")

	batchSize := d.cfg.BatchSize
	for start := 0; start < len(work); start += batchSize {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("dispatch interrupted: %w", err)
		}

		end := start + batchSize
		if end > len(work) {
			end = len(work)
		}
		if err := d.runBatch(ctx, b, work[start:end]); err != nil {
			return err
		}
		log.Debug().
			Int("batch", start/batchSize+1).
			Int("progress", b.Progress).
			Int("success", b.SuccessCount).
			Int("failed", b.FailedCount).
			Msg("batch persisted")

		if end < len(work) {
			select {
			case <-ctx.Done():
				return fmt.Errorf("dispatch interrupted: %w", ctx.Err())
			case <-time.After(d.cfg.BatchPause()):
			}
		}
	}
	return nil
}

// runBatch delivers the entries at the given indexes and commits the messages
// together with the entry outcomes and the job counters.
func (d *Dispatcher) runBatch(ctx context.Context, b *model.BroadcastMessage, indexes []int) error {
	started := time.Now()

	// An issued batch is always recorded, even when the run is being cancelled.
	err := d.store.DeliverBatch(context.WithoutCancel(ctx), b, func(txCtx context.Context) ([]model.BroadcastSendDetail, error) {
		now := d.now()
		touched := make([]model.BroadcastSendDetail, 0, len(indexes))
		for _, idx := range indexes {
			e := &b.SendDetails[idx]
			err := d.messages.Create(txCtx, &model.Message{
				Title:         b.Title,
				Content:       b.Content,
				Sender:        SenderAdmin,
				Recipient:     strconv.FormatUint(uint64(e.UserID), 10),
				RecipientType: model.RecipientUserID,
			})
			if err != nil {
				e.Status = model.SendFailed
				e.Error = err.Error()
				e.RetryCount++
				b.FailedCount++
			} else {
				sentAt := now
				e.Status = model.SendSent
				e.Error = ""
				e.SentAt = &sentAt
				b.SuccessCount++
			}
			touched = append(touched, *e)
		}
		*b = model.RecomputeProgress(*b, now)
		return touched, nil
	})
	if err != nil {
		return storeError("persist batch", err)
	}

	for _, idx := range indexes {
		if b.SendDetails[idx].Status == model.SendSent {
			metrics.BroadcastEntriesTotal.WithLabelValues("sent").Inc()
			metrics.MessagesCreatedTotal.WithLabelValues("broadcast").Inc()
		} else {
			metrics.BroadcastEntriesTotal.WithLabelValues("failed").Inc()
		}
	}
	metrics.BroadcastBatchDuration.Observe(time.Since(started).Seconds())
	return nil
}

// markFailed records a job-level failure. It runs on its own context because
// the run context may already be cancelled.
func (d *Dispatcher) markFailed(broadcastID uint, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.store.MarkFailed(ctx, broadcastID, message); err != nil {
		d.logger.Error().Err(err).Uint("broadcast_id", broadcastID).Msg("could not mark broadcast failed")
	}
}
