package analytics

import (
	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/repository"
	"FTJ-Ads-Backend/pkg/useragent"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ProcessorConfig holds configuration for the event processor
type ProcessorConfig struct {
	WorkerCount     int           // Number of worker goroutines
	BufferSize      int           // Size of the job queue buffer
	RetryAttempts   int           // Number of retry attempts for failed jobs
	RetryDelay      time.Duration // Base delay between retries
	ShutdownTimeout time.Duration // Time to wait for graceful shutdown
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() ProcessorConfig {
	return ProcessorConfig{
		WorkerCount:     3,
		BufferSize:      1000,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Processor persists collected ad events asynchronously with reliability
// guarantees: a bounded queue, worker goroutines, retry with exponential
// backoff, graceful shutdown with a timeout.
type Processor struct {
	config   ProcessorConfig
	storage  repository.Storage
	log      *zap.Logger
	jobQueue chan []*domain.AdEvent
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
}

// NewProcessor creates a new event processor
func NewProcessor(storage repository.Storage, log *zap.Logger, config ProcessorConfig) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		config:   config,
		storage:  storage,
		log:      log,
		jobQueue: make(chan []*domain.AdEvent, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
		started:  false,
	}
}

// Start begins processing collected events
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("processor already started")
	}

	p.log.Info("starting event processor",
		zap.Int("workers", p.config.WorkerCount),
		zap.Int("buffer_size", p.config.BufferSize),
		zap.Int("retry_attempts", p.config.RetryAttempts),
	)

	// Start worker goroutines
	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.started = true
	return nil
}

// Stop gracefully shuts down the processor
func (p *Processor) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return fmt.Errorf("processor not started")
	}

	p.log.Info("stopping event processor")

	// Signal all workers to stop
	p.cancel()

	// Close the job queue to prevent new jobs
	close(p.jobQueue)

	// Wait for all workers to finish with timeout
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info("event processor stopped gracefully")
	case <-time.After(p.config.ShutdownTimeout):
		p.log.Warn("event processor shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}

	p.started = false
	return nil
}

// SubmitBatch submits a batch of events for asynchronous persistence
func (p *Processor) SubmitBatch(events []*domain.AdEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return fmt.Errorf("processor not started")
	}
	if len(events) == 0 {
		return nil
	}

	select {
	case p.jobQueue <- events:
		p.log.Debug("event batch submitted for processing", zap.Int("events", len(events)))
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("processor is shutting down")
	default:
		// Queue is full, this is a critical situation
		p.log.Error("collection queue is full, dropping event batch",
			zap.Int("events", len(events)),
			zap.Int("queue_size", len(p.jobQueue)),
		)
		return fmt.Errorf("collection queue is full")
	}
}

// worker processes event batches with retry logic
func (p *Processor) worker(workerID int) {
	defer p.wg.Done()

	log := p.log.With(zap.Int("worker_id", workerID))
	log.Info("collection worker started")

	for {
		select {
		case events := <-p.jobQueue:
			if events == nil {
				// Channel closed, worker should exit
				log.Info("collection worker stopped")
				return
			}

			p.processBatchWithRetry(log, events)

		case <-p.ctx.Done():
			log.Info("collection worker received shutdown signal")
			return
		}
	}
}

// processBatchWithRetry persists one batch with retry logic
func (p *Processor) processBatchWithRetry(log *zap.Logger, events []*domain.AdEvent) {
	var lastErr error

	for attempt := 1; attempt <= p.config.RetryAttempts; attempt++ {
		// Create a context with timeout for each attempt
		ctx, cancel := context.WithTimeout(p.ctx, 30*time.Second)

		err := p.processBatch(ctx, events)
		cancel()

		if err == nil {
			if attempt > 1 {
				log.Info("event batch persisted after retry",
					zap.Int("events", len(events)),
					zap.Int("attempt", attempt),
				)
			}
			return
		}

		lastErr = err
		log.Warn("event batch persistence failed",
			zap.Int("events", len(events)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.config.RetryAttempts),
			zap.Error(err),
		)

		// Don't retry on last attempt
		if attempt == p.config.RetryAttempts {
			break
		}

		// Exponential backoff delay
		delay := p.config.RetryDelay * time.Duration(1<<(attempt-1))

		select {
		case <-time.After(delay):
			// Continue to next attempt
		case <-p.ctx.Done():
			log.Info("worker shutdown during retry delay")
			return
		}
	}

	// All retries failed
	log.Error("event batch lost after all retries",
		zap.Int("events", len(events)),
		zap.Int("attempts", p.config.RetryAttempts),
		zap.Error(lastErr),
	)
}

// processBatch enriches and persists one batch of events
func (p *Processor) processBatch(ctx context.Context, events []*domain.AdEvent) error {
	for _, event := range events {
		p.enrich(event)
	}

	if err := p.storage.SaveEventBatch(ctx, events); err != nil {
		return fmt.Errorf("failed to persist event batch: %w", err)
	}

	p.log.Debug("event batch persisted", zap.Int("events", len(events)))
	return nil
}

// enrich fills device/browser/OS fields from the batch user agent
func (p *Processor) enrich(event *domain.AdEvent) {
	if event.UserAgent == nil || *event.UserAgent == "" {
		return
	}
	if event.DeviceType != nil {
		// Already enriched
		return
	}

	parser := useragent.GetGlobalParser()
	if parser == nil {
		deviceType := useragent.FallbackDeviceType(*event.UserAgent)
		event.DeviceType = &deviceType
		return
	}

	info := parser.ParseUserAgent(*event.UserAgent)
	event.DeviceType = &info.DeviceType
	event.Browser = &info.Browser
	event.OS = &info.OS
}

// GetStats returns processor statistics
func (p *Processor) GetStats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"started":        p.started,
		"queue_length":   len(p.jobQueue),
		"queue_capacity": cap(p.jobQueue),
		"worker_count":   p.config.WorkerCount,
		"retry_attempts": p.config.RetryAttempts,
	}
}
