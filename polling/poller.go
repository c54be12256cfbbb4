package polling

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v81"

	"github.com/nimbusmart/nimbusmart-backend-go/metrics"
	"github.com/nimbusmart/nimbusmart-backend-go/payments"
)

const pollBatchLimit = 100

// EventSource lists provider events created after a timestamp.
type EventSource interface {
	ListEventsSince(ctx context.Context, since time.Time, limit int64) ([]stripe.Event, error)
}

// Watermark supplies the lower bound for the next poll query.
type Watermark interface {
	LatestTimestamp(ctx context.Context) (time.Time, error)
}

// EventProcessor is satisfied by payments.Processor.
type EventProcessor interface {
	Process(ctx context.Context, evt payments.Event) error
}

// Poller periodically reconciles provider events the webhook path may have
// missed. It feeds every discovered event into the same processor the
// webhook uses; the event log gate de-duplicates the overlap.
type Poller struct {
	source    EventSource
	watermark Watermark
	processor EventProcessor
	interval  time.Duration
	cron      *cron.Cron

	mu              sync.Mutex
	running         bool
	lastPollTime    time.Time
	lastError       string
	processedEvents int64
	failedEvents    int64
}

// HealthStatus is a point-in-time snapshot of the poller.
type HealthStatus struct {
	IsRunning       bool      `json:"isRunning"`
	LastPollTime    time.Time `json:"lastPollTime"`
	ProcessedEvents int64     `json:"processedEvents"`
	FailedEvents    int64     `json:"failedEvents"`
	LastError       string    `json:"lastError,omitempty"`
}

func NewPoller(source EventSource, watermark Watermark, processor EventProcessor, interval time.Duration) *Poller {
	return &Poller{
		source:    source,
		watermark: watermark,
		processor: processor,
		interval:  interval,
		cron:      cron.New(),
	}
}

func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("poller already running")
	}

	spec := fmt.Sprintf("@every %s", p.interval)
	if _, err := p.cron.AddFunc(spec, p.poll); err != nil {
		return err
	}
	p.cron.Start()
	p.running = true
	log.Printf("⏰ Stripe reconciliation poller started (%s)", spec)
	return nil
}

func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	done := p.cron.Stop()
	p.mu.Unlock()

	// Wait without the mutex: an in-flight poll needs it to finish its
	// bookkeeping before the cron done-context fires.
	<-done.Done()
	log.Println("⏰ Stripe reconciliation poller stopped")
}

func (p *Poller) Health() HealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return HealthStatus{
		IsRunning:       p.running,
		LastPollTime:    p.lastPollTime,
		ProcessedEvents: p.processedEvents,
		FailedEvents:    p.failedEvents,
		LastError:       p.lastError,
	}
}

func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Println("🔍 Polling Stripe for missed events...")

	since, err := p.watermark.LatestTimestamp(ctx)
	if err != nil {
		p.recordError(fmt.Sprintf("event watermark: %v", err))
		return
	}

	events, err := p.source.ListEventsSince(ctx, since, pollBatchLimit)
	if err != nil {
		p.recordError(fmt.Sprintf("list provider events: %v", err))
		return
	}
	log.Printf("🔍 Fetched %d events from Stripe", len(events))

	var processed, failed int64
	for _, raw := range events {
		evt, err := payments.FromStripeEvent(raw)
		if err != nil {
			log.Printf("❌ Skipping malformed event %s: %v", raw.ID, err)
			failed++
			continue
		}
		if err := p.processor.Process(ctx, evt); err != nil {
			// Leave the event unrecorded; the next cycle retries it.
			log.Printf("❌ Error processing event %s: %v", evt.ID, err)
			failed++
			continue
		}
		processed++
	}

	metrics.PollRuns.Inc()

	p.mu.Lock()
	p.lastPollTime = time.Now()
	p.processedEvents += processed
	p.failedEvents += failed
	if failed == 0 {
		p.lastError = ""
	}
	p.mu.Unlock()
}

func (p *Poller) recordError(msg string) {
	log.Printf("❌ Poll cycle failed: %s", msg)
	p.mu.Lock()
	p.lastPollTime = time.Now()
	p.lastError = msg
	p.mu.Unlock()
}
