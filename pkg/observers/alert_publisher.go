package observers

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/anggasct/trafficsim/pkg/core"
)

// DefaultPublishQueue is how many alerts may wait for the broker
const DefaultPublishQueue = 64

// Publisher sends a keyed JSON payload to a message broker
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// AlertMessage is the payload published for every emitted alert
type AlertMessage struct {
	core.Alert
	Scenario    core.Scenario `json:"scenario"`
	PublishedAt time.Time     `json:"published_at"`
}

// AlertPublisher forwards emitted alerts to a broker. Alerts are queued so a
// slow broker never delays a tick; when the queue is full the alert is dropped.
type AlertPublisher struct {
	publisher Publisher
	logger    zerolog.Logger
	queue     chan AlertMessage
	scenario  atomic.Value
	published atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// NewAlertPublisher creates an alert publisher with a queue of the given size;
// a non-positive size means DefaultPublishQueue
func NewAlertPublisher(publisher Publisher, logger zerolog.Logger, queueSize int) *AlertPublisher {
	if queueSize <= 0 {
		queueSize = DefaultPublishQueue
	}
	p := &AlertPublisher{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan AlertMessage, queueSize),
	}
	p.scenario.Store(core.DefaultConfig().Scenario)
	return p
}

// Run drains the queue until ctx is cancelled
func (p *AlertPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.queue:
			msg.PublishedAt = time.Now().UTC()
			if err := p.publisher.Publish(ctx, msg.IntersectionID, msg); err != nil {
				p.failed.Add(1)
				p.logger.Error().Err(err).Str("alert", msg.ID).Msg("alert publish failed")
				continue
			}
			p.published.Add(1)
		}
	}
}

// OnAlert queues the alert for publishing
func (p *AlertPublisher) OnAlert(alert core.Alert) {
	msg := AlertMessage{Alert: alert, Scenario: p.scenario.Load().(core.Scenario)}
	select {
	case p.queue <- msg:
	default:
		p.dropped.Add(1)
		p.logger.Warn().Str("alert", alert.ID).Msg("alert publish queue full")
	}
}

// OnConfigChanged tracks the scenario attached to published alerts
func (p *AlertPublisher) OnConfigChanged(previous core.Config, current core.Config) {
	p.scenario.Store(current.Scenario)
}

// OnTransition is not published
func (p *AlertPublisher) OnTransition(from core.ClockState, to core.ClockState, command string) {}

// OnTick is not published
func (p *AlertPublisher) OnTick(snapshot core.Snapshot, elapsed time.Duration) {}

// OnSignalOverride is not published
func (p *AlertPublisher) OnSignalOverride(intersectionID string, phase core.Phase) {}

// OnCommandRejected is not published
func (p *AlertPublisher) OnCommandRejected(command string, reason string) {}

// OnError is not published
func (p *AlertPublisher) OnError(err error) {}

// Published returns how many alerts reached the broker
func (p *AlertPublisher) Published() uint64 {
	return p.published.Load()
}

// Dropped returns how many alerts were discarded because the queue was full
func (p *AlertPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Failed returns how many publish attempts returned an error
func (p *AlertPublisher) Failed() uint64 {
	return p.failed.Load()
}
