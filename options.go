package trafficsim

import (
	"time"

	"github.com/anggasct/trafficsim/pkg/alerts"
	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/scheduler"
	"github.com/anggasct/trafficsim/pkg/series"
)

// Option configures an Engine
type Option func(*options)

type options struct {
	rng            core.Random
	now            func() time.Time
	scheduler      scheduler.Scheduler
	interval       time.Duration
	trueElapsed    bool
	seedSeries     bool
	intersections  []core.Intersection
	observers      []Observer
	alertCapacity  int
	seriesCapacity int
}

func defaultOptions() options {
	return options{
		now:            time.Now,
		interval:       scheduler.DefaultInterval,
		alertCapacity:  alerts.DefaultCapacity,
		seriesCapacity: series.DefaultCapacity,
	}
}

// WithRandom injects the randomness source. A seeded *rand.Rand makes every
// tick reproducible.
func WithRandom(rng core.Random) Option {
	return func(o *options) { o.rng = rng }
}

// WithClock replaces time.Now for tick timestamps and sample labels
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithScheduler replaces the wall-clock ticker
func WithScheduler(s scheduler.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithInterval sets the cadence of the default wall-clock ticker
func WithInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithTrueElapsedRuntime makes each tick add the scheduler interval, in whole
// seconds, to the runtime instead of 1
func WithTrueElapsedRuntime() Option {
	return func(o *options) { o.trueElapsed = true }
}

// WithSeededSeries pre-fills the chart window with hourly samples
func WithSeededSeries() Option {
	return func(o *options) { o.seedSeries = true }
}

// WithIntersections replaces the seed intersections
func WithIntersections(intersections []core.Intersection) Option {
	return func(o *options) { o.intersections = intersections }
}

// WithObserver registers an observer at construction
func WithObserver(observer Observer) Option {
	return func(o *options) { o.observers = append(o.observers, observer) }
}

// WithAlertCapacity overrides the alert buffer size
func WithAlertCapacity(n int) Option {
	return func(o *options) { o.alertCapacity = n }
}

// WithSeriesCapacity overrides the chart window size
func WithSeriesCapacity(n int) Option {
	return func(o *options) { o.seriesCapacity = n }
}
