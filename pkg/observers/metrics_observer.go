package observers

import (
	"sync"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/anggasct/trafficsim/pkg/core"
)

// maxTickSamples bounds how many tick measurements are kept for statistics
const maxTickSamples = 1024

// TickStats summarises recent ticks
type TickStats struct {
	Ticks          int
	MeanDuration   time.Duration
	StdDevDuration time.Duration
	MeanVehicles   float64
	PeakVehicles   int
}

// MetricsObserver collects metrics about simulation execution
type MetricsObserver struct {
	transitionCounts map[string]int
	alertCounts      map[core.AlertKind]int
	rejectCounts     map[string]int
	overrideCount    int
	configChanges    int
	errorCount       int
	tickCount        int
	tickDurations    []float64
	tickVehicles     []float64
	peakVehicles     int
	timeRunning      time.Duration
	runningSince     time.Time
	now              func() time.Time
	mutex            sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		transitionCounts: make(map[string]int),
		alertCounts:      make(map[core.AlertKind]int),
		rejectCounts:     make(map[string]int),
		now:              time.Now,
	}
}

// OnTransition records transition metrics and time spent running
func (o *MetricsObserver) OnTransition(from core.ClockState, to core.ClockState, command string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.transitionCounts[string(from)+"->"+string(to)]++

	switch {
	case from != core.ClockRunning && to == core.ClockRunning:
		o.runningSince = o.now()
	case from == core.ClockRunning && to != core.ClockRunning:
		if !o.runningSince.IsZero() {
			o.timeRunning += o.now().Sub(o.runningSince)
			o.runningSince = time.Time{}
		}
	}
}

// OnTick records tick duration and load
func (o *MetricsObserver) OnTick(snapshot core.Snapshot, elapsed time.Duration) {
	vehicles := lo.SumBy(snapshot.Intersections, func(in core.Intersection) int {
		return in.VehicleCount
	})

	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.tickCount++
	o.tickDurations = appendBounded(o.tickDurations, float64(elapsed))
	o.tickVehicles = appendBounded(o.tickVehicles, float64(vehicles))
	o.peakVehicles = max(o.peakVehicles, vehicles)
}

// OnAlert records alert metrics
func (o *MetricsObserver) OnAlert(alert core.Alert) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.alertCounts[alert.Kind]++
}

// OnConfigChanged records configuration changes
func (o *MetricsObserver) OnConfigChanged(previous core.Config, current core.Config) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.configChanges++
}

// OnSignalOverride records manual signal changes
func (o *MetricsObserver) OnSignalOverride(intersectionID string, phase core.Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.overrideCount++
}

// OnCommandRejected records rejected commands
func (o *MetricsObserver) OnCommandRejected(command string, reason string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.rejectCounts[command]++
}

// OnError records error metrics
func (o *MetricsObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.errorCount++
}

func appendBounded(values []float64, v float64) []float64 {
	values = append(values, v)
	if len(values) > maxTickSamples {
		values = values[len(values)-maxTickSamples:]
	}
	return values
}

// GetTransitionCounts returns the number of times each transition occurred
func (o *MetricsObserver) GetTransitionCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return lo.Assign(o.transitionCounts)
}

// GetAlertCounts returns the number of alerts per kind
func (o *MetricsObserver) GetAlertCounts() map[core.AlertKind]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return lo.Assign(o.alertCounts)
}

// GetRejectCounts returns the number of rejections per command
func (o *MetricsObserver) GetRejectCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return lo.Assign(o.rejectCounts)
}

// GetOverrideCount returns the number of manual signal changes
func (o *MetricsObserver) GetOverrideCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.overrideCount
}

// GetConfigChangeCount returns the number of applied configuration changes
func (o *MetricsObserver) GetConfigChangeCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.configChanges
}

// GetErrorCount returns the number of errors
func (o *MetricsObserver) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.errorCount
}

// GetTimeRunning returns the wall-clock time the clock spent running,
// including the current run
func (o *MetricsObserver) GetTimeRunning() time.Duration {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	total := o.timeRunning
	if !o.runningSince.IsZero() {
		total += o.now().Sub(o.runningSince)
	}
	return total
}

// Stats returns tick statistics over the most recent ticks
func (o *MetricsObserver) Stats() TickStats {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	stats := TickStats{Ticks: o.tickCount, PeakVehicles: o.peakVehicles}
	if len(o.tickDurations) == 0 {
		return stats
	}

	mean, std := stat.MeanStdDev(o.tickDurations, nil)
	stats.MeanDuration = time.Duration(mean)
	if len(o.tickDurations) > 1 {
		stats.StdDevDuration = time.Duration(std)
	}
	stats.MeanVehicles = stat.Mean(o.tickVehicles, nil)
	return stats
}

// Reset resets all metrics
func (o *MetricsObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.transitionCounts = make(map[string]int)
	o.alertCounts = make(map[core.AlertKind]int)
	o.rejectCounts = make(map[string]int)
	o.overrideCount = 0
	o.configChanges = 0
	o.errorCount = 0
	o.tickCount = 0
	o.tickDurations = nil
	o.tickVehicles = nil
	o.peakVehicles = 0
	o.timeRunning = 0
	o.runningSince = time.Time{}
}
