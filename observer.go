package trafficsim

import (
	"fmt"
	"sync"
	"time"

	"github.com/anggasct/trafficsim/pkg/core"
)

// Observer represents an entity that observes the simulation
type Observer interface {
	// Required methods

	// OnTransition is called when the clock changes state (start, stop, reset)
	OnTransition(from core.ClockState, to core.ClockState, command string)

	// OnTick is called after a tick completed, with how long it took
	OnTick(snapshot core.Snapshot, elapsed time.Duration)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnAlert is called for every alert a tick emits
	OnAlert(alert core.Alert)

	// OnConfigChanged is called after a configuration change was applied
	OnConfigChanged(previous core.Config, current core.Config)

	// OnSignalOverride is called after a manual signal change was applied
	OnSignalOverride(intersectionID string, phase core.Phase)

	// OnCommandRejected is called when a command was a no-op
	OnCommandRejected(command string, reason string)

	// OnError is called when an error occurs, including observer panics
	OnError(err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnTransition implements the required Observer method
func (o *BaseObserver) OnTransition(from core.ClockState, to core.ClockState, command string) {}

// OnTick implements the required Observer method
func (o *BaseObserver) OnTick(snapshot core.Snapshot, elapsed time.Duration) {}

// OnAlert implements the optional ExtendedObserver method
func (o *BaseObserver) OnAlert(alert core.Alert) {}

// OnConfigChanged implements the optional ExtendedObserver method
func (o *BaseObserver) OnConfigChanged(previous core.Config, current core.Config) {}

// OnSignalOverride implements the optional ExtendedObserver method
func (o *BaseObserver) OnSignalOverride(intersectionID string, phase core.Phase) {}

// OnCommandRejected implements the optional ExtendedObserver method
func (o *BaseObserver) OnCommandRejected(command string, reason string) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(err error) {}

// ObserverManager manages a collection of observers. A panicking observer is
// isolated and reported to the extended observers' OnError.
type ObserverManager struct {
	mutex     sync.RWMutex
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	return len(om.observers)
}

func (om *ObserverManager) snapshot() []Observer {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

// each calls fn for every observer, recovering panics
func (om *ObserverManager) each(hook string, fn func(Observer)) {
	for _, observer := range om.snapshot() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					om.NotifyError(fmt.Errorf("observer panic in %s: %v", hook, r))
				}
			}()
			fn(observer)
		}()
	}
}

// eachExtended calls fn for every observer implementing ExtendedObserver
func (om *ObserverManager) eachExtended(hook string, fn func(ExtendedObserver)) {
	om.each(hook, func(observer Observer) {
		if extObs, ok := observer.(ExtendedObserver); ok {
			fn(extObs)
		}
	})
}

// NotifyTransition notifies all observers of a clock transition
func (om *ObserverManager) NotifyTransition(from core.ClockState, to core.ClockState, command string) {
	om.each("OnTransition", func(o Observer) { o.OnTransition(from, to, command) })
}

// NotifyTick notifies all observers of a completed tick
func (om *ObserverManager) NotifyTick(snapshot core.Snapshot, elapsed time.Duration) {
	om.each("OnTick", func(o Observer) { o.OnTick(snapshot, elapsed) })
}

// NotifyAlert notifies all observers of an emitted alert
func (om *ObserverManager) NotifyAlert(alert core.Alert) {
	om.eachExtended("OnAlert", func(o ExtendedObserver) { o.OnAlert(alert) })
}

// NotifyConfigChanged notifies all observers of a configuration change
func (om *ObserverManager) NotifyConfigChanged(previous core.Config, current core.Config) {
	om.eachExtended("OnConfigChanged", func(o ExtendedObserver) { o.OnConfigChanged(previous, current) })
}

// NotifySignalOverride notifies all observers of a manual signal change
func (om *ObserverManager) NotifySignalOverride(intersectionID string, phase core.Phase) {
	om.eachExtended("OnSignalOverride", func(o ExtendedObserver) { o.OnSignalOverride(intersectionID, phase) })
}

// NotifyCommandRejected notifies all observers of a rejected command
func (om *ObserverManager) NotifyCommandRejected(command string, reason string) {
	om.eachExtended("OnCommandRejected", func(o ExtendedObserver) { o.OnCommandRejected(command, reason) })
}

// NotifyError notifies all observers of errors
func (om *ObserverManager) NotifyError(err error) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			func() {
				defer func() { recover() }()
				extObs.OnError(err)
			}()
		}
	}
}
