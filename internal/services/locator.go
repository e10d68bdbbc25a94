package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	repository "progress-tracker.com/progress-tracker/internal/repositories"
)

const (
	TaskServiceName = "task"

	DefaultServiceTTL  = 5 * time.Minute
	DefaultSweepPeriod = 60 * time.Second
)

var ErrUnknownService = errors.New("unknown service")

// Dependencies are the shared handles factories build services from.
type Dependencies struct {
	TaskRepository repository.TaskRepository
}

type Factory func(deps Dependencies) any

type cachedService struct {
	instance  any
	expiresAt time.Time
}

// Locator resolves services by name and caches the instances for a fixed
// TTL. Expired entries are swept in the background until Close is called.
// Concurrent misses may each build an instance; the last one is cached.
type Locator struct {
	deps      Dependencies
	ttl       time.Duration
	factories map[string]Factory

	mu      sync.Mutex
	entries map[string]cachedService
	now     func() time.Time

	sweepStop chan struct{}
	sweepWG   sync.WaitGroup
	closeOnce sync.Once
}

func NewLocator(deps Dependencies, ttl, sweepEvery time.Duration) *Locator {
	l := &Locator{
		deps: deps,
		ttl:  ttl,
		factories: map[string]Factory{
			TaskServiceName: func(d Dependencies) any { return NewTaskService(d.TaskRepository) },
		},
		entries:   make(map[string]cachedService),
		now:       time.Now,
		sweepStop: make(chan struct{}),
	}

	if sweepEvery > 0 {
		l.sweepWG.Add(1)
		go l.sweepLoop(sweepEvery)
	}

	return l
}

// Register adds or replaces the factory for name.
func (l *Locator) Register(name string, factory Factory) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.factories[name] = factory
	delete(l.entries, name)
}

// Get returns the cached instance for name, building a new one when the
// cache has none or skipCache is set.
func (l *Locator) Get(name string, skipCache bool) (any, error) {
	l.mu.Lock()
	factory, ok := l.factories[name]
	if !ok {
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownService, name)
	}

	if skipCache {
		l.mu.Unlock()
		return factory(l.deps), nil
	}

	now := l.now()
	if entry, ok := l.entries[name]; ok && now.Before(entry.expiresAt) {
		l.mu.Unlock()
		return entry.instance, nil
	}
	l.mu.Unlock()

	instance := factory(l.deps)

	l.mu.Lock()
	l.entries[name] = cachedService{instance: instance, expiresAt: now.Add(l.ttl)}
	l.mu.Unlock()

	return instance, nil
}

func (l *Locator) TaskService() (*TaskService, error) {
	instance, err := l.Get(TaskServiceName, false)
	if err != nil {
		return nil, err
	}
	svc, ok := instance.(*TaskService)
	if !ok {
		return nil, fmt.Errorf("service %q has type %T", TaskServiceName, instance)
	}
	return svc, nil
}

func (l *Locator) sweepLoop(every time.Duration) {
	defer l.sweepWG.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.sweepStop:
			return
		}
	}
}

func (l *Locator) sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for name, entry := range l.entries {
		if !now.Before(entry.expiresAt) {
			delete(l.entries, name)
			removed++
		}
	}
	return removed
}

func (l *Locator) cached() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Locator) Close() {
	l.closeOnce.Do(func() {
		close(l.sweepStop)
		l.sweepWG.Wait()
	})
}
