package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"jarvis-backend/internal/backend"
	"jarvis-backend/internal/models"
)

// AttemptStatus is the last-known outcome of a chat attempt against one
// backend. It is advisory only and never gates future attempts.
type AttemptStatus struct {
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
	LastUsed time.Time `json:"lastUsed"`
}

// RequestOptions extends per-call sampling options with a preferred
// backend override.
type RequestOptions struct {
	PreferredService string
	backend.Options
}

// AllUnavailableError is the single terminal failure raised after every
// registered backend has been tried and failed.
type AllUnavailableError struct {
	Errors map[string]string
}

func (e *AllUnavailableError) Error() string {
	return "All AI services are currently unavailable. Please check your API keys and service configurations."
}

// Detail renders per-backend failure reasons in a stable order.
func (e *AllUnavailableError) Detail() string {
	names := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Errors[name])
	}
	return strings.Join(parts, "; ")
}

// Orchestrator resolves one logical chat request into exactly one attempt
// sequence across the registered backend adapters.
type Orchestrator struct {
	mu       sync.RWMutex
	adapters map[string]backend.Adapter
	priority []string
	status   map[string]AttemptStatus

	attemptTimeout time.Duration
}

// New builds an orchestrator over the given adapters with the given
// attempt order. Adapters not named in the priority list are reachable
// only as a preferred-service override.
func New(priority []string, attemptTimeout time.Duration, adapters ...backend.Adapter) *Orchestrator {
	byName := make(map[string]backend.Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}

	return &Orchestrator{
		adapters:       byName,
		priority:       append([]string(nil), priority...),
		status:         make(map[string]AttemptStatus),
		attemptTimeout: attemptTimeout,
	}
}

// GetResponse tries the preferred backend first, then walks the priority
// list in order, skipping the preferred backend and duplicate names.
// Sequential by design: the common case succeeds on the first attempt and
// pays no fallback tax.
func (o *Orchestrator) GetResponse(ctx context.Context, messages []models.ChatMessage, opts RequestOptions) (*backend.Result, error) {
	// Snapshot the policy once so a concurrent SetPriority cannot tear
	// an in-flight call.
	o.mu.RLock()
	priority := append([]string(nil), o.priority...)
	o.mu.RUnlock()

	preferred := opts.PreferredService
	if _, ok := o.adapters[preferred]; !ok {
		preferred = ""
	}
	if preferred == "" && len(priority) > 0 {
		preferred = priority[0]
	}

	failures := make(map[string]string)
	tried := make(map[string]bool)

	if adapter, ok := o.adapters[preferred]; ok {
		log.Printf("Trying %s service...", preferred)
		tried[preferred] = true
		result, err := o.attempt(ctx, adapter, messages, opts.Options)
		if err == nil {
			return result, nil
		}
		log.Printf("%s failed: %v", preferred, err)
		failures[preferred] = err.Error()
	}

	for _, name := range priority {
		if tried[name] {
			continue
		}
		adapter, ok := o.adapters[name]
		if !ok {
			continue
		}

		log.Printf("Falling back to %s service...", name)
		tried[name] = true
		result, err := o.attempt(ctx, adapter, messages, opts.Options)
		if err == nil {
			return result, nil
		}
		log.Printf("%s failed: %v", name, err)
		failures[name] = err.Error()
	}

	return nil, &AllUnavailableError{Errors: failures}
}

// attempt runs a single bounded chat call and records its outcome in the
// status map.
func (o *Orchestrator) attempt(ctx context.Context, adapter backend.Adapter, messages []models.ChatMessage, opts backend.Options) (*backend.Result, error) {
	if o.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.attemptTimeout)
		defer cancel()
	}

	result, err := adapter.Chat(ctx, messages, opts)

	o.mu.Lock()
	if err != nil {
		o.status[adapter.Name()] = AttemptStatus{Success: false, Error: err.Error(), LastUsed: time.Now()}
	} else {
		o.status[adapter.Name()] = AttemptStatus{Success: true, LastUsed: time.Now()}
	}
	o.mu.Unlock()

	return result, err
}

// CheckAll probes every registered adapter and collects a complete
// name→status mapping. A single misbehaving probe never fails the
// aggregate call.
func (o *Orchestrator) CheckAll(ctx context.Context) map[string]backend.Status {
	status := make(map[string]backend.Status, len(o.adapters))
	for name, adapter := range o.adapters {
		status[name] = checkOne(ctx, adapter)
	}
	return status
}

func checkOne(ctx context.Context, adapter backend.Adapter) (status backend.Status) {
	defer func() {
		if r := recover(); r != nil {
			status = backend.Status{Available: false, Reason: fmt.Sprintf("health probe panicked: %v", r)}
		}
	}()
	return adapter.Health(ctx)
}

// SetPriority atomically replaces the attempt order used by subsequent
// calls. In-flight calls keep the list they captured.
func (o *Orchestrator) SetPriority(priority []string) {
	o.mu.Lock()
	o.priority = append([]string(nil), priority...)
	o.mu.Unlock()
}

// Priority returns a copy of the current attempt order.
func (o *Orchestrator) Priority() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]string(nil), o.priority...)
}

// Status returns a copy of the per-backend attempt status map.
func (o *Orchestrator) Status() map[string]AttemptStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make(map[string]AttemptStatus, len(o.status))
	for name, s := range o.status {
		out[name] = s
	}
	return out
}

// Registered reports whether a backend name is known to the orchestrator.
func (o *Orchestrator) Registered(name string) bool {
	_, ok := o.adapters[name]
	return ok
}
