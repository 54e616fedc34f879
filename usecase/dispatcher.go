package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// CommandHandler executes a named user action with an action-specific payload.
type CommandHandler func(ctx context.Context, payload interface{}) (interface{}, error)

// Dispatcher routes named actions, such as task form submissions, to handlers.
type Dispatcher struct {
	handlers map[string]CommandHandler
	mu       sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]CommandHandler),
	}
}

func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = handler
}

// Has reports whether a handler is registered under name.
func (d *Dispatcher) Has(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[name]
	return ok
}

// Commands lists registered names in sorted order.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dispatcher) ExecuteCommand(ctx context.Context, name string, payload interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.handlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("command handler %s not registered", name)
	}
	return handler(ctx, payload)
}
