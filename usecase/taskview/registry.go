package taskview

import (
	"strings"
	"sync"
)

// Registry tracks mounted views by id so form actions reach the view that
// streams to the same browser tab.
type Registry struct {
	mu    sync.RWMutex
	views map[string]*View
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*View)}
}

func (r *Registry) Add(v *View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[v.ID()] = v
}

func (r *Registry) Get(id string) (*View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[id]
	return v, ok
}

// Remove drops v only if it is still the view registered under its id.
func (r *Registry) Remove(v *View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.views[v.ID()]; ok && cur == v {
		delete(r.views, v.ID())
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// UnmountAll releases every subscription, for shutdown.
func (r *Registry) UnmountAll() {
	r.mu.Lock()
	views := make([]*View, 0, len(r.views))
	for id, v := range r.views {
		views = append(views, v)
		delete(r.views, id)
	}
	r.mu.Unlock()

	for _, v := range views {
		v.Unmount()
	}
}

// UnmountSession expires every view registered for the browser session sid.
// View ids have the form "<sid>:<view>".
func (r *Registry) UnmountSession(sid string) int {
	if sid == "" {
		return 0
	}
	prefix := sid + ":"

	r.mu.Lock()
	var views []*View
	for id, v := range r.views {
		if strings.HasPrefix(id, prefix) {
			views = append(views, v)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, v := range views {
		v.Expire()
	}
	return len(views)
}
