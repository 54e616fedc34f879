package handler

import "sync"

// redirectNavigator remembers where a single request wants the browser to go.
type redirectNavigator struct {
	mu   sync.Mutex
	path string
}

func (n *redirectNavigator) GoTo(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
}

func (n *redirectNavigator) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

// streamNavigator forwards navigation to an open event stream.
type streamNavigator struct {
	paths chan string
}

func newStreamNavigator() *streamNavigator {
	return &streamNavigator{paths: make(chan string, 1)}
}

func (n *streamNavigator) GoTo(path string) {
	select {
	case n.paths <- path:
	default:
	}
}
