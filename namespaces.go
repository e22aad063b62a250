package socketio

import (
	"strings"
	"sync"
)

// DefaultNamespace is the namespace every connection joins.
const DefaultNamespace = "/"

type namespaceState struct {
	name  string
	query string

	connected bool
	// ready is closed once the server acknowledged the connect, or the
	// connect failed with err.
	ready chan struct{}
	err   error
}

// namespaces is the namespace multiplexer of one connection.
type namespaces struct {
	namespaces map[string]*namespaceState
	mu         sync.RWMutex
}

func newNamespaces() *namespaces {
	return &namespaces{
		namespaces: make(map[string]*namespaceState),
	}
}

// splitNamespace splits "/chat?token=x" into its path and query.
func splitNamespace(namespace string) (name, query string) {
	name, query, _ = strings.Cut(namespace, "?")
	if name == "" {
		name = DefaultNamespace
	}
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return name, query
}

// Add returns the state of ns, creating a pending one when missing.
func (n *namespaces) Add(ns, query string) (st *namespaceState, created bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if st, ok := n.namespaces[ns]; ok {
		return st, false
	}

	st = &namespaceState{
		name:  ns,
		query: query,
		ready: make(chan struct{}),
	}
	n.namespaces[ns] = st
	return st, true
}

// IsConnected reports whether ns exists and was acknowledged.
func (n *namespaces) IsConnected(ns string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	st, ok := n.namespaces[ns]
	return ok && st.connected
}

// Known reports whether ns is connected or pending.
func (n *namespaces) Known(ns string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	_, ok := n.namespaces[ns]
	return ok
}

// Connected marks a pending ns as connected. It returns false when ns is
// unknown or already connected.
func (n *namespaces) Connected(ns string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	st, ok := n.namespaces[ns]
	if !ok || st.connected {
		return false
	}
	st.connected = true
	close(st.ready)
	return true
}

// Refuse fails a pending ns with err and removes it. It returns false when
// ns is not pending.
func (n *namespaces) Refuse(ns string, err error) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	st, ok := n.namespaces[ns]
	if !ok || st.connected {
		return false
	}
	delete(n.namespaces, ns)
	st.err = err
	close(st.ready)
	return true
}

// Cancel removes st if it is still the pending state of its namespace.
func (n *namespaces) Cancel(st *namespaceState, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.namespaces[st.name] != st || st.connected {
		return
	}
	delete(n.namespaces, st.name)
	st.err = err
	close(st.ready)
}

// Delete removes ns and reports whether it was connected. A pending
// connect fails with err.
func (n *namespaces) Delete(ns string, err error) (existed, wasConnected bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	st, ok := n.namespaces[ns]
	if !ok {
		return false, false
	}
	delete(n.namespaces, ns)
	if !st.connected {
		st.err = err
		close(st.ready)
	}
	return true, st.connected
}

// Clear removes every namespace, failing pending connects with err.
func (n *namespaces) Clear(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ns, st := range n.namespaces {
		delete(n.namespaces, ns)
		if !st.connected {
			st.err = err
			close(st.ready)
		}
	}
}
