package socketio

import "sync"

type namespaceHandlers struct {
	handlers map[string]*namespaceHandler
	mu       sync.RWMutex
}

func newNamespaceHandlers() *namespaceHandlers {
	return &namespaceHandlers{
		handlers: make(map[string]*namespaceHandler),
	}
}

// GetOrCreate returns the handler of nsp, creating it on first use.
func (h *namespaceHandlers) GetOrCreate(nsp string) *namespaceHandler {
	h.mu.Lock()
	defer h.mu.Unlock()

	handler, ok := h.handlers[nsp]
	if !ok {
		handler = newNamespaceHandler()
		h.handlers[nsp] = handler
	}
	return handler
}

func (h *namespaceHandlers) Get(nsp string) (*namespaceHandler, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	handler, ok := h.handlers[nsp]
	return handler, ok
}
