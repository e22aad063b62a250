package socketio

import "sync"

// namespaceHandler holds the event handlers of one namespace. Several
// handlers may be registered for an event and run in registration order.
type namespaceHandler struct {
	eventsMu sync.RWMutex
	events   map[string][]*funcHandler
}

func newNamespaceHandler() *namespaceHandler {
	return &namespaceHandler{
		events: make(map[string][]*funcHandler),
	}
}

func (h *namespaceHandler) OnEvent(event string, f interface{}) error {
	fh, err := newFuncHandler(f)
	if err != nil {
		return err
	}

	h.eventsMu.Lock()
	defer h.eventsMu.Unlock()

	h.events[event] = append(h.events[event], fh)
	return nil
}

func (h *namespaceHandler) getEventHandlers(event string) []*funcHandler {
	h.eventsMu.RLock()
	defer h.eventsMu.RUnlock()

	return h.events[event]
}
