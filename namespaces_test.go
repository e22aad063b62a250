package socketio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitNamespace(t *testing.T) {
	tests := []struct {
		input string
		name  string
		query string
	}{
		{"", "/", ""},
		{"/", "/", ""},
		{"/chat", "/chat", ""},
		{"chat", "/chat", ""},
		{"/chat?token=abc&x=1", "/chat", "token=abc&x=1"},
		{"?token=abc", "/", "token=abc"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			name, query := splitNamespace(test.input)

			assert.Equal(t, test.name, name)
			assert.Equal(t, test.query, query)
		})
	}
}

func TestNamespacesLifecycle(t *testing.T) {
	should := assert.New(t)

	n := newNamespaces()

	st, created := n.Add("/chat", "q=1")
	should.True(created)
	should.Equal("q=1", st.query)
	should.True(n.Known("/chat"))
	should.False(n.IsConnected("/chat"))

	_, created = n.Add("/chat", "")
	should.False(created)

	should.True(n.Connected("/chat"))
	should.False(n.Connected("/chat"), "connect is acknowledged once")
	should.True(n.IsConnected("/chat"))
	<-st.ready
	should.NoError(st.err)

	should.False(n.Refuse("/chat", ErrNamespaceClosed), "connected namespaces are not refused")

	existed, wasConnected := n.Delete("/chat", ErrNamespaceClosed)
	should.True(existed)
	should.True(wasConnected)
	should.False(n.Known("/chat"))

	existed, _ = n.Delete("/chat", ErrNamespaceClosed)
	should.False(existed)
}

func TestNamespacesPendingFailures(t *testing.T) {
	should := assert.New(t)

	n := newNamespaces()

	refused, _ := n.Add("/admin", "")
	should.True(n.Refuse("/admin", ErrNamespaceClosed))
	<-refused.ready
	should.ErrorIs(refused.err, ErrNamespaceClosed)
	should.False(n.Known("/admin"))

	cancelled, _ := n.Add("/a", "")
	other, _ := n.Add("/b", "")
	n.Cancel(cancelled, ErrNotConnected)
	<-cancelled.ready
	should.ErrorIs(cancelled.err, ErrNotConnected)

	// A stale state does not remove its successor.
	fresh, _ := n.Add("/a", "")
	n.Cancel(cancelled, ErrNotConnected)
	should.True(n.Known("/a"))

	n.Connected("/a")
	n.Clear(ErrNamespaceClosed)
	<-other.ready
	should.ErrorIs(other.err, ErrNamespaceClosed)
	should.NoError(fresh.err)
	should.False(n.Known("/a"))
	should.False(n.Known("/b"))
}
