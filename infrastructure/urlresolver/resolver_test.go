package urlresolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const proxy = "https://proxy.example.com/api/proxy?url="

func TestResolve(t *testing.T) {
	r, err := New("https://books.example.com", proxy)
	require.NoError(t, err)

	tests := []struct {
		name string
		href string
		want string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"relative with slash", "/epub/1", proxy + "https%3A%2F%2Fbooks.example.com%2Fepub%2F1"},
		{"relative without slash", "covers/1.jpg", proxy + "https%3A%2F%2Fbooks.example.com%2Fcovers%2F1.jpg"},
		{"absolute remote", "https://cdn.example.org/b.epub?x=1", proxy + "https%3A%2F%2Fcdn.example.org%2Fb.epub%3Fx%3D1"},
		{"localhost", "http://localhost:8080/epub/1", "http://localhost:8080/epub/1"},
		{"loopback ip", "http://127.0.0.1/epub/1", "http://127.0.0.1/epub/1"},
		{"already proxied", proxy + "https%3A%2F%2Fx", proxy + "https%3A%2F%2Fx"},
		{"non http scheme", "mailto:someone@example.com", "mailto:someone@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.href))
		})
	}
}

func TestResolve_NoProxy(t *testing.T) {
	r, err := New("https://books.example.com/opds/root.xml", "")
	require.NoError(t, err)

	assert.Equal(t, "https://books.example.com/epub/1", r.Resolve("/epub/1"))
	assert.Equal(t, "https://books.example.com/opds/epub/1", r.Resolve("epub/1"))
	assert.Equal(t, "https://cdn.example.org/x", r.Resolve("https://cdn.example.org/x"))
}

func TestResolve_NoBase(t *testing.T) {
	r, err := New("", "")
	require.NoError(t, err)

	assert.Equal(t, "/epub/1", r.Resolve("/epub/1"))
}

func TestResolve_Idempotent(t *testing.T) {
	r, err := New("https://books.example.com", proxy)
	require.NoError(t, err)

	once := r.Resolve("/epub/1")
	assert.Equal(t, once, r.Resolve(once))
}

func TestNew_InvalidBase(t *testing.T) {
	_, err := New("://bad", "")
	assert.Error(t, err)
}

func TestEscapeComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://x.org/a b", "https%3A%2F%2Fx.org%2Fa%20b"},
		{"a+b", "a%2Bb"},
		{"Dune (1)!.epub", "Dune%20(1)!.epub"},
		{"it's*~-_.", "it's*~-_."},
		{"q=1&r=2#frag", "q%3D1%26r%3D2%23frag"},
		{"café", "caf%C3%A9"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeComponent(tt.in))
		})
	}
}
