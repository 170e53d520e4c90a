package logctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()

	_, ok := Session(ctx)
	assert.False(t, ok)
	_, ok = Reference(ctx)
	assert.False(t, ok)
	_, ok = Depth(ctx)
	assert.False(t, ok, "an un-nested context has no depth, not depth zero")
}

func TestSessionAndReference(t *testing.T) {
	ctx := WithReference(WithSession(context.Background(), "sess_abc"), "user-456")

	s, ok := Session(ctx)
	assert.True(t, ok)
	assert.Equal(t, "sess_abc", s)

	r, ok := Reference(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-456", r)
}

func TestNest(t *testing.T) {
	ctx := WithSession(context.Background(), "s1")

	first := Nest(ctx)
	d, ok := Depth(first)
	assert.True(t, ok)
	assert.Equal(t, 0, d)

	second := Nest(first)
	d, ok = Depth(second)
	assert.True(t, ok)
	assert.Equal(t, 1, d)

	// Children inherit the parent's metadata.
	s, ok := Session(second)
	assert.True(t, ok)
	assert.Equal(t, "s1", s)

	// Nesting never mutates the parent.
	d, _ = Depth(first)
	assert.Equal(t, 0, d)
}
