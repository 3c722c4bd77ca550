package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionLifecycle(t *testing.T) {
	m := NewSessionManager()
	a := m.Issue("u1")
	b := m.Issue("u1")
	assert.NotEqual(t, a, b)

	id, ok := m.Resolve(a)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	assert.True(t, m.Revoke(a))
	assert.False(t, m.Revoke(a))
	_, ok = m.Resolve(a)
	assert.False(t, ok)

	_, ok = m.Resolve(b)
	assert.True(t, ok)
}
