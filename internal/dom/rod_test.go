package dom

import (
	"context"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRodNode_BoundedReleasesDeadline(t *testing.T) {
	el := (&rod.Element{}).Context(context.Background())

	n := &rodNode{el: el, timeout: time.Minute}
	b, done := n.bounded()
	_, ok := b.GetContext().Deadline()
	require.True(t, ok)
	done()
	assert.ErrorIs(t, b.GetContext().Err(), context.Canceled)
	assert.NoError(t, el.GetContext().Err())

	unbounded := &rodNode{el: el}
	b, done = unbounded.bounded()
	done()
	assert.Same(t, el, b)
}
