package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooper_RunsInOrderIncludingReposts(t *testing.T) {
	t.Parallel()
	l := NewLooper()
	var got []string

	l.Post(func() {
		got = append(got, "a")
		l.Post(func() { got = append(got, "c") })
	})
	l.Post(func() { got = append(got, "b") })

	assert.Equal(t, 2, l.Pending())
	assert.Empty(t, got, "posting never runs inline")

	assert.Equal(t, 3, l.RunPending())
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, l.Pending())
	assert.Equal(t, 0, l.RunPending())
}
