package life

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellNext(t *testing.T) {
	alive := Cell{Status: Alive}
	assert.Equal(t, Dead, alive.next(0))
	assert.Equal(t, Dead, alive.next(1))
	assert.Equal(t, Alive, alive.next(2))
	assert.Equal(t, Alive, alive.next(3))
	assert.Equal(t, Dead, alive.next(4))
	assert.Equal(t, Dead, alive.next(5))

	dead := Cell{Status: Dead}
	assert.Equal(t, Dead, dead.next(2))
	assert.Equal(t, Alive, dead.next(3))
	assert.Equal(t, Dead, dead.next(4))
}

func TestCellUpdate(t *testing.T) {
	c := Cell{Status: Alive}
	c.update(1)
	assert.False(t, c.Alive())
	c.update(3)
	assert.True(t, c.Alive())
}
