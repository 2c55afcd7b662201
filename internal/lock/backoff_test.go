package lock

import (
	"testing"
	gotime "time"

	"github.com/stretchr/testify/assert"
)

func TestWaitIntervalDoublesUntilCap(t *testing.T) {
	base := 10 * gotime.Millisecond
	max := 100 * gotime.Millisecond

	assert.Equal(t, 10*gotime.Millisecond, waitInterval(0, base, max))
	assert.Equal(t, 20*gotime.Millisecond, waitInterval(1, base, max))
	assert.Equal(t, 40*gotime.Millisecond, waitInterval(2, base, max))
	assert.Equal(t, max, waitInterval(10, base, max))
}
