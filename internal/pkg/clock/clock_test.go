package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	instant := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	c := Fixed{T: instant}

	assert.Equal(t, instant, c.Now())
	assert.Equal(t, instant, c.Now(), "repeated reads report the same instant")
}

func TestSystemReportsUTC(t *testing.T) {
	now := System{}.Now()
	assert.Equal(t, time.UTC, now.Location())
}
