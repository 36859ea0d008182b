package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	t.Run("Empty Defaults To All", func(t *testing.T) {
		st, err := ParseState("")
		require.NoError(t, err)
		assert.Equal(t, StateAll, st)
	})

	t.Run("Case Insensitive", func(t *testing.T) {
		for _, token := range []string{"past", "Past", "PAST"} {
			st, err := ParseState(token)
			require.NoError(t, err)
			assert.Equal(t, StatePast, st)
		}
	})

	t.Run("Unknown Token", func(t *testing.T) {
		_, err := ParseState("UNSUPPORTED_STATUS")
		assert.ErrorIs(t, err, ErrUnsupportedState)
	})
}

func TestStateMatches(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	window := func(start, end time.Time, status Status) *Booking {
		return &Booking{StartTime: start, EndTime: end, Status: status}
	}

	past := window(now.Add(-48*time.Hour), now.Add(-24*time.Hour), StatusApproved)
	current := window(now.Add(-time.Hour), now.Add(time.Hour), StatusApproved)
	future := window(now.Add(24*time.Hour), now.Add(48*time.Hour), StatusWaiting)

	t.Run("Temporal Partition", func(t *testing.T) {
		for _, b := range []*Booking{past, current, future} {
			matched := 0
			for _, st := range []State{StatePast, StateCurrent, StateFuture} {
				if st.Matches(b, now) {
					matched++
				}
			}
			assert.Equal(t, 1, matched, "each booking belongs to exactly one temporal view")
			assert.True(t, StateAll.Matches(b, now))
		}

		assert.True(t, StatePast.Matches(past, now))
		assert.True(t, StateCurrent.Matches(current, now))
		assert.True(t, StateFuture.Matches(future, now))
	})

	t.Run("Boundary Instants Are Current", func(t *testing.T) {
		startsNow := window(now, now.Add(time.Hour), StatusApproved)
		endsNow := window(now.Add(-time.Hour), now, StatusApproved)

		assert.True(t, StateCurrent.Matches(startsNow, now))
		assert.True(t, StateCurrent.Matches(endsNow, now))
		assert.False(t, StateFuture.Matches(startsNow, now))
		assert.False(t, StatePast.Matches(endsNow, now))
	})

	t.Run("Status Views", func(t *testing.T) {
		waiting := window(now, now.Add(time.Hour), StatusWaiting)
		rejected := window(now, now.Add(time.Hour), StatusRejected)

		assert.True(t, StateWaiting.Matches(waiting, now))
		assert.False(t, StateWaiting.Matches(rejected, now))
		assert.True(t, StateRejected.Matches(rejected, now))
		assert.False(t, StateRejected.Matches(waiting, now))
	})
}
