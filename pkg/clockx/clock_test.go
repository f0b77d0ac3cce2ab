package clockx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClock_New_DefaultCapacity(t *testing.T) {
	c := New(0)
	require.NotNil(t, c)
	require.Equal(t, 1, c.Capacity())
}

func TestClock_Victim_EmptySlotsSelectedInOrder(t *testing.T) {
	c := New(3)

	// No slot has been touched, so the hand walks the slots in order.
	require.Equal(t, 0, c.Victim())
	require.Equal(t, 1, c.Victim())
	require.Equal(t, 2, c.Victim())
	require.Equal(t, 0, c.Victim())
}

func TestClock_Victim_SecondChance(t *testing.T) {
	c := New(3)
	c.Touch(0)
	c.Touch(1)
	c.Touch(2)

	// Every bit is set: the first sweep clears them all and the hand
	// wraps back to slot 0.
	require.Equal(t, 0, c.Victim())
	require.Equal(t, 1, c.Hand())

	// Bits were consumed by the sweep, so the next victims follow the
	// hand directly.
	require.Equal(t, 1, c.Victim())
	require.Equal(t, 2, c.Victim())
}

func TestClock_Victim_SkipsReferencedSlot(t *testing.T) {
	c := New(4)
	c.Touch(0)

	// Slot 0 gets its second chance; slot 1 is the victim.
	require.Equal(t, 1, c.Victim())
	require.Equal(t, 2, c.Hand())
}

func TestClock_Victim_HandAdvancesPastVictim(t *testing.T) {
	c := New(2)

	require.Equal(t, 0, c.Victim())
	// Re-touching the victim slot must not move the hand back.
	c.Touch(0)
	require.Equal(t, 1, c.Victim())
	require.Equal(t, 0, c.Hand())
}

func TestClock_Victim_BoundedVisits(t *testing.T) {
	const n = 64
	c := New(n)
	for i := range n {
		c.Touch(i)
	}

	// All referenced: the victim is still found (first slot after one
	// clearing sweep), never an infinite loop.
	require.Equal(t, 0, c.Victim())
}

func TestClock_Forget_ClearsBit(t *testing.T) {
	c := New(3)
	c.Touch(0)
	c.Forget(0)

	require.Equal(t, 0, c.Victim())
}

func TestClock_OutOfRangeIgnored(t *testing.T) {
	c := New(2)
	c.Touch(-1)
	c.Touch(5)
	c.Forget(-1)
	c.Forget(5)

	require.Equal(t, 0, c.Victim())
}
