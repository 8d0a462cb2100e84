package reschedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ross1116/sitespace-app-sub000/internal/models"
	"github.com/Ross1116/sitespace-app-sub000/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock Committer ---

type mockCommitter struct {
	commitFn func(ctx context.Context, bookingKey string, payload models.ReschedulePayload) error
	payloads []models.ReschedulePayload
}

func (m *mockCommitter) CommitReschedule(ctx context.Context, bookingKey string, payload models.ReschedulePayload) error {
	m.payloads = append(m.payloads, payload)
	if m.commitFn != nil {
		return m.commitFn(ctx, bookingKey, payload)
	}
	return nil
}

func calEvent(id string, hour, minute, durationMin int) models.CalendarEvent {
	start := time.Date(2025, 3, 12, hour, minute, 0, 0, time.Local)
	return models.CalendarEvent{
		ID:         id,
		BookingKey: id,
		Start:      start,
		End:        start.Add(time.Duration(durationMin) * time.Minute),
		Status:     models.StatusConfirmed,
		Purpose:    "lift plan",
		Notes:      "bay 2",
	}
}

func newFixture(blocked BlockChecker, committer Committer) (*Controller, *store.EventStore) {
	st := store.New("crane-1")
	st.Replace([]models.CalendarEvent{
		calEvent("e1", 9, 0, 60),
		calEvent("e2", 13, 0, 60),
	})
	// PixelsPerHour 60 makes one pixel one minute in these tests.
	return NewController(DefaultConfig(), st, blocked, committer), st
}

func TestSnap_RoundsHalfAwayFromZero(t *testing.T) {
	c, _ := newFixture(nil, &mockCommitter{})

	cases := map[float64]int{
		47:  60, // above the 45 midpoint rounds up
		45:  60, // midpoint rounds up
		44:  30, // below the midpoint rounds down
		30:  30,
		14:  0,
		-47: -60, // symmetric for upward drags
		-44: -30,
	}
	for px, want := range cases {
		assert.Equal(t, want, c.snap(px), "delta %vpx", px)
	}
}

func TestEnd_SnappedDeltaIsMultipleOfIncrement(t *testing.T) {
	committer := &mockCommitter{}
	c, _ := newFixture(nil, committer)

	for _, px := range []float64{17, 47, 73, 101, -38} {
		require.NoError(t, c.Begin("e1", 0))
		p, err := c.End(px)
		require.NoError(t, err)
		if p != nil {
			assert.Zero(t, p.DeltaMinutes%30, "delta %vpx", px)
			c.Cancel()
		}
	}
}

func TestEnd_ZeroSnapIsNoOp(t *testing.T) {
	c, st := newFixture(nil, &mockCommitter{})
	before, _ := st.Find("e1")

	require.NoError(t, c.Begin("e1", 0))
	p, err := c.End(10) // 10 minutes snaps to zero

	assert.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, PhaseIdle, c.Phase())
	after, _ := st.Find("e1")
	assert.Equal(t, before.Start, after.Start)
}

func TestEnd_CrossDayRejected(t *testing.T) {
	c, st := newFixture(nil, &mockCommitter{})
	before := st.Snapshot()

	require.NoError(t, c.Begin("e2", 0))
	_, err := c.End(11 * 60) // 13:00 + 11h lands past midnight

	assert.ErrorIs(t, err, ErrCrossDay)
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, before, st.Snapshot())
}

func TestEnd_OutsideBusinessHoursRejected(t *testing.T) {
	c, _ := newFixture(nil, &mockCommitter{})

	// 9:00 dragged up 4 hours starts at 5:00, before the 6:00 opening.
	require.NoError(t, c.Begin("e1", 0))
	_, err := c.End(-4 * 60)
	assert.ErrorIs(t, err, ErrOutsideHours)

	// 13:00-14:00 dragged down 7 hours ends at 21:00, after the 20:00 close.
	require.NoError(t, c.Begin("e2", 0))
	_, err = c.End(7 * 60)
	assert.ErrorIs(t, err, ErrOutsideHours)
}

func TestEnd_MaintenanceWindowRejected(t *testing.T) {
	blockedAfternoon := func(at time.Time) bool { return at.Hour() >= 12 }
	c, st := newFixture(blockedAfternoon, &mockCommitter{})
	before := st.Snapshot()

	require.NoError(t, c.Begin("e1", 0))
	_, err := c.End(3 * 60) // 9:00 → 12:00, inside the blocked window

	assert.ErrorIs(t, err, ErrMaintenanceBlocked)
	assert.Equal(t, before, st.Snapshot())
}

func TestBegin_BlockedAssetDisablesDrag(t *testing.T) {
	alwaysBlocked := func(time.Time) bool { return true }
	c, _ := newFixture(alwaysBlocked, &mockCommitter{})

	assert.ErrorIs(t, c.Begin("e1", 0), ErrAssetBlocked)
}

func TestConfirm_SuccessKeepsOptimisticUpdateAndFiresHook(t *testing.T) {
	committer := &mockCommitter{}
	c, st := newFixture(nil, committer)

	var hooked *models.CalendarEvent
	c.SetCommittedHook(func(ev models.CalendarEvent) { hooked = &ev })

	require.NoError(t, c.Begin("e1", 0))
	p, err := c.End(60)
	require.NoError(t, err)
	require.NotNil(t, p)

	require.NoError(t, c.Confirm(context.Background()))

	ev, _ := st.Find("e1")
	assert.Equal(t, 10, ev.Start.Hour())
	assert.Equal(t, 11, ev.End.Hour())
	assert.Equal(t, PhaseIdle, c.Phase())

	require.NotNil(t, hooked)
	assert.Equal(t, "e1", hooked.ID)

	// The payload carries absolute times and rides purpose/notes forward.
	require.Len(t, committer.payloads, 1)
	assert.Equal(t, "2025-03-12", committer.payloads[0].BookingDate)
	assert.Equal(t, "10:00", committer.payloads[0].StartTime)
	assert.Equal(t, "11:00", committer.payloads[0].EndTime)
	assert.Equal(t, "lift plan", committer.payloads[0].Purpose)
	assert.Equal(t, "bay 2", committer.payloads[0].Notes)
}

func TestConfirm_FailureRollsBackExactly(t *testing.T) {
	committer := &mockCommitter{
		commitFn: func(context.Context, string, models.ReschedulePayload) error {
			return errors.New("slot already taken")
		},
	}
	c, st := newFixture(nil, committer)
	before := st.Snapshot()

	require.NoError(t, c.Begin("e1", 0))
	_, err := c.End(60)
	require.NoError(t, err)

	err = c.Confirm(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot already taken")

	// Pre-drag times restored exactly; the sibling event untouched.
	assert.Equal(t, before, st.Snapshot())
	assert.Equal(t, PhaseIdle, c.Phase())
}

func TestConfirm_ReplayedPayloadDoesNotDoubleShift(t *testing.T) {
	committer := &mockCommitter{}
	c, st := newFixture(nil, committer)

	require.NoError(t, c.Begin("e1", 0))
	_, err := c.End(60)
	require.NoError(t, err)
	require.NoError(t, c.Confirm(context.Background()))

	first, _ := st.Find("e1")

	// Replaying the committed payload applies the same absolute times.
	p := committer.payloads[0]
	date, _ := time.ParseInLocation("2006-01-02 15:04", p.BookingDate+" "+p.StartTime, time.Local)
	end, _ := time.ParseInLocation("2006-01-02 15:04", p.BookingDate+" "+p.EndTime, time.Local)
	st.SetTimes("e1", date, end)

	second, _ := st.Find("e1")
	assert.Equal(t, first.Start, second.Start)
	assert.Equal(t, first.End, second.End)
}

func TestBegin_RefusedWhileCommitInFlight(t *testing.T) {
	release := make(chan struct{})
	committer := &mockCommitter{
		commitFn: func(context.Context, string, models.ReschedulePayload) error {
			<-release
			return nil
		},
	}
	c, _ := newFixture(nil, committer)

	require.NoError(t, c.Begin("e1", 0))
	_, err := c.End(60)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- c.Confirm(context.Background()) }()

	// Wait until the commit is actually in flight.
	require.Eventually(t, func() bool { return c.Phase() == PhaseCommitting },
		time.Second, time.Millisecond)

	assert.ErrorIs(t, c.Begin("e2", 0), ErrCommitInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.NoError(t, c.Begin("e2", 0))
}

func TestConfirm_AfterCloseDiscardsSilently(t *testing.T) {
	release := make(chan struct{})
	committer := &mockCommitter{
		commitFn: func(context.Context, string, models.ReschedulePayload) error {
			<-release
			return errors.New("too late")
		},
	}
	c, st := newFixture(nil, committer)

	require.NoError(t, c.Begin("e1", 0))
	_, err := c.End(60)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- c.Confirm(context.Background()) }()
	require.Eventually(t, func() bool { return c.Phase() == PhaseCommitting },
		time.Second, time.Millisecond)

	// Tear down the view while the commit is outstanding. The optimistic
	// update stays as-is: no rollback against a dead store, no error.
	optimistic := st.Snapshot()
	c.Close()
	close(release)

	assert.NoError(t, <-done)
	assert.Equal(t, optimistic, st.Snapshot())
}

func TestCancel_AbandonsPendingConfirmation(t *testing.T) {
	c, st := newFixture(nil, &mockCommitter{})
	before := st.Snapshot()

	require.NoError(t, c.Begin("e1", 0))
	p, err := c.End(60)
	require.NoError(t, err)
	require.NotNil(t, p)

	c.Cancel()
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, before, st.Snapshot())
	assert.ErrorIs(t, c.Confirm(context.Background()), ErrNothingToConfirm)
}

func TestMove_AccumulatesTravel(t *testing.T) {
	c, _ := newFixture(nil, &mockCommitter{})

	require.NoError(t, c.Begin("e1", 100))
	c.Move(130)
	c.Move(160)
	p, err := c.End(160) // net +60px = +60min
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 60, p.DeltaMinutes)
}
