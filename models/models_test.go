package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingOverlapsHalfOpen(t *testing.T) {
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	b := &Booking{Start: start, End: start.Add(time.Hour)}

	assert.True(t, b.Overlaps(start.Add(30*time.Minute), start.Add(90*time.Minute)))
	assert.True(t, b.Overlaps(start.Add(-30*time.Minute), start.Add(30*time.Minute)))
	assert.True(t, b.Overlaps(start, start.Add(time.Hour)))

	// Back-to-back intervals share a boundary but not a minute.
	assert.False(t, b.Overlaps(start.Add(time.Hour), start.Add(2*time.Hour)))
	assert.False(t, b.Overlaps(start.Add(-time.Hour), start))
}

func TestBookingActiveStatuses(t *testing.T) {
	for _, tc := range []struct {
		status BookingStatus
		active bool
	}{
		{BookingPending, true},
		{BookingConfirmed, true},
		{BookingFailedToSync, true},
		{BookingCancelled, false},
		{BookingCompleted, false},
	} {
		b := &Booking{Status: tc.status}
		assert.Equal(t, tc.active, b.Active(), "status %s", tc.status)
	}
}

func TestParseClockMinutes(t *testing.T) {
	mins, err := ParseClockMinutes("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8*60+30, mins)

	_, err = ParseClockMinutes("25:00")
	assert.Error(t, err)
	_, err = ParseClockMinutes("9am")
	assert.Error(t, err)
}

func TestClubValidate(t *testing.T) {
	valid := &Club{
		Name: "Riverside Padel",
		Resources: []Resource{
			{Name: "Court 1", Type: "padel_court", Capacity: 1},
			{Name: "Court 2", Type: "padel_court", Capacity: 1},
		},
		OpeningHours: OpeningHours{
			"monday": {{Open: "08:00", Close: "12:00"}, {Open: "13:00", Close: "22:00"}},
		},
	}
	require.NoError(t, valid.Validate())

	dup := *valid
	dup.Resources = []Resource{{Name: "Court 1"}, {Name: "Court 1"}}
	assert.Error(t, dup.Validate())

	backwards := *valid
	backwards.OpeningHours = OpeningHours{"monday": {{Open: "22:00", Close: "08:00"}}}
	assert.Error(t, backwards.Validate())

	overlapping := *valid
	overlapping.OpeningHours = OpeningHours{"monday": {
		{Open: "08:00", Close: "14:00"}, {Open: "12:00", Close: "22:00"},
	}}
	assert.Error(t, overlapping.Validate())
}

func TestCustomerFunnelOnlyMovesForward(t *testing.T) {
	c := &Customer{Status: CustomerLead}

	assert.True(t, c.AdvanceStatus(CustomerProspect))
	assert.Equal(t, CustomerProspect, c.Status)

	assert.False(t, c.AdvanceStatus(CustomerLead))
	assert.Equal(t, CustomerProspect, c.Status)

	assert.True(t, c.AdvanceStatus(CustomerMember))
	assert.False(t, c.AdvanceStatus(CustomerProspect))
	assert.Equal(t, CustomerMember, c.Status)
}

func TestNotificationDeliverable(t *testing.T) {
	for _, tc := range []struct {
		status      NotificationStatus
		deliverable bool
	}{
		{NotificationQueued, true},
		{NotificationRetrying, true},
		{NotificationSent, false},
		{NotificationDelivered, false},
		{NotificationFailed, false},
		{NotificationCancelled, false},
	} {
		n := &Notification{Status: tc.status}
		assert.Equal(t, tc.deliverable, n.Deliverable(), "status %s", tc.status)
	}
}

func TestAppliedEventByID(t *testing.T) {
	c := &Conversation{Applied: []AppliedEvent{
		{EventID: "evt-1", Kind: EventCallStarted},
		{EventID: "evt-2", Kind: EventTranscriptUpdate},
	}}

	require.NotNil(t, c.AppliedEventByID("evt-2"))
	assert.Equal(t, EventTranscriptUpdate, c.AppliedEventByID("evt-2").Kind)
	assert.Nil(t, c.AppliedEventByID("evt-9"))
}
