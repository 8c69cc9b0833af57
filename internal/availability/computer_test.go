package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func slotsBetween(t *testing.T, from, to types.TimeString) []types.TimeString {
	t.Helper()
	var out []types.TimeString
	for m := from.Minutes(); m <= to.Minutes(); m += 15 {
		s, err := types.NewTimeStringFromMinutes(m)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func booking(staffID int64, start types.TimeString, minutes int) *domain.AvailabilityRecord {
	return domain.NewBookingRecord(staffID, testDate, domain.DefaultTimeGrid().Expand(start, minutes))
}

func TestUnavailableStarts(t *testing.T) {
	c := NewComputer(domain.DefaultTimeGrid())

	rec := booking(1, "09:00", 60)
	got := c.UnavailableStarts(rec.ConsumedSet(), 60)
	assert.Equal(t, []types.TimeString{"09:00", "09:15", "09:30", "09:45"}, got)

	// 2h job at 11:00, new 1h request: every start whose hour touches 11:00-12:45
	rec = booking(1, "11:00", 120)
	got = c.UnavailableStarts(rec.ConsumedSet(), 60)
	assert.Equal(t, slotsBetween(t, "10:15", "12:45"), got)

	assert.Empty(t, c.UnavailableStarts(nil, 60))
}

func TestCloseOfBusinessWindow(t *testing.T) {
	c := NewComputer(domain.DefaultTimeGrid())

	window := c.CloseOfBusinessWindow(180)
	assert.Equal(t, slotsBetween(t, "14:15", "17:00"), window)
	assert.NotContains(t, window, types.TimeString("14:00"))

	// даже 15-минутная работа не может начаться в момент закрытия
	assert.Equal(t, []types.TimeString{"17:00"}, c.CloseOfBusinessWindow(15))
}

func TestCompute_NoRecordsFastPath(t *testing.T) {
	c := NewComputer(domain.DefaultTimeGrid())

	day := c.Compute(nil, []int64{1, 2}, 60)

	assert.Equal(t, slotsBetween(t, "16:15", "17:00"), day.BlockedSlots)
	assert.False(t, day.FullyBooked)
	assert.Equal(t, []int64{1, 2}, day.FreeStaffAt("09:00"))
	assert.Empty(t, day.PerStaffUnavailable[1])
	assert.Empty(t, day.PerStaffUnavailable[2])
}

func TestCompute_IntersectionAcrossStaff(t *testing.T) {
	c := NewComputer(domain.DefaultTimeGrid())

	// занят только сотрудник 1: на уровне дня блокируется только конец дня
	day := c.Compute([]*domain.AvailabilityRecord{booking(1, "09:00", 60)}, []int64{1, 2}, 60)
	assert.False(t, day.IsBlocked("09:00"))
	assert.Equal(t, []int64{2}, day.FreeStaffAt("09:00"))
	assert.Equal(t, []int64{1, 2}, day.FreeStaffAt("10:00"))

	// оба заняты с 09:00: общий интервал блокируется
	day = c.Compute([]*domain.AvailabilityRecord{
		booking(1, "09:00", 60),
		booking(2, "09:00", 120),
	}, []int64{1, 2}, 60)
	assert.True(t, day.IsBlocked("09:00"))
	assert.True(t, day.IsBlocked("09:45"))
	assert.False(t, day.IsBlocked("10:00"))
	assert.Equal(t, []int64{1}, day.FreeStaffAt("10:00"))
	assert.Empty(t, day.FreeStaffAt("09:30"))
}

func TestCompute_IgnoresNonEligibleStaff(t *testing.T) {
	c := NewComputer(domain.DefaultTimeGrid())

	day := c.Compute([]*domain.AvailabilityRecord{booking(7, "09:00", 480)}, []int64{1}, 60)

	assert.False(t, day.IsBlocked("09:00"))
	_, ok := day.PerStaffUnavailable[7]
	assert.False(t, ok)
}

func TestCompute_ClearedOutDay(t *testing.T) {
	c := NewComputer(domain.DefaultTimeGrid())

	day := c.Compute([]*domain.AvailabilityRecord{
		domain.NewClearOutRecord(9, testDate),
	}, []int64{1, 2}, 60)

	assert.True(t, day.ClearedOut)
	assert.True(t, day.FullyBooked)
	assert.Equal(t, domain.DefaultTimeGrid().ValidSlots(), day.BlockedSlots)
	assert.Empty(t, day.FreeStaffAt("10:00"))
}

func TestCompute_DealershipBlockOutIsPerStaff(t *testing.T) {
	c := NewComputer(domain.DefaultTimeGrid())

	blockOut := &domain.AvailabilityRecord{
		StaffID:  1,
		Date:     testDate,
		Kind:     domain.KindDayBlockOut,
		BlockOut: &domain.DayBlockOut{Reason: domain.BlockOutDealership},
	}

	day := c.Compute([]*domain.AvailabilityRecord{blockOut}, []int64{1, 2}, 60)
	assert.False(t, day.ClearedOut)
	assert.False(t, day.IsBlocked("10:00"))
	assert.Equal(t, []int64{2}, day.FreeStaffAt("10:00"))

	day = c.Compute([]*domain.AvailabilityRecord{blockOut}, []int64{1}, 60)
	assert.True(t, day.FullyBooked)
}

func TestCompute_FullDayExhaustion(t *testing.T) {
	c := NewComputer(domain.DefaultTimeGrid())

	// без записей 8-часовую работу можно начать только в 09:00
	day := c.Compute(nil, []int64{1, 2}, 480)
	assert.Equal(t, []int64{1, 2}, day.FreeStaffAt("09:00"))
	assert.Equal(t, slotsBetween(t, "09:15", "17:00"), day.BlockedSlots)

	day = c.Compute([]*domain.AvailabilityRecord{
		booking(1, "09:00", 480),
		booking(2, "09:00", 480),
	}, []int64{1, 2}, 480)

	assert.True(t, day.FullyBooked)
	assert.Equal(t, domain.DefaultTimeGrid().ValidSlots(), day.BlockedSlots)
}

func TestPerStaffFree(t *testing.T) {
	c := NewComputer(domain.DefaultTimeGrid())

	day := c.Compute([]*domain.AvailabilityRecord{booking(1, "09:00", 420)}, []int64{1, 2}, 60)
	free := day.PerStaffFree()

	assert.Equal(t, slotsBetween(t, "16:00", "16:00"), free[1])
	assert.Equal(t, slotsBetween(t, "09:00", "16:00"), free[2])
}

func TestConflicts(t *testing.T) {
	c := NewComputer(domain.DefaultTimeGrid())
	rec := booking(1, "10:00", 60)

	assert.True(t, c.Conflicts(rec, "09:15", 60))
	assert.False(t, c.Conflicts(rec, "09:00", 60))
	assert.False(t, c.Conflicts(rec, "11:00", 60))
	assert.False(t, c.Conflicts(nil, "10:00", 60))
	assert.True(t, c.Conflicts(domain.NewClearOutRecord(1, testDate), "11:00", 60))
}
