package domain

import (
	"slices"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

// RecordKind discriminates the two uses of a (staff, date) availability record
type RecordKind string

const (
	// KindBooking holds the slots consumed by appointments
	KindBooking RecordKind = "booking"
	// KindDayBlockOut marks the whole day as blocked for the staff member
	KindDayBlockOut RecordKind = "day_block_out"
)

// BlockOutReason explains why a day is blocked
type BlockOutReason string

const (
	// BlockOutClearedOut is an admin override that closes the day for everyone
	BlockOutClearedOut BlockOutReason = "cleared_out"
	// BlockOutDealership is a staff member blocking the day for an external visit
	BlockOutDealership BlockOutReason = "dealership"
)

// DayBlockOut is the payload of a KindDayBlockOut record
type DayBlockOut struct {
	Reason               BlockOutReason
	BlockedForCustomerID *int64
	IsBooked             bool
}

// AvailabilityRecord is the single record per (StaffID, Date).
// Exactly one of ConsumedSlots (KindBooking) or BlockOut (KindDayBlockOut) is meaningful.
type AvailabilityRecord struct {
	ID            int64
	StaffID       int64
	Date          time.Time
	Kind          RecordKind
	ConsumedSlots []types.TimeString // sorted, unique
	BlockOut      *DayBlockOut

	// Version is the optimistic concurrency token, bumped on every successful write
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBookingRecord builds a fresh booking record for the first allocation of the day
func NewBookingRecord(staffID int64, date time.Time, slots []types.TimeString) *AvailabilityRecord {
	return &AvailabilityRecord{
		StaffID:       staffID,
		Date:          NormalizeDate(date),
		Kind:          KindBooking,
		ConsumedSlots: normalizeSlots(slots),
	}
}

// NewClearOutRecord builds the sentinel record that blocks the whole day
func NewClearOutRecord(staffID int64, date time.Time) *AvailabilityRecord {
	return &AvailabilityRecord{
		StaffID:  staffID,
		Date:     NormalizeDate(date),
		Kind:     KindDayBlockOut,
		BlockOut: &DayBlockOut{Reason: BlockOutClearedOut},
	}
}

// IsBlockOut returns true for KindDayBlockOut records
func (r *AvailabilityRecord) IsBlockOut() bool {
	return r.Kind == KindDayBlockOut
}

// IsClearedOut returns true if the record closes the day at the day level
func (r *AvailabilityRecord) IsClearedOut() bool {
	return r.IsBlockOut() && r.BlockOut != nil && r.BlockOut.Reason == BlockOutClearedOut
}

// ConsumedSet returns consumed slots as a set
func (r *AvailabilityRecord) ConsumedSet() map[types.TimeString]struct{} {
	set := make(map[types.TimeString]struct{}, len(r.ConsumedSlots))
	for _, s := range r.ConsumedSlots {
		set[s] = struct{}{}
	}
	return set
}

// Clone returns a deep copy
func (r *AvailabilityRecord) Clone() *AvailabilityRecord {
	clone := *r
	clone.ConsumedSlots = slices.Clone(r.ConsumedSlots)
	if r.BlockOut != nil {
		blockOut := *r.BlockOut
		if r.BlockOut.BlockedForCustomerID != nil {
			id := *r.BlockOut.BlockedForCustomerID
			blockOut.BlockedForCustomerID = &id
		}
		clone.BlockOut = &blockOut
	}
	return &clone
}

// WithConsumed returns a copy with slots merged into ConsumedSlots
func (r *AvailabilityRecord) WithConsumed(slots []types.TimeString) *AvailabilityRecord {
	next := r.Clone()
	next.ConsumedSlots = normalizeSlots(append(next.ConsumedSlots, slots...))
	return next
}

// WithoutSlots returns a copy with slots removed and whether anything was removed
func (r *AvailabilityRecord) WithoutSlots(slots []types.TimeString) (*AvailabilityRecord, bool) {
	drop := make(map[types.TimeString]struct{}, len(slots))
	for _, s := range slots {
		drop[s] = struct{}{}
	}

	next := r.Clone()
	next.ConsumedSlots = slices.DeleteFunc(next.ConsumedSlots, func(s types.TimeString) bool {
		_, ok := drop[s]
		return ok
	})
	return next, len(next.ConsumedSlots) != len(r.ConsumedSlots)
}

// AsBooking returns a copy converted to an empty booking record (keeps key and version)
func (r *AvailabilityRecord) AsBooking() *AvailabilityRecord {
	next := r.Clone()
	next.Kind = KindBooking
	next.BlockOut = nil
	next.ConsumedSlots = []types.TimeString{}
	return next
}

// AsClearedOut returns a copy converted to a clear-out sentinel (keeps key and version)
func (r *AvailabilityRecord) AsClearedOut() *AvailabilityRecord {
	next := r.Clone()
	next.Kind = KindDayBlockOut
	next.ConsumedSlots = []types.TimeString{}
	next.BlockOut = &DayBlockOut{Reason: BlockOutClearedOut}
	return next
}

// NormalizeDate drops the time of day, keeping the calendar date
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizeSlots(slots []types.TimeString) []types.TimeString {
	out := slices.Clone(slots)
	if out == nil {
		out = []types.TimeString{}
	}
	// HH:MM is zero padded, so lexical order is chronological
	slices.Sort(out)
	return slices.Compact(out)
}
