package availability

import (
	"slices"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

// Computer turns per-staff availability records into the day picture for a duration.
// It performs no I/O.
type Computer struct {
	grid domain.TimeGrid
}

func NewComputer(grid domain.TimeGrid) *Computer {
	return &Computer{grid: grid}
}

// Grid returns the grid the computer works on
func (c *Computer) Grid() domain.TimeGrid {
	return c.grid
}

// DayAvailability is the availability picture of one date for one duration
type DayAvailability struct {
	DurationMinutes int

	// BlockedSlots are grid slots where no eligible staff can start the job, in grid order
	BlockedSlots []types.TimeString

	// PerStaffUnavailable are the slots each eligible staff member cannot start at, in grid order
	PerStaffUnavailable map[int64][]types.TimeString

	// FullyBooked is true when every grid slot is blocked
	FullyBooked bool

	// ClearedOut is true when an admin clear-out closed the day
	ClearedOut bool

	validSlots  []types.TimeString
	blocked     map[types.TimeString]struct{}
	unavailable map[int64]map[types.TimeString]struct{}
	staffIDs    []int64
}

// IsBlocked reports whether t is blocked at the day level
func (d *DayAvailability) IsBlocked(t types.TimeString) bool {
	_, ok := d.blocked[t]
	return ok
}

// FreeStaffAt returns eligible staff that can start at t, sorted by id
func (d *DayAvailability) FreeStaffAt(t types.TimeString) []int64 {
	if d.ClearedOut || d.IsBlocked(t) {
		return []int64{}
	}
	free := make([]int64, 0, len(d.staffIDs))
	for _, id := range d.staffIDs {
		if _, busy := d.unavailable[id][t]; !busy {
			free = append(free, id)
		}
	}
	return free
}

// PerStaffFree returns, for every eligible staff member, the slots where they can start the job
func (d *DayAvailability) PerStaffFree() map[int64][]types.TimeString {
	result := make(map[int64][]types.TimeString, len(d.staffIDs))
	for _, id := range d.staffIDs {
		free := make([]types.TimeString, 0, len(d.validSlots))
		for _, slot := range d.validSlots {
			if d.ClearedOut || d.IsBlocked(slot) {
				continue
			}
			if _, busy := d.unavailable[id][slot]; !busy {
				free = append(free, slot)
			}
		}
		result[id] = free
	}
	return result
}

// UnavailableStarts returns the grid slots a staff member with the given consumed slots cannot start at.
//
// Durations of past bookings are not stored, so every consumed slot is treated as a
// start that blocks a window of the requested duration: slot is unavailable when
// slot+i is consumed for some i in {0, g, 2g, ...} below durationMinutes.
// Known approximation, kept as is until product decides on storing per-booking durations.
func (c *Computer) UnavailableStarts(consumed map[types.TimeString]struct{}, durationMinutes int) []types.TimeString {
	if len(consumed) == 0 {
		return []types.TimeString{}
	}

	offsets := c.grid.Offsets(durationMinutes)
	result := make([]types.TimeString, 0)
	for _, slot := range c.grid.ValidSlots() {
		for _, i := range offsets {
			probe, err := slot.AddMinutes(i)
			if err != nil {
				break
			}
			if _, ok := consumed[probe]; ok {
				result = append(result, slot)
				break
			}
		}
	}
	return result
}

// CloseOfBusinessWindow returns grid slots too close to closing to fit the job
func (c *Computer) CloseOfBusinessWindow(durationMinutes int) []types.TimeString {
	result := make([]types.TimeString, 0)
	for _, slot := range c.grid.ValidSlots() {
		if c.grid.EndsAfterClosing(slot, durationMinutes) {
			result = append(result, slot)
		}
	}
	return result
}

// Conflicts reports whether starting a job at start conflicts with the record.
// Used to recheck the latest record right before a conditional write.
func (c *Computer) Conflicts(record *domain.AvailabilityRecord, start types.TimeString, durationMinutes int) bool {
	if record == nil {
		return false
	}
	if record.IsBlockOut() {
		return true
	}
	return slices.Contains(c.UnavailableStarts(record.ConsumedSet(), durationMinutes), start)
}

// Compute builds the day picture for eligible staff.
// Records of staff outside staffIDs are ignored except for an admin clear-out,
// which closes the whole day.
func (c *Computer) Compute(records []*domain.AvailabilityRecord, staffIDs []int64, durationMinutes int) *DayAvailability {
	validSlots := c.grid.ValidSlots()
	eligible := uniqueSorted(staffIDs)

	day := &DayAvailability{
		DurationMinutes:     durationMinutes,
		PerStaffUnavailable: make(map[int64][]types.TimeString, len(eligible)),
		validSlots:          validSlots,
		blocked:             make(map[types.TimeString]struct{}),
		unavailable:         make(map[int64]map[types.TimeString]struct{}, len(eligible)),
		staffIDs:            eligible,
	}

	byStaff := make(map[int64]*domain.AvailabilityRecord, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if rec.IsClearedOut() {
			day.ClearedOut = true
		}
		byStaff[rec.StaffID] = rec
	}

	if day.ClearedOut {
		for _, id := range eligible {
			day.setUnavailable(id, validSlots)
		}
		day.block(validSlots)
		day.finish()
		return day
	}

	hasEligibleRecords := false
	for _, id := range eligible {
		rec, ok := byStaff[id]
		switch {
		case !ok:
			day.setUnavailable(id, nil)
		case rec.IsBlockOut():
			hasEligibleRecords = true
			day.setUnavailable(id, validSlots)
		default:
			hasEligibleRecords = true
			day.setUnavailable(id, c.UnavailableStarts(rec.ConsumedSet(), durationMinutes))
		}
	}

	// без записей на дату все свободны, кроме окна перед закрытием
	if hasEligibleRecords && len(eligible) > 0 {
		day.block(c.commonSlots(day, validSlots))
	}
	day.block(c.CloseOfBusinessWindow(durationMinutes))
	day.finish()
	return day
}

// commonSlots returns slots unavailable for every eligible staff member
func (c *Computer) commonSlots(day *DayAvailability, validSlots []types.TimeString) []types.TimeString {
	common := make([]types.TimeString, 0)
	for _, slot := range validSlots {
		all := true
		for _, id := range day.staffIDs {
			if _, busy := day.unavailable[id][slot]; !busy {
				all = false
				break
			}
		}
		if all {
			common = append(common, slot)
		}
	}
	return common
}

func (d *DayAvailability) setUnavailable(staffID int64, slots []types.TimeString) {
	set := make(map[types.TimeString]struct{}, len(slots))
	for _, s := range slots {
		set[s] = struct{}{}
	}
	d.unavailable[staffID] = set
	d.PerStaffUnavailable[staffID] = append([]types.TimeString{}, slots...)
}

func (d *DayAvailability) block(slots []types.TimeString) {
	for _, s := range slots {
		d.blocked[s] = struct{}{}
	}
}

func (d *DayAvailability) finish() {
	d.BlockedSlots = make([]types.TimeString, 0, len(d.blocked))
	for _, slot := range d.validSlots {
		if _, ok := d.blocked[slot]; ok {
			d.BlockedSlots = append(d.BlockedSlots, slot)
		}
	}
	d.FullyBooked = len(d.BlockedSlots) == len(d.validSlots)
}

func uniqueSorted(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
