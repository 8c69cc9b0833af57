package domain

import (
	"time"

	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

// Allocation is the outcome of a successful slot allocation
type Allocation struct {
	StaffID         int64
	Date            time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	ConsumedSlots   []types.TimeString
}
