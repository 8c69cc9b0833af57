package release_slot

import (
	"time"

	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

// Request модель запроса на освобождение слотов ранее выполненной аллокации
type Request struct {
	StaffID       int64
	Date          time.Time
	DurationHours float64
	StartTime     types.TimeString
}

// Response результат освобождения
type Response struct {
	// Released false, если освобождать было нечего (повторный вызов, нет записи)
	Released   bool
	FreedSlots []types.TimeString
}

const (
	resultReleased = "released"
	resultNoop     = "noop"
	resultInvalid  = "invalid"
	resultConflict = "conflict"
	resultError    = "error"
)
