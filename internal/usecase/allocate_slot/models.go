package allocate_slot

import (
	"time"

	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

// Request модель запроса на аллокацию слота
type Request struct {
	Date          time.Time        // Дата (без времени)
	DurationHours float64          // Длительность работы в часах
	StartTime     types.TimeString // Время начала "HH:MM", должно лежать в сетке
	StaffIDs      []int64          // Сотрудники; если пусто, берутся из справочника
}

// Response результат аллокации
type Response struct {
	StaffID         int64
	Date            time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	ConsumedSlots   []types.TimeString // слоты, занятые этой работой
}

// Результаты аллокации для метрик
const (
	resultSuccess        = "success"
	resultInvalid        = "invalid"
	resultSlotTaken      = "slot_taken"
	resultNoAvailability = "no_availability"
	resultConflict       = "conflict"
	resultError          = "error"
)
