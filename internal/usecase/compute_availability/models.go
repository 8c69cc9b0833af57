package compute_availability

import (
	"time"

	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

// Request модель запроса на расчет доступности
type Request struct {
	Date          time.Time // Дата (без времени)
	DurationHours float64   // Длительность работы в часах (1.5 = 1ч 30м)
	StaffIDs      []int64   // Сотрудники; если пусто, берутся из справочника
}

// Response картина доступности дня для заданной длительности
type Response struct {
	Date            time.Time
	DurationMinutes int
	StaffIDs        []int64

	// BlockedSlots слоты, в которые работу не может начать ни один сотрудник
	BlockedSlots []types.TimeString

	PerStaffUnavailable map[int64][]types.TimeString
	PerStaffFree        map[int64][]types.TimeString

	FullyBooked bool
	ClearedOut  bool
}
