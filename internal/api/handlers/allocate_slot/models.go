package allocate_slot

import (
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	allocateSlot "github.com/m04kA/SMC-StaffAllocator/internal/usecase/allocate_slot"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

// AllocateRequest HTTP request model
type AllocateRequest struct {
	Date          string  `json:"date"`      // "2025-10-15"
	DurationHours float64 `json:"durationHours"`
	StartTime     string  `json:"startTime"` // "10:00"
	StaffIDs      []int64 `json:"staffIds,omitempty"`
}

// AllocationResponse HTTP response model
type AllocationResponse struct {
	StaffID         int64    `json:"staffId"`
	Date            string   `json:"date"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	DurationMinutes int      `json:"durationMinutes"`
	ConsumedSlots   []string `json:"consumedSlots"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Выравнивание времени по сетке проверяет use case
func (r *AllocateRequest) ToUseCaseRequest() (*allocateSlot.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	return &allocateSlot.Request{
		Date:          date,
		DurationHours: r.DurationHours,
		StartTime:     types.TimeString(r.StartTime),
		StaffIDs:      r.StaffIDs,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *allocateSlot.Response) *AllocationResponse {
	consumed := make([]string, len(resp.ConsumedSlots))
	for i, s := range resp.ConsumedSlots {
		consumed[i] = s.String()
	}
	return &AllocationResponse{
		StaffID:         resp.StaffID,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		DurationMinutes: resp.DurationMinutes,
		ConsumedSlots:   consumed,
	}
}
