package release_slot

import (
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	releaseSlot "github.com/m04kA/SMC-StaffAllocator/internal/usecase/release_slot"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

// ReleaseRequest HTTP request model
type ReleaseRequest struct {
	StaffID       int64   `json:"staffId"`
	Date          string  `json:"date"`
	DurationHours float64 `json:"durationHours"`
	StartTime     string  `json:"startTime"`
}

// ReleaseResponse HTTP response model
type ReleaseResponse struct {
	Released   bool     `json:"released"`
	FreedSlots []string `json:"freedSlots"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ReleaseRequest) ToUseCaseRequest() (*releaseSlot.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	return &releaseSlot.Request{
		StaffID:       r.StaffID,
		Date:          date,
		DurationHours: r.DurationHours,
		StartTime:     types.TimeString(r.StartTime),
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *releaseSlot.Response) *ReleaseResponse {
	freed := make([]string, len(resp.FreedSlots))
	for i, s := range resp.FreedSlots {
		freed[i] = s.String()
	}
	return &ReleaseResponse{Released: resp.Released, FreedSlots: freed}
}
