package get_day_records

import (
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
)

// RecordResponse запись доступности сотрудника
type RecordResponse struct {
	ID            int64             `json:"id"`
	StaffID       int64             `json:"staffId"`
	Date          string            `json:"date"`
	Kind          string            `json:"kind"`
	ConsumedSlots []string          `json:"consumedSlots"`
	BlockOut      *BlockOutResponse `json:"blockOut,omitempty"`
	Version       int64             `json:"version"`
	UpdatedAt     string            `json:"updatedAt"`
}

// BlockOutResponse данные блокировки дня
type BlockOutResponse struct {
	Reason               string `json:"reason"`
	BlockedForCustomerID *int64 `json:"blockedForCustomerId,omitempty"`
	IsBooked             bool   `json:"isBooked"`
}

// DayRecordsResponse ответ со всеми записями на дату
type DayRecordsResponse struct {
	Date    string            `json:"date"`
	Records []*RecordResponse `json:"records"`
}

// FromDomainRecord конвертирует доменную запись в HTTP модель
func FromDomainRecord(rec *domain.AvailabilityRecord) *RecordResponse {
	resp := &RecordResponse{
		ID:            rec.ID,
		StaffID:       rec.StaffID,
		Date:          rec.Date.Format(domain.DateFormat),
		Kind:          string(rec.Kind),
		ConsumedSlots: make([]string, len(rec.ConsumedSlots)),
		Version:       rec.Version,
		UpdatedAt:     rec.UpdatedAt.Format(time.RFC3339),
	}
	for i, s := range rec.ConsumedSlots {
		resp.ConsumedSlots[i] = s.String()
	}
	if rec.BlockOut != nil {
		resp.BlockOut = &BlockOutResponse{
			Reason:               string(rec.BlockOut.Reason),
			BlockedForCustomerID: rec.BlockOut.BlockedForCustomerID,
			IsBooked:             rec.BlockOut.IsBooked,
		}
	}
	return resp
}
