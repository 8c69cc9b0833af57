package get_availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	computeAvailability "github.com/m04kA/SMC-StaffAllocator/internal/usecase/compute_availability"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date                string              `json:"date"`
	DurationMinutes     int                 `json:"durationMinutes"`
	StaffIDs            []int64             `json:"staffIds"`
	BlockedSlots        []string            `json:"blockedSlots"`
	PerStaffUnavailable map[string][]string `json:"perStaffUnavailable"`
	PerStaffFree        map[string][]string `json:"perStaffFree"`
	FullyBooked         bool                `json:"fullyBooked"`
	ClearedOut          bool                `json:"clearedOut"`
}

// ToUseCaseRequest собирает запрос use case из query параметров
func ToUseCaseRequest(dateStr, durationStr, staffIDsStr string) (*computeAvailability.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return nil, fmt.Errorf("durationHours: %w", err)
	}

	staffIDs, err := ParseStaffIDs(staffIDsStr)
	if err != nil {
		return nil, err
	}

	return &computeAvailability.Request{
		Date:          date,
		DurationHours: duration,
		StaffIDs:      staffIDs,
	}, nil
}

// ParseStaffIDs разбирает "1,2,3"; пустая строка дает nil
func ParseStaffIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("staffIds: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *computeAvailability.Response) *AvailabilityResponse {
	return &AvailabilityResponse{
		Date:                resp.Date.Format(domain.DateFormat),
		DurationMinutes:     resp.DurationMinutes,
		StaffIDs:            resp.StaffIDs,
		BlockedSlots:        slotStrings(resp.BlockedSlots),
		PerStaffUnavailable: slotMap(resp.PerStaffUnavailable),
		PerStaffFree:        slotMap(resp.PerStaffFree),
		FullyBooked:         resp.FullyBooked,
		ClearedOut:          resp.ClearedOut,
	}
}

func slotStrings(slots []types.TimeString) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}

// JSON ключи объекта всегда строки
func slotMap(m map[int64][]types.TimeString) map[string][]string {
	out := make(map[string][]string, len(m))
	for id, slots := range m {
		out[strconv.FormatInt(id, 10)] = slotStrings(slots)
	}
	return out
}
