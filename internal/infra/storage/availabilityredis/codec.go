package availabilityredis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

const (
	fieldID      = "id"
	fieldVersion = "version"
	fieldData    = "data"
)

// recordKey ключ хэша записи (staff, date)
func recordKey(prefix string, staffID int64, date time.Time) string {
	return fmt.Sprintf("%s:%s:%d", prefix, domain.NormalizeDate(date).Format(domain.DateFormat), staffID)
}

// dateIndexKey ключ множества сотрудников, у которых есть запись на дату
func dateIndexKey(prefix string, date time.Time) string {
	return fmt.Sprintf("%s:%s:staff", prefix, domain.NormalizeDate(date).Format(domain.DateFormat))
}

func sequenceKey(prefix string) string {
	return prefix + ":seq"
}

// storedRecord формат записи в поле data; id и версия хранятся отдельными полями хэша
type storedRecord struct {
	StaffID       int64    `json:"staff_id"`
	Date          string   `json:"date"`
	Kind          string   `json:"kind"`
	ConsumedSlots []string `json:"consumed_slots"`

	BlockReason          string `json:"block_reason,omitempty"`
	BlockedForCustomerID *int64 `json:"blocked_for_customer_id,omitempty"`
	IsBooked             bool   `json:"is_booked,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func encodeRecord(record *domain.AvailabilityRecord) ([]byte, error) {
	stored := storedRecord{
		StaffID:       record.StaffID,
		Date:          domain.NormalizeDate(record.Date).Format(domain.DateFormat),
		Kind:          string(record.Kind),
		ConsumedSlots: make([]string, len(record.ConsumedSlots)),
		CreatedAt:     record.CreatedAt.UTC(),
		UpdatedAt:     record.UpdatedAt.UTC(),
	}
	for i, s := range record.ConsumedSlots {
		stored.ConsumedSlots[i] = s.String()
	}

	switch record.Kind {
	case domain.KindBooking:
	case domain.KindDayBlockOut:
		if record.BlockOut == nil {
			return nil, fmt.Errorf("%w: block-out record without payload", ErrEncode)
		}
		stored.BlockReason = string(record.BlockOut.Reason)
		stored.BlockedForCustomerID = record.BlockOut.BlockedForCustomerID
		stored.IsBooked = record.BlockOut.IsBooked
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrEncode, record.Kind)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return data, nil
}

func decodeRecord(fields map[string]string) (*domain.AvailabilityRecord, error) {
	rawVersion, ok := fields[fieldVersion]
	if !ok {
		return nil, fmt.Errorf("%w: missing version", ErrDecode)
	}
	version, err := strconv.ParseInt(rawVersion, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %v", ErrDecode, rawVersion, err)
	}

	id, err := strconv.ParseInt(fields[fieldID], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: id %q: %v", ErrDecode, fields[fieldID], err)
	}

	var stored storedRecord
	if err := json.Unmarshal([]byte(fields[fieldData]), &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	date, err := time.Parse(domain.DateFormat, stored.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q: %v", ErrDecode, stored.Date, err)
	}

	record := &domain.AvailabilityRecord{
		ID:            id,
		StaffID:       stored.StaffID,
		Date:          date,
		Kind:          domain.RecordKind(stored.Kind),
		ConsumedSlots: make([]types.TimeString, len(stored.ConsumedSlots)),
		Version:       version,
		CreatedAt:     stored.CreatedAt,
		UpdatedAt:     stored.UpdatedAt,
	}
	for i, s := range stored.ConsumedSlots {
		record.ConsumedSlots[i] = types.TimeString(s)
	}

	switch record.Kind {
	case domain.KindBooking:
	case domain.KindDayBlockOut:
		record.BlockOut = &domain.DayBlockOut{
			Reason:               domain.BlockOutReason(stored.BlockReason),
			BlockedForCustomerID: stored.BlockedForCustomerID,
			IsBooked:             stored.IsBooked,
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrDecode, stored.Kind)
	}

	return record, nil
}
