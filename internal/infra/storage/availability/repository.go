package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/infra/storage"
	"github.com/m04kA/SMC-StaffAllocator/pkg/psqlbuilder"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

const table = "staff_availability"

// pgUniqueViolation код ошибки PostgreSQL при нарушении UNIQUE
const pgUniqueViolation = "23505"

var columns = []string{
	"id",
	"staff_id",
	"date",
	"kind",
	"consumed_slots",
	"block_reason",
	"blocked_for_customer_id",
	"is_booked",
	"version",
	"created_at",
	"updated_at",
}

// Repository хранилище записей доступности сотрудников в PostgreSQL
// Оптимистичная блокировка реализована через колонку version
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает запись сотрудника на дату
func (r *Repository) Get(ctx context.Context, staffID int64, date time.Time) (*domain.AvailabilityRecord, error) {
	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"staff_id": staffID, "date": domain.NormalizeDate(date)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: staff=%d date=%s", storage.ErrRecordNotFound, staffID, date.Format(domain.DateFormat))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan record: %v", ErrScanRow, err)
	}

	return record, nil
}

// GetAllForDate получает записи всех сотрудников на дату
func (r *Repository) GetAllForDate(ctx context.Context, date time.Time) ([]*domain.AvailabilityRecord, error) {
	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"date": domain.NormalizeDate(date)}).
		OrderBy("staff_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllForDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllForDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]*domain.AvailabilityRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetAllForDate - scan record: %v", ErrScanRow, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAllForDate - rows error: %v", ErrScanRow, err)
	}

	return records, nil
}

// CreateIfAbsent создает запись (staff, date)
// Если конкурентный запрос успел создать запись раньше, возвращает storage.ErrAlreadyExists
func (r *Repository) CreateIfAbsent(ctx context.Context, record *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error) {
	values, err := toRow(record)
	if err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns("staff_id", "date", "kind", "consumed_slots", "block_reason", "blocked_for_customer_id", "is_booked", "version").
		Values(record.StaffID, values.date, values.kind, values.slots, values.blockReason, values.customerID, values.isBooked, 1).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateIfAbsent - build insert query: %v", ErrBuildQuery, err)
	}

	created := record.Clone()
	created.Date = values.date
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&created.ID, &created.Version, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%w: staff=%d date=%s", storage.ErrAlreadyExists, record.StaffID, values.date.Format(domain.DateFormat))
		}
		return nil, fmt.Errorf("%w: CreateIfAbsent - execute insert: %v", ErrExecQuery, err)
	}

	return created, nil
}

// CompareAndSwap перезаписывает запись, если ее версия совпадает с record.Version
// При несовпадении версии возвращает storage.ErrVersionConflict
func (r *Repository) CompareAndSwap(ctx context.Context, record *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error) {
	values, err := toRow(record)
	if err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Update(table).
		Set("kind", values.kind).
		Set("consumed_slots", values.slots).
		Set("block_reason", values.blockReason).
		Set("blocked_for_customer_id", values.customerID).
		Set("is_booked", values.isBooked).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"staff_id": record.StaffID, "date": values.date, "version": record.Version}).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CompareAndSwap - build update query: %v", ErrBuildQuery, err)
	}

	updated := record.Clone()
	updated.Date = values.date
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&updated.ID, &updated.Version, &updated.CreatedAt, &updated.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// записи не удаляются, поэтому 0 строк означает смену версии
		return nil, fmt.Errorf("%w: staff=%d date=%s version=%d",
			storage.ErrVersionConflict, record.StaffID, values.date.Format(domain.DateFormat), record.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: CompareAndSwap - execute update: %v", ErrExecQuery, err)
	}

	return updated, nil
}

// Ping проверяет доступность БД (для /readyz)
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type rowValues struct {
	date        time.Time
	kind        string
	slots       interface{}
	blockReason sql.NullString
	customerID  sql.NullInt64
	isBooked    bool
}

func toRow(record *domain.AvailabilityRecord) (rowValues, error) {
	values := rowValues{
		date: domain.NormalizeDate(record.Date),
		kind: string(record.Kind),
	}

	slots := make([]string, len(record.ConsumedSlots))
	for i, s := range record.ConsumedSlots {
		slots[i] = s.String()
	}
	values.slots = pq.Array(slots)

	switch record.Kind {
	case domain.KindBooking:
	case domain.KindDayBlockOut:
		if record.BlockOut == nil {
			return rowValues{}, fmt.Errorf("%w: block-out record without payload", ErrInvalidRecord)
		}
		values.blockReason = sql.NullString{String: string(record.BlockOut.Reason), Valid: true}
		values.isBooked = record.BlockOut.IsBooked
		if record.BlockOut.BlockedForCustomerID != nil {
			values.customerID = sql.NullInt64{Int64: *record.BlockOut.BlockedForCustomerID, Valid: true}
		}
	default:
		return rowValues{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, record.Kind)
	}

	return values, nil
}

func scanRecord(row rowScanner) (*domain.AvailabilityRecord, error) {
	var (
		record      domain.AvailabilityRecord
		kind        string
		slots       []string
		blockReason sql.NullString
		customerID  sql.NullInt64
		isBooked    bool
	)

	err := row.Scan(
		&record.ID,
		&record.StaffID,
		&record.Date,
		&kind,
		pq.Array(&slots),
		&blockReason,
		&customerID,
		&isBooked,
		&record.Version,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Date = domain.NormalizeDate(record.Date)
	record.Kind = domain.RecordKind(kind)
	record.ConsumedSlots = make([]types.TimeString, len(slots))
	for i, s := range slots {
		record.ConsumedSlots[i] = types.TimeString(s)
	}

	if record.Kind == domain.KindDayBlockOut {
		record.BlockOut = &domain.DayBlockOut{
			Reason:   domain.BlockOutReason(blockReason.String),
			IsBooked: isBooked,
		}
		if customerID.Valid {
			id := customerID.Int64
			record.BlockOut.BlockedForCustomerID = &id
		}
	}

	return &record, nil
}
