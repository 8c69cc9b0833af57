package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/infra/storage"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

func TestToRow(t *testing.T) {
	date := time.Date(2025, 10, 15, 11, 30, 0, 0, time.UTC)

	values, err := toRow(domain.NewBookingRecord(1, date, nil))
	require.NoError(t, err)
	assert.Equal(t, "booking", values.kind)
	assert.True(t, values.date.Equal(time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, values.blockReason.Valid)
	assert.False(t, values.customerID.Valid)

	customer := int64(7)
	values, err = toRow(&domain.AvailabilityRecord{
		StaffID:  1,
		Date:     date,
		Kind:     domain.KindDayBlockOut,
		BlockOut: &domain.DayBlockOut{Reason: domain.BlockOutDealership, BlockedForCustomerID: &customer, IsBooked: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "dealership", values.blockReason.String)
	assert.Equal(t, customer, values.customerID.Int64)
	assert.True(t, values.isBooked)
}

func TestToRow_InvalidRecord(t *testing.T) {
	_, err := toRow(&domain.AvailabilityRecord{Kind: domain.KindDayBlockOut})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = toRow(&domain.AvailabilityRecord{Kind: "weekly"})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

var (
	testDate     = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	returningCol = []string{"id", "version", "created_at", "updated_at"}
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewRepository(db), mock
}

func TestCreateIfAbsent(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO staff_availability`).
		WillReturnRows(sqlmock.NewRows(returningCol).AddRow(int64(11), int64(1), now, now))

	created, err := repo.CreateIfAbsent(context.Background(), domain.NewBookingRecord(1, testDate, []types.TimeString{"09:00"}))
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, int64(1), created.Version)
	assert.Equal(t, now, created.CreatedAt)
}

func TestCreateIfAbsent_UniqueViolation(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO staff_availability`).
		WillReturnError(&pq.Error{Code: pgUniqueViolation, Message: "duplicate key value violates unique constraint"})

	_, err := repo.CreateIfAbsent(context.Background(), domain.NewBookingRecord(1, testDate, nil))
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestCreateIfAbsent_OtherError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO staff_availability`).WillReturnError(errors.New("connection reset"))

	_, err := repo.CreateIfAbsent(context.Background(), domain.NewBookingRecord(1, testDate, nil))
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.NotErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestCompareAndSwap(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	record := domain.NewBookingRecord(1, testDate, []types.TimeString{"09:00", "09:15"})
	record.ID = 11
	record.Version = 3

	// kind, slots, reason, customer, is_booked, затем WHERE date, staff_id, version
	mock.ExpectQuery(`UPDATE staff_availability SET .*version = version \+ 1.* WHERE .*version = \$8`).
		WithArgs("booking", sqlmock.AnyArg(), nil, nil, false, sqlmock.AnyArg(), int64(1), int64(3)).
		WillReturnRows(sqlmock.NewRows(returningCol).AddRow(int64(11), int64(4), now, now))

	updated, err := repo.CompareAndSwap(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.Version)
	assert.Equal(t, []types.TimeString{"09:00", "09:15"}, updated.ConsumedSlots)
}

func TestCompareAndSwap_StaleVersion(t *testing.T) {
	repo, mock := newMockRepository(t)

	record := domain.NewBookingRecord(1, testDate, []types.TimeString{"09:00"})
	record.Version = 2

	mock.ExpectQuery(`UPDATE staff_availability`).WillReturnRows(sqlmock.NewRows(returningCol))

	_, err := repo.CompareAndSwap(context.Background(), record)
	assert.ErrorIs(t, err, storage.ErrVersionConflict)
}

func TestGet(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM staff_availability WHERE`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(11), int64(1), testDate, "booking", "{09:00,09:15}", nil, nil, false, int64(2), now, now))

	got, err := repo.Get(context.Background(), 1, testDate)
	require.NoError(t, err)
	assert.Equal(t, domain.KindBooking, got.Kind)
	assert.Equal(t, []types.TimeString{"09:00", "09:15"}, got.ConsumedSlots)
	assert.Equal(t, int64(2), got.Version)
	assert.Nil(t, got.BlockOut)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT .* FROM staff_availability WHERE`).WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.Get(context.Background(), 1, testDate)
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestGetAllForDate_ClearOutRecord(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM staff_availability WHERE date = \$1 ORDER BY staff_id ASC`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(5), int64(4), testDate, "day_block_out", "{}", "cleared_out", nil, false, int64(1), now, now))

	records, err := repo.GetAllForDate(context.Background(), testDate)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsClearedOut())
	assert.Empty(t, records[0].ConsumedSlots)
}
