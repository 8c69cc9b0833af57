package availabilitymem

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/infra/storage"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

var date = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func TestRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, err := repo.Get(ctx, 1, date)
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)

	created, err := repo.CreateIfAbsent(ctx, domain.NewBookingRecord(1, date, []types.TimeString{"09:00"}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)
	assert.NotZero(t, created.ID)

	_, err = repo.CreateIfAbsent(ctx, domain.NewBookingRecord(1, date, []types.TimeString{"10:00"}))
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	got, err := repo.Get(ctx, 1, date.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"09:00"}, got.ConsumedSlots)
}

func TestRepository_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	created, err := repo.CreateIfAbsent(ctx, domain.NewBookingRecord(1, date, []types.TimeString{"09:00"}))
	require.NoError(t, err)

	updated, err := repo.CompareAndSwap(ctx, created.WithConsumed([]types.TimeString{"09:15"}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	// устаревшая версия
	_, err = repo.CompareAndSwap(ctx, created.WithConsumed([]types.TimeString{"11:00"}))
	assert.ErrorIs(t, err, storage.ErrVersionConflict)

	got, err := repo.Get(ctx, 1, date)
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"09:00", "09:15"}, got.ConsumedSlots)

	_, err = repo.CompareAndSwap(ctx, domain.NewBookingRecord(2, date, nil))
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	created, err := repo.CreateIfAbsent(ctx, domain.NewBookingRecord(1, date, []types.TimeString{"09:00"}))
	require.NoError(t, err)
	created.ConsumedSlots[0] = "12:00"

	got, err := repo.Get(ctx, 1, date)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("09:00"), got.ConsumedSlots[0])
}

func TestRepository_GetAllForDate(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	for _, id := range []int64{3, 1, 2} {
		_, err := repo.CreateIfAbsent(ctx, domain.NewBookingRecord(id, date, nil))
		require.NoError(t, err)
	}
	_, err := repo.CreateIfAbsent(ctx, domain.NewBookingRecord(1, date.AddDate(0, 0, 1), nil))
	require.NoError(t, err)

	records, err := repo.GetAllForDate(ctx, date)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(1), records[0].StaffID)
	assert.Equal(t, int64(3), records[2].StaffID)
}

func TestRepository_ConcurrentCreateHasSingleWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.CreateIfAbsent(ctx, domain.NewBookingRecord(1, date, nil)); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
