package allocate_slot

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StaffAllocator/internal/availability"
	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/infra/storage/availabilitymem"
	"github.com/m04kA/SMC-StaffAllocator/internal/integrations/notifier"
	"github.com/m04kA/SMC-StaffAllocator/internal/service/slotledger"
	"github.com/m04kA/SMC-StaffAllocator/pkg/logger"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifier.Event
	err    error
}

func (n *recordingNotifier) Publish(_ context.Context, e notifier.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

type staticDirectory struct {
	ids []int64
	err error
}

func (d staticDirectory) ListEligibleStaff(context.Context, time.Time) ([]int64, error) {
	return d.ids, d.err
}

type failingStore struct{}

func (failingStore) GetAllForDate(context.Context, time.Time) ([]*domain.AvailabilityRecord, error) {
	return nil, errors.New("connection reset")
}

// staleStore отдает пустой день, имитируя чтение до конкурентной записи
type staleStore struct{}

func (staleStore) GetAllForDate(context.Context, time.Time) ([]*domain.AvailabilityRecord, error) {
	return nil, nil
}

type ctxCheckingLedger struct {
	Ledger
	ctxErr error
}

func (l *ctxCheckingLedger) Update(ctx context.Context, staffID int64, date time.Time, mutate slotledger.MutateFunc) (*domain.AvailabilityRecord, error) {
	l.ctxErr = ctx.Err()
	return l.Ledger.Update(ctx, staffID, date, mutate)
}

type conflictLedger struct{}

func (conflictLedger) Update(context.Context, int64, time.Time, slotledger.MutateFunc) (*domain.AvailabilityRecord, error) {
	return nil, slotledger.ErrAllocationConflict
}

type fixture struct {
	store    *availabilitymem.Repository
	ledger   *slotledger.Ledger
	notifier *recordingNotifier
	uc       *UseCase
}

func newFixture() *fixture {
	store := availabilitymem.NewRepository()
	log := logger.NewNop()
	ledger := slotledger.NewLedger(store, domain.DefaultMaxWriteAttempts, nil, log)
	n := &recordingNotifier{}
	uc := NewUseCase(store, ledger, availability.NewComputer(domain.DefaultTimeGrid()), nil, n, nil, log)
	return &fixture{store: store, ledger: ledger, notifier: n, uc: uc}
}

func TestExecute_FirstAllocationThenSlotTaken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := &Request{Date: testDate, DurationHours: 1, StartTime: "09:00", StaffIDs: []int64{1}}

	resp, err := f.uc.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.StaffID)
	assert.Equal(t, types.TimeString("10:00"), resp.EndTime)
	assert.Equal(t, []types.TimeString{"09:00", "09:15", "09:30", "09:45"}, resp.ConsumedSlots)

	rec, err := f.store.Get(ctx, 1, testDate)
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"09:00", "09:15", "09:30", "09:45"}, rec.ConsumedSlots)

	_, err = f.uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestExecute_CloseOfBusinessBoundary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, &Request{Date: testDate, DurationHours: 3, StartTime: "15:00", StaffIDs: []int64{1}})
	assert.ErrorIs(t, err, ErrSlotTaken)

	resp, err := f.uc.Execute(ctx, &Request{Date: testDate, DurationHours: 3, StartTime: "14:00", StaffIDs: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("17:00"), resp.EndTime)
	assert.Len(t, resp.ConsumedSlots, 12)
}

func TestExecute_FullDayExhaustion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	staff := []int64{1, 2}

	first, err := f.uc.Execute(ctx, &Request{Date: testDate, DurationHours: 8, StartTime: "09:00", StaffIDs: staff})
	require.NoError(t, err)
	second, err := f.uc.Execute(ctx, &Request{Date: testDate, DurationHours: 8, StartTime: "09:00", StaffIDs: staff})
	require.NoError(t, err)
	assert.NotEqual(t, first.StaffID, second.StaffID)

	_, err = f.uc.Execute(ctx, &Request{Date: testDate, DurationHours: 8, StartTime: "09:00", StaffIDs: staff})
	assert.ErrorIs(t, err, ErrNoAvailability)

	// короче работа тоже не помещается
	_, err = f.uc.Execute(ctx, &Request{Date: testDate, DurationHours: 0.25, StartTime: "12:00", StaffIDs: staff})
	assert.ErrorIs(t, err, ErrNoAvailability)
}

func TestExecute_RandomTieBreakDistribution(t *testing.T) {
	const trials = 1000
	rnd := rand.New(rand.NewPCG(42, 1024))
	counts := map[int64]int{}

	for i := 0; i < trials; i++ {
		f := newFixture()
		f.uc.WithRandomSource(rnd)

		resp, err := f.uc.Execute(context.Background(), &Request{
			Date: testDate, DurationHours: 1, StartTime: "10:00", StaffIDs: []int64{1, 2},
		})
		require.NoError(t, err)
		counts[resp.StaffID]++
	}

	assert.Len(t, counts, 2)
	assert.InDelta(t, trials/2, counts[1], 100)
	assert.InDelta(t, trials/2, counts[2], 100)
}

func TestExecute_ConcurrentSameSlotSingleWinner(t *testing.T) {
	f := newFixture()
	starts := []types.TimeString{"09:00", "09:15", "09:30", "09:45"}

	const workers = 24
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), &Request{
				Date: testDate, DurationHours: 1, StartTime: starts[i%len(starts)], StaffIDs: []int64{1},
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotTaken)
	}
	assert.Equal(t, 1, successes)

	rec, err := f.store.Get(context.Background(), 1, testDate)
	require.NoError(t, err)
	assert.Len(t, rec.ConsumedSlots, 4)
}

func TestExecute_RecheckOnStaleRead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, &Request{Date: testDate, DurationHours: 1, StartTime: "09:00", StaffIDs: []int64{1}})
	require.NoError(t, err)

	stale := NewUseCase(staleStore{}, f.ledger, availability.NewComputer(domain.DefaultTimeGrid()), nil, nil, nil, logger.NewNop())
	_, err = stale.Execute(ctx, &Request{Date: testDate, DurationHours: 1, StartTime: "09:30", StaffIDs: []int64{1}})
	assert.ErrorIs(t, err, ErrSlotTaken)

	rec, err := f.store.Get(ctx, 1, testDate)
	require.NoError(t, err)
	assert.Len(t, rec.ConsumedSlots, 4)
}

func TestExecute_PersistIgnoresCancellation(t *testing.T) {
	f := newFixture()
	ledger := &ctxCheckingLedger{Ledger: f.ledger}
	uc := NewUseCase(f.store, ledger, availability.NewComputer(domain.DefaultTimeGrid()), nil, nil, nil, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Execute(ctx, &Request{Date: testDate, DurationHours: 1, StartTime: "09:00", StaffIDs: []int64{1}})
	require.NoError(t, err)
	assert.NoError(t, ledger.ctxErr)
}

func TestExecute_ClearedOutDay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.store.CreateIfAbsent(ctx, domain.NewClearOutRecord(5, testDate))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, &Request{Date: testDate, DurationHours: 1, StartTime: "09:00", StaffIDs: []int64{1, 2}})
	assert.ErrorIs(t, err, ErrNoAvailability)
}

func TestExecute_UsesStaffDirectory(t *testing.T) {
	f := newFixture()
	f.uc.directory = staticDirectory{ids: []int64{7}}

	resp, err := f.uc.Execute(context.Background(), &Request{Date: testDate, DurationHours: 1, StartTime: "11:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.StaffID)

	f.uc.directory = staticDirectory{err: errors.New("timeout")}
	_, err = f.uc.Execute(context.Background(), &Request{Date: testDate, DurationHours: 1, StartTime: "11:00"})
	assert.ErrorIs(t, err, ErrNoEligibleStaff)
}

func TestExecute_PublishesEvent(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{Date: testDate, DurationHours: 0.5, StartTime: "13:00", StaffIDs: []int64{3}})
	require.NoError(t, err)

	require.Len(t, f.notifier.events, 1)
	e := f.notifier.events[0]
	assert.Equal(t, notifier.EventAllocationCreated, e.Type)
	assert.Equal(t, int64(3), e.StaffID)
	assert.Equal(t, "2025-10-15", e.Date)
	assert.Equal(t, "13:30", e.EndTime)
	assert.Equal(t, []string{"13:00", "13:15"}, e.Slots)
	assert.NotEmpty(t, e.ID)
}

func TestExecute_NotifierFailureKeepsAllocation(t *testing.T) {
	f := newFixture()
	f.notifier.err = errors.New("broker down")

	resp, err := f.uc.Execute(context.Background(), &Request{Date: testDate, DurationHours: 1, StartTime: "09:00", StaffIDs: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.StaffID)

	_, err = f.store.Get(context.Background(), 1, testDate)
	assert.NoError(t, err)
}

func TestExecute_Errors(t *testing.T) {
	grid := availability.NewComputer(domain.DefaultTimeGrid())
	log := logger.NewNop()

	tests := []struct {
		name string
		uc   *UseCase
		req  *Request
		want error
	}{
		{
			name: "zero duration rejected before store access",
			uc:   NewUseCase(failingStore{}, conflictLedger{}, grid, nil, nil, nil, log),
			req:  &Request{Date: testDate, DurationHours: 0, StartTime: "09:00", StaffIDs: []int64{1}},
			want: ErrInvalidDuration,
		},
		{
			name: "negative duration",
			uc:   NewUseCase(failingStore{}, conflictLedger{}, grid, nil, nil, nil, log),
			req:  &Request{Date: testDate, DurationHours: -1, StartTime: "09:00", StaffIDs: []int64{1}},
			want: ErrInvalidDuration,
		},
		{
			name: "start off grid",
			uc:   NewUseCase(failingStore{}, conflictLedger{}, grid, nil, nil, nil, log),
			req:  &Request{Date: testDate, DurationHours: 1, StartTime: "09:10", StaffIDs: []int64{1}},
			want: ErrInvalidTimeSlot,
		},
		{
			name: "start after closing",
			uc:   NewUseCase(failingStore{}, conflictLedger{}, grid, nil, nil, nil, log),
			req:  &Request{Date: testDate, DurationHours: 1, StartTime: "17:15", StaffIDs: []int64{1}},
			want: ErrInvalidTimeSlot,
		},
		{
			name: "malformed start",
			uc:   NewUseCase(failingStore{}, conflictLedger{}, grid, nil, nil, nil, log),
			req:  &Request{Date: testDate, DurationHours: 1, StartTime: "9am", StaffIDs: []int64{1}},
			want: ErrInvalidTimeSlot,
		},
		{
			name: "missing date",
			uc:   NewUseCase(failingStore{}, conflictLedger{}, grid, nil, nil, nil, log),
			req:  &Request{DurationHours: 1, StartTime: "09:00", StaffIDs: []int64{1}},
			want: ErrInvalidInput,
		},
		{
			name: "no staff and no directory",
			uc:   NewUseCase(failingStore{}, conflictLedger{}, grid, nil, nil, nil, log),
			req:  &Request{Date: testDate, DurationHours: 1, StartTime: "09:00"},
			want: ErrNoEligibleStaff,
		},
		{
			name: "store failure",
			uc:   NewUseCase(failingStore{}, conflictLedger{}, grid, nil, nil, nil, log),
			req:  &Request{Date: testDate, DurationHours: 1, StartTime: "09:00", StaffIDs: []int64{1}},
			want: ErrStoreUnavailable,
		},
		{
			name: "write contention exhausted",
			uc:   NewUseCase(staleStore{}, conflictLedger{}, grid, nil, nil, nil, log),
			req:  &Request{Date: testDate, DurationHours: 1, StartTime: "09:00", StaffIDs: []int64{1}},
			want: ErrAllocationConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
