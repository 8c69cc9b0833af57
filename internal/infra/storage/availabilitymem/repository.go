// Package availabilitymem хранит записи доступности в памяти процесса.
// Используется в тестах и при [allocation] store = "memory".
package availabilitymem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/infra/storage"
)

type key struct {
	staffID int64
	date    string
}

// Repository потокобезопасное хранилище с теми же гарантиями условной записи,
// что и у PostgreSQL и Redis бэкендов
type Repository struct {
	mu      sync.Mutex
	records map[key]*domain.AvailabilityRecord
	seq     int64
	now     func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		records: make(map[key]*domain.AvailabilityRecord),
		now:     time.Now,
	}
}

func keyOf(staffID int64, date time.Time) key {
	return key{staffID: staffID, date: domain.NormalizeDate(date).Format(domain.DateFormat)}
}

func (r *Repository) Get(_ context.Context, staffID int64, date time.Time) (*domain.AvailabilityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[keyOf(staffID, date)]
	if !ok {
		return nil, fmt.Errorf("%w: staff=%d date=%s", storage.ErrRecordNotFound, staffID, date.Format(domain.DateFormat))
	}
	return rec.Clone(), nil
}

func (r *Repository) GetAllForDate(_ context.Context, date time.Time) ([]*domain.AvailabilityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	day := domain.NormalizeDate(date).Format(domain.DateFormat)
	records := make([]*domain.AvailabilityRecord, 0)
	for k, rec := range r.records {
		if k.date == day {
			records = append(records, rec.Clone())
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].StaffID < records[j].StaffID })
	return records, nil
}

func (r *Repository) CreateIfAbsent(_ context.Context, record *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := keyOf(record.StaffID, record.Date)
	if _, ok := r.records[k]; ok {
		return nil, fmt.Errorf("%w: staff=%d date=%s", storage.ErrAlreadyExists, record.StaffID, k.date)
	}

	r.seq++
	now := r.now().UTC()
	created := record.Clone()
	created.ID = r.seq
	created.Date = domain.NormalizeDate(record.Date)
	created.Version = 1
	created.CreatedAt = now
	created.UpdatedAt = now

	r.records[k] = created
	return created.Clone(), nil
}

func (r *Repository) CompareAndSwap(_ context.Context, record *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := keyOf(record.StaffID, record.Date)
	current, ok := r.records[k]
	if !ok {
		return nil, fmt.Errorf("%w: staff=%d date=%s", storage.ErrRecordNotFound, record.StaffID, k.date)
	}
	if current.Version != record.Version {
		return nil, fmt.Errorf("%w: staff=%d date=%s version=%d current=%d",
			storage.ErrVersionConflict, record.StaffID, k.date, record.Version, current.Version)
	}

	updated := record.Clone()
	updated.ID = current.ID
	updated.Date = current.Date
	updated.Version = current.Version + 1
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = r.now().UTC()

	r.records[k] = updated
	return updated.Clone(), nil
}

func (r *Repository) Ping(context.Context) error {
	return nil
}
