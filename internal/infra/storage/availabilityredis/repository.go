package availabilityredis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/infra/storage"
)

// DefaultKeyPrefix префикс ключей, если не задан в конфигурации
const DefaultKeyPrefix = "availability"

// createScript создает хэш записи, только если ключа еще нет.
// KEYS: record, date index, sequence. ARGV: data, staff id.
// Возвращает id новой записи или 0, если запись уже существует.
var createScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
local id = redis.call("INCR", KEYS[3])
redis.call("HSET", KEYS[1], "id", id, "version", 1, "data", ARGV[1])
redis.call("SADD", KEYS[2], ARGV[2])
return id
`)

// casScript перезаписывает data, если версия совпадает с ожидаемой.
// KEYS: record. ARGV: expected version, data.
// Возвращает новую версию, 0 при несовпадении версии, -1 если записи нет.
var casScript = redis.NewScript(`
local current = redis.call("HGET", KEYS[1], "version")
if not current then
  return -1
end
if current ~= ARGV[1] then
  return 0
end
local next = redis.call("HINCRBY", KEYS[1], "version", 1)
redis.call("HSET", KEYS[1], "data", ARGV[2])
return next
`)

// Repository хранилище записей доступности в Redis.
// Каждая запись (staff, date) хранится хэшем с полями id, version и data,
// атомарность условной записи обеспечивают Lua-скрипты.
// Скрипт создания трогает ключи разных слотов, поэтому Redis Cluster не поддерживается.
type Repository struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(rdb *redis.Client, prefix string) *Repository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repository{
		rdb:    rdb,
		prefix: prefix,
		now:    time.Now,
	}
}

// Get получает запись сотрудника на дату
func (r *Repository) Get(ctx context.Context, staffID int64, date time.Time) (*domain.AvailabilityRecord, error) {
	fields, err := r.rdb.HGetAll(ctx, recordKey(r.prefix, staffID, date)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - hgetall: %v", ErrExecScript, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: staff=%d date=%s", storage.ErrRecordNotFound, staffID, date.Format(domain.DateFormat))
	}

	return decodeRecord(fields)
}

// GetAllForDate получает записи всех сотрудников на дату
func (r *Repository) GetAllForDate(ctx context.Context, date time.Time) ([]*domain.AvailabilityRecord, error) {
	members, err := r.rdb.SMembers(ctx, dateIndexKey(r.prefix, date)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllForDate - smembers: %v", ErrExecScript, err)
	}

	staffIDs := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: staff id %q in date index: %v", ErrDecode, m, err)
		}
		staffIDs = append(staffIDs, id)
	}

	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(staffIDs))
	for i, id := range staffIDs {
		cmds[i] = pipe.HGetAll(ctx, recordKey(r.prefix, id, date))
	}
	if len(cmds) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("%w: GetAllForDate - pipeline: %v", ErrExecScript, err)
		}
	}

	records := make([]*domain.AvailabilityRecord, 0, len(cmds))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		record, err := decodeRecord(fields)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// CreateIfAbsent создает запись (staff, date)
// Если запись уже существует, возвращает storage.ErrAlreadyExists
func (r *Repository) CreateIfAbsent(ctx context.Context, record *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error) {
	now := r.now().UTC()
	created := record.Clone()
	created.Date = domain.NormalizeDate(record.Date)
	created.Version = 1
	created.CreatedAt = now
	created.UpdatedAt = now

	keys := []string{
		recordKey(r.prefix, record.StaffID, record.Date),
		dateIndexKey(r.prefix, record.Date),
		sequenceKey(r.prefix),
	}

	data, err := encodeRecord(created)
	if err != nil {
		return nil, err
	}
	id, err := createScript.Run(ctx, r.rdb, keys, data, record.StaffID).Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateIfAbsent - create script: %v", ErrExecScript, err)
	}
	if id == 0 {
		return nil, fmt.Errorf("%w: staff=%d date=%s", storage.ErrAlreadyExists, record.StaffID, created.Date.Format(domain.DateFormat))
	}

	created.ID = id
	return created, nil
}

// CompareAndSwap перезаписывает запись, если ее версия совпадает с record.Version
// При несовпадении версии возвращает storage.ErrVersionConflict
func (r *Repository) CompareAndSwap(ctx context.Context, record *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error) {
	updated := record.Clone()
	updated.Date = domain.NormalizeDate(record.Date)
	updated.UpdatedAt = r.now().UTC()

	data, err := encodeRecord(updated)
	if err != nil {
		return nil, err
	}

	key := recordKey(r.prefix, record.StaffID, record.Date)
	version, err := casScript.Run(ctx, r.rdb, []string{key}, strconv.FormatInt(record.Version, 10), data).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: CompareAndSwap - cas script: %v", ErrExecScript, err)
	}

	switch {
	case version == -1:
		return nil, fmt.Errorf("%w: staff=%d date=%s", storage.ErrRecordNotFound, record.StaffID, updated.Date.Format(domain.DateFormat))
	case version == 0:
		return nil, fmt.Errorf("%w: staff=%d date=%s version=%d",
			storage.ErrVersionConflict, record.StaffID, updated.Date.Format(domain.DateFormat), record.Version)
	}

	updated.Version = version
	return updated, nil
}

// Ping проверяет доступность Redis (для /readyz)
func (r *Repository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
