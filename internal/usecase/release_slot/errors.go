package release_slot

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("release_slot: invalid input data")

	// ErrInvalidDuration возвращается при некорректной длительности работы
	ErrInvalidDuration = errors.New("release_slot: invalid duration")

	// ErrInvalidTimeSlot возвращается, когда время начала не попадает в сетку слотов
	ErrInvalidTimeSlot = errors.New("release_slot: start time is not a grid slot")

	// ErrAllocationConflict возвращается, когда конкурентные записи исчерпали попытки
	ErrAllocationConflict = errors.New("release_slot: release conflict, retry later")

	// ErrStoreUnavailable возвращается при ошибке хранилища
	ErrStoreUnavailable = errors.New("release_slot: store unavailable")
)
