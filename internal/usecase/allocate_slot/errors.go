package allocate_slot

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("allocate_slot: invalid input data")

	// ErrInvalidDuration возвращается при некорректной длительности работы
	ErrInvalidDuration = errors.New("allocate_slot: invalid duration")

	// ErrInvalidTimeSlot возвращается, когда время начала не попадает в сетку слотов
	ErrInvalidTimeSlot = errors.New("allocate_slot: start time is not a grid slot")

	// ErrNoEligibleStaff возвращается, когда не удалось определить сотрудников
	ErrNoEligibleStaff = errors.New("allocate_slot: no eligible staff")

	// ErrNoAvailability возвращается, когда на дату нет ни одного свободного слота для длительности
	ErrNoAvailability = errors.New("allocate_slot: no availability for date")

	// ErrSlotTaken возвращается, когда выбранное время занято
	ErrSlotTaken = errors.New("allocate_slot: slot is taken")

	// ErrAllocationConflict возвращается, когда конкурентные записи исчерпали попытки
	ErrAllocationConflict = errors.New("allocate_slot: allocation conflict, retry later")

	// ErrStoreUnavailable возвращается при ошибке хранилища
	ErrStoreUnavailable = errors.New("allocate_slot: store unavailable")
)
