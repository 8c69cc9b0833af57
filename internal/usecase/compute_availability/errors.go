package compute_availability

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("compute_availability: invalid input data")

	// ErrInvalidDuration возвращается при некорректной длительности работы
	ErrInvalidDuration = errors.New("compute_availability: invalid duration")

	// ErrNoEligibleStaff возвращается, когда не удалось определить сотрудников
	ErrNoEligibleStaff = errors.New("compute_availability: no eligible staff")

	// ErrStoreUnavailable возвращается при ошибке хранилища
	ErrStoreUnavailable = errors.New("compute_availability: store unavailable")
)
