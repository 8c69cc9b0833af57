package daystate

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("daystate: invalid input data")

	// ErrDayHasBookings возвращается при попытке закрыть день, в котором у сотрудника есть записи
	ErrDayHasBookings = errors.New("daystate: staff has bookings on this day")

	// ErrDayBlockedOut возвращается, когда день уже заблокирован сотрудником по другой причине
	ErrDayBlockedOut = errors.New("daystate: day is blocked out for another reason")

	// ErrAllocationConflict возвращается, когда конкурентные записи исчерпали попытки
	ErrAllocationConflict = errors.New("daystate: write conflict, retry later")

	// ErrStoreUnavailable возвращается при ошибке хранилища
	ErrStoreUnavailable = errors.New("daystate: store unavailable")
)
