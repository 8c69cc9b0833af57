package slotledger

import "errors"

var (
	// ErrAllocationConflict возвращается, когда все попытки записи проиграли конкурентным запросам
	ErrAllocationConflict = errors.New("slotledger: write conflict, attempts exhausted")

	// ErrNoChange возвращается из MutateFunc, когда запись не нужно менять
	ErrNoChange = errors.New("slotledger: no change")

	// ErrStore возвращается при ошибке хранилища, не связанной с конкуренцией
	ErrStore = errors.New("slotledger: store error")
)
