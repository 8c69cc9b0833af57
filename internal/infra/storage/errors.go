// Package storage содержит общие ошибки хранилищ записей доступности.
// Каждый бэкенд оборачивает их, чтобы вызывающий код мог проверять через errors.Is
// независимо от выбранного хранилища.
package storage

import "errors"

var (
	// ErrRecordNotFound запись (staff, date) отсутствует
	ErrRecordNotFound = errors.New("storage: availability record not found")

	// ErrAlreadyExists запись (staff, date) уже создана конкурентным запросом
	ErrAlreadyExists = errors.New("storage: availability record already exists")

	// ErrVersionConflict версия записи изменилась с момента чтения
	ErrVersionConflict = errors.New("storage: availability record version conflict")
)
