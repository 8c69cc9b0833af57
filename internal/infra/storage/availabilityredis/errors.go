package availabilityredis

import "errors"

var (
	// ErrExecScript возвращается при ошибке выполнения скрипта или команды Redis
	ErrExecScript = errors.New("availabilityredis.repository: failed to execute command")

	// ErrDecode возвращается при некорректных данных записи в Redis
	ErrDecode = errors.New("availabilityredis.repository: failed to decode record")

	// ErrEncode возвращается при ошибке сериализации записи
	ErrEncode = errors.New("availabilityredis.repository: failed to encode record")
)
