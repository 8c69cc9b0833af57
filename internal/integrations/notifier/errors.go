package notifier

import "errors"

var (
	// ErrEncode возвращается при ошибке сериализации события
	ErrEncode = errors.New("notifier: failed to encode event")

	// ErrPublish возвращается при ошибке отправки события в брокер
	ErrPublish = errors.New("notifier: failed to publish event")

	// ErrUnknownEvent возвращается для неизвестного типа события
	ErrUnknownEvent = errors.New("notifier: unknown event type")
)
