package notifier

import "context"

// Noop издатель для конфигурации без брокера
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }
