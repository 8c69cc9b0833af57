package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Типы задач asynq для воркеров уведомлений
const (
	TaskAllocationCreated  = "allocation:created"
	TaskAllocationReleased = "allocation:released"
)

// AsynqPublisher ставит события в очередь asynq (Redis), доставка at-least-once
type AsynqPublisher struct {
	client   *asynq.Client
	queue    string
	maxRetry int
}

// NewAsynqPublisher создает издателя поверх очереди asynq
func NewAsynqPublisher(opt asynq.RedisClientOpt, queue string, maxRetry int) *AsynqPublisher {
	if queue == "" {
		queue = "default"
	}
	return &AsynqPublisher{
		client:   asynq.NewClient(opt),
		queue:    queue,
		maxRetry: maxRetry,
	}
}

// Publish ставит задачу; id события используется как id задачи, повторная постановка отклоняется asynq
func (p *AsynqPublisher) Publish(ctx context.Context, event Event) error {
	task, opts, err := newTask(event, p.queue, p.maxRetry)
	if err != nil {
		return err
	}

	if _, err := p.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("%w: enqueue %s: %v", ErrPublish, task.Type(), err)
	}
	return nil
}

func (p *AsynqPublisher) Close() error {
	return p.client.Close()
}

func newTask(event Event, queue string, maxRetry int) (*asynq.Task, []asynq.Option, error) {
	taskType, err := taskTypeOf(event.Type)
	if err != nil {
		return nil, nil, err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	opts := []asynq.Option{asynq.Queue(queue), asynq.MaxRetry(maxRetry)}
	if event.ID != "" {
		opts = append(opts, asynq.TaskID(event.ID))
	}

	return asynq.NewTask(taskType, payload), opts, nil
}

func taskTypeOf(t EventType) (string, error) {
	switch t {
	case EventAllocationCreated:
		return TaskAllocationCreated, nil
	case EventAllocationReleased:
		return TaskAllocationReleased, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, t)
	}
}
