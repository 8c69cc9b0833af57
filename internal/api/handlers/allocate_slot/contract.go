package allocate_slot

import (
	"context"

	allocateSlot "github.com/m04kA/SMC-StaffAllocator/internal/usecase/allocate_slot"
)

type AllocateSlotUseCase interface {
	Execute(ctx context.Context, req *allocateSlot.Request) (*allocateSlot.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
