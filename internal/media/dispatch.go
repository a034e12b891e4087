package media

import (
	"context"
	"fmt"

	"media-storage-backend/internal/models"
)

// Finisher completes persistence and derivative work for one newly
// ingested file and returns the enriched descriptor. Finishers own the
// readiness transition: the upload row is marked ready only when all of
// the finisher's writes have committed.
type Finisher interface {
	Finish(ctx context.Context, desc *models.FileDescriptor) (*models.FileDescriptor, error)
}

// Dispatcher routes a successfully ingested file to the single finisher
// registered for its group.
type Dispatcher struct {
	finishers map[models.Group]Finisher
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{finishers: make(map[models.Group]Finisher)}
}

func (d *Dispatcher) Register(group models.Group, f Finisher) {
	d.finishers[group] = f
}

func (d *Dispatcher) Dispatch(ctx context.Context, desc *models.FileDescriptor) (*models.FileDescriptor, error) {
	f, ok := d.finishers[desc.Group]
	if !ok {
		return nil, fmt.Errorf("no finisher registered for group %q", desc.Group)
	}
	return f.Finish(ctx, desc)
}
