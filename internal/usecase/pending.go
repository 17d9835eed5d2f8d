package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/grainlens/uploader/internal/domain/entity"
)

// Pending is the future of one selection's request
type Pending struct {
	SelectionID uuid.UUID

	done   chan struct{}
	result entity.Result
}

func newPending(id uuid.UUID) *Pending {
	return &Pending{
		SelectionID: id,
		done:        make(chan struct{}),
	}
}

func (p *Pending) resolve(result entity.Result) {
	p.result = result
	close(p.done)
}

// Done is closed once the result is available
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result blocks until the request finishes
func (p *Pending) Result() entity.Result {
	<-p.done
	return p.result
}

// Wait blocks until the request finishes or ctx is done
func (p *Pending) Wait(ctx context.Context) (entity.Result, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return entity.Result{}, ctx.Err()
	}
}
