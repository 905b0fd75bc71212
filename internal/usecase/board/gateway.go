package board

import (
	"context"
	"errors"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/filter"
)

// Gateway failure classes. Implementations wrap one of these so the
// controller can decide between rollback, retry and degraded mode.
var (
	ErrUnavailable = errors.New("record store unavailable")
	ErrNotFound    = errors.New("record not found")
	ErrInvalid     = errors.New("request rejected by record store")
	ErrMalformed   = errors.New("malformed record store response")
)

// Gateway is the record store as seen by the board. List filters server side
// on the structured criteria only; results are newest first and capped.
type Gateway interface {
	List(ctx context.Context, spec filter.Spec) ([]*entities.PendenciaWithDetails, error)
	Update(ctx context.Context, id int64, patch entities.PendenciaPatch) (*entities.Pendencia, error)
	Create(ctx context.Context, draft entities.PendenciaDraft) (*entities.Pendencia, error)
}

// Fallback supplies records to show while the store cannot be reached
type Fallback interface {
	Pendencias() []*entities.PendenciaWithDetails
}
