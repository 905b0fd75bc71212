package pendencia

import (
	"context"
	"time"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/filter"
)

// Service defines the interface for the pendência use case
type Service interface {
	// List returns the board records matching spec, newest detection first.
	// Structured criteria and the free-text term are both applied server side.
	List(ctx context.Context, spec filter.Spec) ([]*entities.PendenciaWithDetails, error)

	// Update applies a partial update and returns the stored record
	Update(ctx context.Context, id int64, patch entities.PendenciaPatch) (*entities.Pendencia, error)

	// Create inserts a pendência, filling defaults for absent fields
	Create(ctx context.Context, draft entities.PendenciaDraft) (*entities.Pendencia, error)
}

// Cache is the key/value store used for list results. Implementations must
// be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Config holds the tunables of PendenciaService
type Config struct {
	// DefaultConversaID is used on create when no conversation is supplied
	DefaultConversaID int64
	// ListLimit caps list results
	ListLimit int
	// CacheTTL is how long a list result is served from cache; 0 disables it
	CacheTTL time.Duration
}

// Ensure PendenciaService implements Service interface
var _ Service = (*PendenciaService)(nil)
