package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bebel/pendencias/internal/domain/entities"
)

// Kind classifies a failure surfaced to the user
type Kind string

const (
	KindStoreUnavailable Kind = "store_unavailable"
	KindNotFound         Kind = "not_found"
	KindValidation       Kind = "validation"
	KindMalformed        Kind = "malformed_response"
)

// Op is the board operation that failed
type Op string

const (
	OpRefresh Op = "refresh"
	OpUpdate  Op = "update"
	OpCreate  Op = "create"
)

// Notice is a user-visible failure. Store-unavailable notices can be retried.
type Notice struct {
	ID       uuid.UUID
	Kind     Kind
	Op       Op
	RecordID int64
	Message  string
	Err      error
	At       time.Time

	patch entities.PendenciaPatch
	draft *entities.PendenciaDraft
}

// Retryable reports whether Retry may re-issue the failed operation
func (n *Notice) Retryable() bool {
	return n != nil && n.Kind == KindStoreUnavailable
}

func (n *Notice) String() string {
	if n.RecordID != 0 {
		return fmt.Sprintf("%s (#%d): %s", n.Message, n.RecordID, n.Kind)
	}
	return fmt.Sprintf("%s: %s", n.Message, n.Kind)
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalid):
		return KindValidation
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	default:
		return KindStoreUnavailable
	}
}

func (c *Controller) notice(kind Kind, op Op, id int64, err error) *Notice {
	n := &Notice{
		ID:       uuid.New(),
		Kind:     kind,
		Op:       op,
		RecordID: id,
		Message:  messages[op],
		Err:      err,
		At:       c.now(),
	}
	if kind == KindValidation && err != nil && op != OpRefresh {
		n.Message = err.Error()
	}
	return n
}

var messages = map[Op]string{
	OpRefresh: "Erro ao buscar pendências",
	OpUpdate:  "Erro ao atualizar pendência",
	OpCreate:  "Erro ao criar pendência",
}

// publish hands n to the notice stream without blocking the caller
func (c *Controller) publish(n *Notice) *Notice {
	if n == nil {
		return nil
	}
	select {
	case c.notices <- n:
	default:
		c.logger.Warn("board.notice.dropped", zapNotice(n)...)
	}
	return n
}

// Retry re-issues the operation behind a retryable notice. Non-retryable
// notices are returned unchanged.
func (c *Controller) Retry(ctx context.Context, n *Notice) *Notice {
	if !n.Retryable() {
		return n
	}
	switch n.Op {
	case OpUpdate:
		return c.Edit(ctx, n.RecordID, n.patch)
	case OpCreate:
		if n.draft == nil {
			return nil
		}
		_, out := c.Create(ctx, *n.draft)
		return out
	default:
		return c.Refresh(ctx)
	}
}
