package entities

import (
	"time"

	"github.com/bebel/pendencias/pkg/optional"
)

// Schema is the PostgreSQL schema that holds every clinic table
const Schema = "bebel"

// PendenciaStatus is the durable business status of a pendência
type PendenciaStatus string

const (
	StatusFlagged   PendenciaStatus = "SINALIZADA"
	StatusResolved  PendenciaStatus = "RESOLVIDA"
	StatusDismissed PendenciaStatus = "IGNORADA"
)

// IsValid checks if the status is one of the known business states
func (s PendenciaStatus) IsValid() bool {
	switch s {
	case StatusFlagged, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

// KanbanColumn is the derived board column of a pendência
type KanbanColumn string

const (
	ColumnTodo  KanbanColumn = "A_FAZER"
	ColumnDoing KanbanColumn = "FAZENDO"
	ColumnDone  KanbanColumn = "FEITO"
)

// Columns lists the board columns in display order
var Columns = []KanbanColumn{ColumnTodo, ColumnDoing, ColumnDone}

// IsValid checks if the column is one of the board columns
func (c KanbanColumn) IsValid() bool {
	switch c {
	case ColumnTodo, ColumnDoing, ColumnDone:
		return true
	}
	return false
}

// Known pendência types. The set is open-ended; unknown values are kept as-is.
const (
	TipoAgendar      = "AGENDAR"
	TipoPagamento    = "PAGAMENTO"
	TipoOrcamento    = "ORCAMENTO"
	TipoCancelamento = "CANCELAMENTO"
	TipoInformacao   = "INFORMACAO"
)

// Priority bounds
const (
	PriorityMin     = 1
	PriorityMax     = 5
	PriorityDefault = 3
)

// Pendencia is a flagged follow-up item derived from a conversation
type Pendencia struct {
	ID               int64           `gorm:"column:id_pendencia_sinalizada;primaryKey;autoIncrement" json:"id_pendencia_sinalizada"`
	IDConversa       int64           `gorm:"column:id_conversa;not null;index" json:"id_conversa"`
	IDMensagemOrigem *int64          `gorm:"column:id_mensagem_origem" json:"id_mensagem_origem"`
	Tipo             string          `gorm:"column:tipo;type:varchar(50);not null" json:"tipo"`
	Descricao        *string         `gorm:"column:descricao;type:text" json:"descricao"`
	Prioridade       int             `gorm:"column:prioridade;not null;default:3" json:"prioridade"`
	SLAAt            *time.Time      `gorm:"column:sla_at" json:"sla_at"`
	Status           PendenciaStatus `gorm:"column:status;type:varchar(20);not null;default:'SINALIZADA'" json:"status"`
	DetectedAt       time.Time       `gorm:"column:detected_at;not null" json:"detected_at"`
	ResolvedAt       *time.Time      `gorm:"column:resolved_at" json:"resolved_at"`
	ResolutionNote   *string         `gorm:"column:resolution_note;type:text" json:"resolution_note"`
	IDResponsavel    *int64          `gorm:"column:id_responsavel" json:"id_responsavel"`
}

// TableName specifies the table name for Pendencia
func (Pendencia) TableName() string {
	return Schema + ".pendencia_sinalizada"
}

// IsOverdue reports whether the SLA deadline has passed at the given instant
func (p *Pendencia) IsOverdue(now time.Time) bool {
	return p.SLAAt != nil && now.After(*p.SLAAt)
}

// DescricaoOrEmpty returns the description or "" when absent
func (p *Pendencia) DescricaoOrEmpty() string {
	if p.Descricao == nil {
		return ""
	}
	return *p.Descricao
}

// PendenciaWithDetails is the read model served to the board
type PendenciaWithDetails struct {
	Pendencia
	KanbanStatus KanbanColumn     `json:"kanban_status"`
	Responsavel  *ProfissionalRef `json:"responsavel"`
	Pessoa       *Pessoa          `json:"pessoa"`
	Conversa     *Conversa        `json:"conversa"`
}

// Clone returns a deep copy so snapshots never alias each other
func (p *PendenciaWithDetails) Clone() *PendenciaWithDetails {
	if p == nil {
		return nil
	}
	c := *p
	c.IDMensagemOrigem = clonePtr(p.IDMensagemOrigem)
	c.Descricao = clonePtr(p.Descricao)
	c.SLAAt = clonePtr(p.SLAAt)
	c.ResolvedAt = clonePtr(p.ResolvedAt)
	c.ResolutionNote = clonePtr(p.ResolutionNote)
	c.IDResponsavel = clonePtr(p.IDResponsavel)
	if p.Responsavel != nil {
		r := *p.Responsavel
		r.Especialidade = clonePtr(p.Responsavel.Especialidade)
		c.Responsavel = &r
	}
	if p.Pessoa != nil {
		pe := *p.Pessoa
		pe.NomeCompleto = clonePtr(p.Pessoa.NomeCompleto)
		c.Pessoa = &pe
	}
	if p.Conversa != nil {
		co := *p.Conversa
		co.ResumoConversa = clonePtr(p.Conversa.ResumoConversa)
		c.Conversa = &co
	}
	return &c
}

// PessoaNome returns the person's display name or ""
func (p *PendenciaWithDetails) PessoaNome() string {
	if p == nil || p.Pessoa == nil || p.Pessoa.NomeCompleto == nil {
		return ""
	}
	return *p.Pessoa.NomeCompleto
}

// PendenciaPatch is a partial update. Only set fields are modified.
type PendenciaPatch struct {
	Status         *PendenciaStatus
	Descricao      optional.Value[string]
	Prioridade     *int
	IDResponsavel  optional.Value[int64]
	ResolutionNote optional.Value[string]
}

// IsEmpty reports whether the patch carries no field at all
func (p PendenciaPatch) IsEmpty() bool {
	return p.Status == nil && !p.Descricao.Set && p.Prioridade == nil &&
		!p.IDResponsavel.Set && !p.ResolutionNote.Set
}

// Without returns p minus every field newer also sets
func (p PendenciaPatch) Without(newer PendenciaPatch) PendenciaPatch {
	if newer.Status != nil {
		p.Status = nil
	}
	if newer.Descricao.Set {
		p.Descricao = optional.Value[string]{}
	}
	if newer.Prioridade != nil {
		p.Prioridade = nil
	}
	if newer.IDResponsavel.Set {
		p.IDResponsavel = optional.Value[int64]{}
	}
	if newer.ResolutionNote.Set {
		p.ResolutionNote = optional.Value[string]{}
	}
	return p
}

// PendenciaDraft carries the fields supplied when creating a pendência
type PendenciaDraft struct {
	IDConversa       *int64
	IDMensagemOrigem *int64
	Tipo             *string
	Descricao        *string
	Prioridade       *int
	SLAAt            *time.Time
	Status           *PendenciaStatus
	IDResponsavel    *int64
	ResolutionNote   *string
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
