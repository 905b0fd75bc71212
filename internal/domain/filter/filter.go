// Package filter decides whether a board record matches the user's filters.
package filter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bebel/pendencias/internal/domain/entities"
)

// AssigneeMode selects how the assignee criterion is evaluated
type AssigneeMode int

const (
	AssigneeAll AssigneeMode = iota
	AssigneeNone
	AssigneeID
)

// Assignee is the normalized assignee criterion
type Assignee struct {
	Mode AssigneeMode
	ID   int64
}

// String renders the criterion in its wire form ("", "none" or the id)
func (a Assignee) String() string {
	switch a.Mode {
	case AssigneeNone:
		return "none"
	case AssigneeID:
		return strconv.FormatInt(a.ID, 10)
	default:
		return ""
	}
}

// ParseAssignee accepts "", "all", "none" or a numeric id
func ParseAssignee(raw string) (Assignee, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "all":
		return Assignee{Mode: AssigneeAll}, nil
	case "none":
		return Assignee{Mode: AssigneeNone}, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Assignee{}, fmt.Errorf("%w: %q", entities.ErrInvalidAssignee, raw)
	}
	return Assignee{Mode: AssigneeID, ID: id}, nil
}

// NormalizeID converts the representations an assignee id arrives in
// (number, numeric string, json.Number) to a single int64.
func NormalizeID(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case *int64:
		if x == nil {
			return 0, false
		}
		return *x, true
	case float64:
		if x != float64(int64(x)) {
			return 0, false
		}
		return int64(x), true
	case json.Number:
		if id, err := x.Int64(); err == nil {
			return id, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return NormalizeID(f)
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

// Spec is an immutable set of AND-combined criteria. Zero values disable a
// criterion.
type Spec struct {
	Status      *entities.PendenciaStatus
	Tipo        string
	Prioridade  *int
	Responsavel Assignee
	Search      string
}

// ParseSpec builds a Spec from wire parameters, validating each criterion.
func ParseSpec(status, tipo, prioridade, responsavel, search string) (Spec, error) {
	var s Spec
	if status = strings.TrimSpace(status); status != "" && !strings.EqualFold(status, "all") {
		st := entities.PendenciaStatus(strings.ToUpper(status))
		if !st.IsValid() {
			return Spec{}, fmt.Errorf("%w: %q", entities.ErrInvalidStatus, status)
		}
		s.Status = &st
	}
	if tipo = strings.TrimSpace(tipo); tipo != "" && !strings.EqualFold(tipo, "all") {
		s.Tipo = tipo
	}
	if prioridade = strings.TrimSpace(prioridade); prioridade != "" && !strings.EqualFold(prioridade, "all") {
		p, err := strconv.Atoi(prioridade)
		if err != nil || p < entities.PriorityMin || p > entities.PriorityMax {
			return Spec{}, fmt.Errorf("%w: %q", entities.ErrInvalidPriority, prioridade)
		}
		s.Prioridade = &p
	}
	a, err := ParseAssignee(responsavel)
	if err != nil {
		return Spec{}, err
	}
	s.Responsavel = a
	s.Search = strings.TrimSpace(search)
	return s, nil
}

// Structured returns the spec without the free-text criterion, i.e. the part
// the server evaluates authoritatively.
func (s Spec) Structured() Spec {
	s.Search = ""
	return s
}

// Query renders the structured criteria as request parameters
func (s Spec) Query() url.Values {
	q := url.Values{}
	if s.Status != nil {
		q.Set("status", string(*s.Status))
	}
	if s.Tipo != "" {
		q.Set("tipo", s.Tipo)
	}
	if s.Prioridade != nil {
		q.Set("prioridade", strconv.Itoa(*s.Prioridade))
	}
	if v := s.Responsavel.String(); v != "" {
		q.Set("responsavel", v)
	}
	return q
}

// Key is a stable textual form of the spec, usable as a cache key
func (s Spec) Key() string {
	q := s.Query()
	if s.Search != "" {
		q.Set("q", strings.ToLower(s.Search))
	}
	return q.Encode()
}

// Matches reports whether p passes every criterion. A nil record never matches.
func (s Spec) Matches(p *entities.PendenciaWithDetails) bool {
	if p == nil {
		return false
	}
	if s.Status != nil && p.Status != *s.Status {
		return false
	}
	if s.Tipo != "" && p.Tipo != s.Tipo {
		return false
	}
	if s.Prioridade != nil && p.Prioridade != *s.Prioridade {
		return false
	}
	switch s.Responsavel.Mode {
	case AssigneeNone:
		if p.IDResponsavel != nil {
			return false
		}
	case AssigneeID:
		id, ok := NormalizeID(p.IDResponsavel)
		if !ok || id != s.Responsavel.ID {
			return false
		}
	}
	if s.Search != "" && !matchesSearch(p, s.Search) {
		return false
	}
	return true
}

// Apply returns the records that match s, preserving order
func (s Spec) Apply(records []*entities.PendenciaWithDetails) []*entities.PendenciaWithDetails {
	out := make([]*entities.PendenciaWithDetails, 0, len(records))
	for _, r := range records {
		if s.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// matchesSearch is a case-insensitive substring match on the description,
// the id and the person's name. Missing fields count as empty strings.
func matchesSearch(p *entities.PendenciaWithDetails, term string) bool {
	needle := strings.ToLower(term)
	fields := []string{
		p.DescricaoOrEmpty(),
		strconv.FormatInt(p.ID, 10),
		p.PessoaNome(),
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
