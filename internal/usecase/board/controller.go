// Package board keeps the client-side working copy of the pendência board in
// sync with the record store: optimistic edits, rollback to the last
// confirmed state, periodic refresh and a degraded mode on store failure.
package board

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/filter"
	"github.com/bebel/pendencias/internal/domain/kanban"
)

// Config tunes the controller
type Config struct {
	RefreshInterval   time.Duration
	RetryMaxElapsed   time.Duration
	DefaultConversaID int64
	NoticeBuffer      int
}

// Column is one board column in display order
type Column struct {
	Column entities.KanbanColumn
	Title  string
	Cards  []*entities.PendenciaWithDetails
}

// Snapshot is an immutable copy of the board as the user sees it
type Snapshot struct {
	Columns     []Column
	Total       int
	Filter      filter.Spec
	Degraded    bool
	RefreshedAt time.Time
}

// edit is a local mutation not yet answered by the store
type edit struct {
	seq   uint64
	patch entities.PendenciaPatch
	at    time.Time
}

// entry tracks one record. base is the last state the store confirmed; the
// visible record is base with every pending edit applied in issue order, so
// dropping a failed edit rolls back to the last known good state without
// touching edits issued before or after it. Fields written by a confirmed
// edit are removed from the older pending ones.
type entry struct {
	base    *entities.PendenciaWithDetails
	baseSeq uint64
	pending []edit
	// touched is the sequence number of the latest store answer folded into
	// base; a refresh started earlier must not overwrite it.
	touched uint64
}

func (e *entry) view(resolve func(int64) *entities.ProfissionalRef) *entities.PendenciaWithDetails {
	out := e.base.Clone()
	for _, ed := range e.pending {
		if ed.patch.IsEmpty() {
			continue
		}
		out = kanban.ApplyDetails(out, ed.patch, ed.at, resolve)
	}
	return out
}

// supersede strips from every pending edit older than seq the fields the
// confirmed patch wrote, so a newer confirmed value is never shadowed.
func (e *entry) supersede(seq uint64, confirmed entities.PendenciaPatch) {
	for i := range e.pending {
		if e.pending[i].seq < seq {
			e.pending[i].patch = e.pending[i].patch.Without(confirmed)
		}
	}
}

func (e *entry) find(seq uint64) (edit, bool) {
	for _, ed := range e.pending {
		if ed.seq == seq {
			return ed, true
		}
	}
	return edit{}, false
}

func (e *entry) drop(seq uint64) {
	for i, ed := range e.pending {
		if ed.seq == seq {
			e.pending = append(e.pending[:i:i], e.pending[i+1:]...)
			return
		}
	}
}

// Controller owns the board snapshot. All methods are safe for concurrent use.
type Controller struct {
	gateway  Gateway
	fallback Fallback
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time

	mu          sync.Mutex
	seq         uint64
	entries     map[int64]*entry
	temps       map[int64]*entities.PendenciaWithDetails
	roster      map[int64]entities.ProfissionalRef
	spec        filter.Spec
	degraded    bool
	refreshedAt time.Time

	refreshMu sync.Mutex
	notices   chan *Notice
	changes   chan struct{}
	trigger   chan struct{}
}

// NewController creates a board controller. fallback may be nil.
func NewController(gateway Gateway, fallback Fallback, cfg Config, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 30 * time.Second
	}
	if cfg.DefaultConversaID == 0 {
		cfg.DefaultConversaID = 1
	}
	if cfg.NoticeBuffer <= 0 {
		cfg.NoticeBuffer = 16
	}
	return &Controller{
		gateway:  gateway,
		fallback: fallback,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		entries:  make(map[int64]*entry),
		temps:    make(map[int64]*entities.PendenciaWithDetails),
		roster:   make(map[int64]entities.ProfissionalRef),
		notices:  make(chan *Notice, cfg.NoticeBuffer),
		changes:  make(chan struct{}, 1),
		trigger:  make(chan struct{}, 1),
	}
}

// Notices streams user-visible failures
func (c *Controller) Notices() <-chan *Notice { return c.notices }

// Changes receives a signal whenever the snapshot changed. Signals coalesce.
func (c *Controller) Changes() <-chan struct{} { return c.changes }

// Degraded reports whether the board is showing fallback records
func (c *Controller) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

// SetRoster registers the professionals used to fill assignee details on
// optimistic edits.
func (c *Controller) SetRoster(profs []entities.Profissional) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roster = make(map[int64]entities.ProfissionalRef, len(profs))
	for _, p := range profs {
		c.roster[p.ID] = entities.ProfissionalRef{ID: p.ID, NomeCompleto: p.NomeCompleto, Especialidade: p.Especialidade}
	}
}

// Filter returns the active filter
func (c *Controller) Filter() filter.Spec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec
}

// SetFilter replaces the filter. Only a change of the structured criteria
// triggers a fetch; free-text search is evaluated locally.
func (c *Controller) SetFilter(ctx context.Context, spec filter.Spec) *Notice {
	c.mu.Lock()
	prev := c.spec
	c.spec = spec
	c.mu.Unlock()

	if prev.Structured().Key() != spec.Structured().Key() {
		return c.Refresh(ctx)
	}
	c.changed()
	return nil
}

// Board returns the filtered records grouped by column, newest first
func (c *Controller) Board() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	all := make([]*entities.PendenciaWithDetails, 0, len(c.entries)+len(c.temps))
	for _, e := range c.entries {
		all = append(all, e.view(c.resolveLocked))
	}
	for _, t := range c.temps {
		all = append(all, t.Clone())
	}
	visible := c.spec.Apply(all)
	sort.SliceStable(visible, func(i, j int) bool {
		if !visible[i].DetectedAt.Equal(visible[j].DetectedAt) {
			return visible[i].DetectedAt.After(visible[j].DetectedAt)
		}
		return visible[i].ID > visible[j].ID
	})

	snap := Snapshot{
		Columns:     make([]Column, 0, len(entities.Columns)),
		Total:       len(visible),
		Filter:      c.spec,
		Degraded:    c.degraded,
		RefreshedAt: c.refreshedAt,
	}
	for _, col := range entities.Columns {
		cards := make([]*entities.PendenciaWithDetails, 0)
		for _, r := range visible {
			if r.KanbanStatus == col {
				cards = append(cards, r)
			}
		}
		snap.Columns = append(snap.Columns, Column{Column: col, Title: kanban.ColumnTitle(col), Cards: cards})
	}
	return snap
}

// Record returns the visible state of one record
func (c *Controller) Record(id int64) (*entities.PendenciaWithDetails, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		return e.view(c.resolveLocked), true
	}
	if t, ok := c.temps[id]; ok {
		return t.Clone(), true
	}
	return nil, false
}

// Move drops a card on column. A drop on FEITO always resolves.
func (c *Controller) Move(ctx context.Context, id int64, column entities.KanbanColumn) *Notice {
	patch, err := kanban.MovePatch(column)
	if err != nil {
		return c.publish(c.notice(KindValidation, OpUpdate, id, err))
	}
	return c.Edit(ctx, id, patch)
}

// Edit applies patch locally, sends it to the store and blocks until the
// store answers. On failure the edit is withdrawn and a notice is returned;
// edits issued before or after it are kept.
func (c *Controller) Edit(ctx context.Context, id int64, patch entities.PendenciaPatch) *Notice {
	if err := validatePatch(id, patch); err != nil {
		return c.publish(c.notice(KindValidation, OpUpdate, id, err))
	}

	c.mu.Lock()
	if _, ok := c.temps[id]; ok {
		c.mu.Unlock()
		return c.publish(c.notice(KindValidation, OpUpdate, id, errors.New("pendência ainda não foi salva")))
	}
	seq := c.nextSeqLocked()
	e, known := c.entries[id]
	if known {
		e.pending = append(e.pending, edit{seq: seq, patch: patch, at: c.now()})
	}
	c.mu.Unlock()
	if known {
		c.changed()
	}

	updated, err := c.gateway.Update(ctx, id, patch)

	c.mu.Lock()
	e, known = c.entries[id]
	if known {
		own, _ := e.find(seq)
		e.drop(seq)
		switch {
		case err != nil:
		case seq > e.baseSeq:
			e.base = c.confirmedLocked(e.base, updated)
			e.baseSeq = seq
			e.touched = c.nextSeqLocked()
			e.supersede(seq, patch)
		case !own.patch.IsEmpty():
			// a newer edit was confirmed first; keep only the fields it did not write
			e.base = kanban.ApplyDetails(e.base, own.patch, own.at, c.resolveLocked)
			e.touched = c.nextSeqLocked()
		}
	}
	c.mu.Unlock()
	c.changed()

	if err != nil {
		kind := classify(err)
		c.logger.Warn("board.edit.reverted",
			zap.Int64("id", id),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		if kind == KindMalformed {
			// the store may have applied the edit
			c.Trigger()
		}
		n := c.notice(kind, OpUpdate, id, err)
		n.patch = patch
		return c.publish(n)
	}
	return nil
}

// Create shows a record under a temporary id right away and replaces it with
// the stored one once the store assigns the real id. On failure the temporary
// record is removed.
func (c *Controller) Create(ctx context.Context, draft entities.PendenciaDraft) (*entities.PendenciaWithDetails, *Notice) {
	if draft.Status != nil && !draft.Status.IsValid() {
		n := c.notice(KindValidation, OpCreate, 0, fmt.Errorf("%w: %q", entities.ErrInvalidStatus, *draft.Status))
		return nil, c.publish(n)
	}

	c.mu.Lock()
	tempID := c.maxIDLocked() + 1
	temp := c.detailsLocked(kanban.FromDraft(draft, c.cfg.DefaultConversaID, c.now()))
	temp.ID = tempID
	c.temps[tempID] = temp
	c.mu.Unlock()
	c.changed()

	created, err := c.gateway.Create(ctx, draft)

	c.mu.Lock()
	delete(c.temps, tempID)
	var out *entities.PendenciaWithDetails
	if err == nil {
		out = c.detailsLocked(created)
		c.entries[created.ID] = &entry{base: out, touched: c.nextSeqLocked()}
		out = out.Clone()
	}
	c.mu.Unlock()
	c.changed()

	if err != nil {
		kind := classify(err)
		c.logger.Warn("board.create.reverted", zap.Int64("temp_id", tempID), zap.Error(err))
		n := c.notice(kind, OpCreate, 0, err)
		d := draft
		n.draft = &d
		return nil, c.publish(n)
	}
	c.logger.Debug("board.create.confirmed", zap.Int64("temp_id", tempID), zap.Int64("id", created.ID))
	return out, nil
}

// Refresh re-fetches the filtered list, retrying transient failures with
// exponential backoff. Records with edits in flight keep their local state,
// and records confirmed after the fetch started are not overwritten.
func (c *Controller) Refresh(ctx context.Context) *Notice {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.Lock()
	startSeq := c.seq
	spec := c.spec.Structured()
	c.mu.Unlock()

	var records []*entities.PendenciaWithDetails
	fetch := func() error {
		var err error
		records, err = c.gateway.List(ctx, spec)
		if err != nil && classify(err) != KindStoreUnavailable {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(fetch, backoff.WithContext(c.backoff(), ctx))
	var notice *Notice
	switch {
	case err == nil:
	case classify(err) == KindMalformed:
		c.logger.Warn("board.refresh.malformed", zap.Error(err))
		records = nil
		notice = c.notice(KindMalformed, OpRefresh, 0, err)
	default:
		c.logger.Error("board.refresh.failed", zap.Error(err))
		c.enterDegraded()
		return c.publish(c.notice(classify(err), OpRefresh, 0, err))
	}

	c.mu.Lock()
	c.mergeLocked(records, startSeq)
	c.degraded = false
	c.refreshedAt = c.now()
	c.mu.Unlock()
	c.changed()

	return c.publish(notice)
}

// Trigger asks Run for an immediate refresh, e.g. on focus or reconnect
func (c *Controller) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes once, then on every interval tick and trigger until ctx ends
func (c *Controller) Run(ctx context.Context) error {
	c.Refresh(ctx)

	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Refresh(ctx)
		case <-c.trigger:
			c.Refresh(ctx)
		}
	}
}

func (c *Controller) backoff() backoff.BackOff {
	if c.cfg.RetryMaxElapsed <= 0 {
		return &backoff.StopBackOff{}
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = c.cfg.RetryMaxElapsed
	return bo
}

// enterDegraded swaps in the fallback records when nothing has been loaded
func (c *Controller) enterDegraded() {
	if c.fallback == nil {
		return
	}
	c.mu.Lock()
	if len(c.entries) > 0 && !c.degraded {
		c.mu.Unlock()
		return
	}
	for _, r := range c.fallback.Pendencias() {
		if r == nil {
			continue
		}
		rec := r.Clone()
		kanban.Decorate(rec)
		if _, ok := c.entries[rec.ID]; !ok {
			c.entries[rec.ID] = &entry{base: rec}
		}
	}
	c.degraded = true
	c.mu.Unlock()
	c.logger.Warn("board.degraded")
	c.changed()
}

func (c *Controller) mergeLocked(records []*entities.PendenciaWithDetails, startSeq uint64) {
	seen := make(map[int64]bool, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		rec := r.Clone()
		kanban.Decorate(rec)
		seen[rec.ID] = true

		e, ok := c.entries[rec.ID]
		if !ok {
			c.entries[rec.ID] = &entry{base: rec}
			continue
		}
		if e.touched > startSeq {
			continue
		}
		e.base = rec
	}
	for id, e := range c.entries {
		if seen[id] || len(e.pending) > 0 || e.touched > startSeq {
			continue
		}
		delete(c.entries, id)
	}
}

// confirmedLocked folds the store's answer into the previous details
func (c *Controller) confirmedLocked(prev *entities.PendenciaWithDetails, p *entities.Pendencia) *entities.PendenciaWithDetails {
	if p == nil {
		return prev
	}
	out := prev.Clone()
	out.Pendencia = *p
	kanban.Decorate(out)
	switch {
	case out.IDResponsavel == nil:
		out.Responsavel = nil
	case prev.Responsavel == nil || prev.Responsavel.ID != *out.IDResponsavel:
		out.Responsavel = c.resolveLocked(*out.IDResponsavel)
	}
	return out.Clone()
}

// detailsLocked builds board details for a record the store just created
func (c *Controller) detailsLocked(p *entities.Pendencia) *entities.PendenciaWithDetails {
	d := &entities.PendenciaWithDetails{Pendencia: *p}
	kanban.Decorate(d)
	d.Pessoa = entities.PlaceholderPessoa()
	d.Conversa = entities.PlaceholderConversa(p.IDConversa, 0, p.DetectedAt)
	if p.IDResponsavel != nil {
		d.Responsavel = c.resolveLocked(*p.IDResponsavel)
	}
	return d.Clone()
}

func (c *Controller) resolveLocked(id int64) *entities.ProfissionalRef {
	if r, ok := c.roster[id]; ok {
		return &r
	}
	return &entities.ProfissionalRef{ID: id, NomeCompleto: entities.PlaceholderResponsavelNome}
}

func (c *Controller) maxIDLocked() int64 {
	var top int64
	for id := range c.entries {
		if id > top {
			top = id
		}
	}
	for id := range c.temps {
		if id > top {
			top = id
		}
	}
	return top
}

func (c *Controller) nextSeqLocked() uint64 {
	c.seq++
	return c.seq
}

func (c *Controller) changed() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

func validatePatch(id int64, patch entities.PendenciaPatch) error {
	switch {
	case id <= 0:
		return errors.New("id da pendência é obrigatório")
	case patch.IsEmpty():
		return errors.New("nenhum campo para atualizar")
	case patch.Status != nil && !patch.Status.IsValid():
		return fmt.Errorf("%w: %q", entities.ErrInvalidStatus, *patch.Status)
	}
	return nil
}

func zapNotice(n *Notice) []zap.Field {
	return []zap.Field{
		zap.String("notice_id", n.ID.String()),
		zap.String("kind", string(n.Kind)),
		zap.String("op", string(n.Op)),
		zap.Int64("id", n.RecordID),
		zap.Error(n.Err),
	}
}
