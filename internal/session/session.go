// Package session is the application context that sits between a
// presentation layer (HTTP API, CLI) and the record store.
//
// It owns the two pieces of interaction state that span more than one
// user action:
//
//   - the edit selection: which position the form is currently editing,
//     if any. Submit adds a new record when nothing is selected and
//     updates the selected record otherwise. The selection remembers the
//     record's reg, and Submit refuses to write if another record has
//     since moved into that position.
//
//   - the delete confirmation, a two-state machine:
//
//     Idle ──RequestDelete(p)──▶ Pending(p)
//     Pending(p) ──ConfirmDelete──▶ Idle, record p removed
//     Pending(p) ──CancelDelete───▶ Idle
//
// Both hold positions, and positions shift when a record is removed, so
// the session adjusts them after every remove it performs.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/google/uuid"
)

// ErrNoPendingDeletion is returned by ConfirmDelete when there is no
// pending request, or the token does not match the pending one.
var ErrNoPendingDeletion = errors.New("no pending deletion")

// Pending describes a delete request awaiting confirmation.
type Pending struct {
	Token    string        `json:"token"`
	Position int           `json:"position"`
	Student  types.Student `json:"student"`
	Prompt   string        `json:"prompt"`
}

// Outcome reports what Submit did.
type Outcome struct {
	Position int           `json:"position"`
	Updated  bool          `json:"updated"`
	Student  types.Student `json:"student"`
}

// Message is a short confirmation suitable for showing to the user.
func (o Outcome) Message() string {
	if o.Updated {
		return fmt.Sprintf("Student %s updated successfully!", o.Student.Name)
	}
	return fmt.Sprintf("Student %s added successfully!", o.Student.Name)
}

// Session is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	store   *records.Store
	editing int
	editReg string // reg of the record at editing when it was selected
	pending *Pending
	log     *slog.Logger
}

// New returns an idle session over store.
func New(store *records.Store, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		store:   store,
		editing: records.NoPosition,
		log:     log,
	}
}

// Store exposes the underlying store for read-only views and direct
// position-addressed calls.
func (s *Session) Store() *records.Store {
	return s.store
}

// ── Edit selection ──────────────────────────────────────────────────────

// BeginEdit selects position for editing and returns the record so the
// caller can prefill its form.
func (s *Session) BeginEdit(position int) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.store.Get(position)
	if err != nil {
		return types.Student{}, err
	}

	s.editing, s.editReg = position, st.Reg
	s.log.Debug("edit started", slog.Int("position", position))
	return st, nil
}

// CancelEdit clears the edit selection.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = records.NoPosition
}

// Editing returns the selected position, if any.
func (s *Session) Editing() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing, s.editing != records.NoPosition
}

// Submit saves form input: a new record when idle, an update of the
// selected record when editing. The selection is cleared on success and
// kept on failure so the user can correct the form. If the selected
// record is no longer at its position, the selection is dropped and
// records.ErrNotFound is returned.
func (s *Session) Submit(ctx context.Context, sub types.Submission) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing == records.NoPosition {
		pos, st, err := s.store.Add(ctx, sub)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Position: pos, Student: st}, nil
	}

	pos := s.editing
	current, err := s.store.Get(pos)
	if err != nil || !strings.EqualFold(current.Reg, s.editReg) {
		s.editing = records.NoPosition
		return Outcome{}, fmt.Errorf("%w: %q is no longer at position %d",
			records.ErrNotFound, s.editReg, pos)
	}

	st, err := s.store.Update(ctx, pos, sub)
	if err != nil {
		return Outcome{}, err
	}
	s.editing = records.NoPosition

	return Outcome{Position: pos, Updated: true, Student: st}, nil
}

// ── Delete confirmation ─────────────────────────────────────────────────

// RequestDelete moves the machine to Pending(position). A request made
// while another is pending replaces it.
func (s *Session) RequestDelete(position int) (Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.store.Get(position)
	if err != nil {
		return Pending{}, err
	}

	p := Pending{
		Token:    uuid.NewString(),
		Position: position,
		Student:  st,
		Prompt: fmt.Sprintf("Are you sure you want to permanently delete the record for %s (%s)?",
			st.Name, st.Reg),
	}
	s.pending = &p

	s.log.Debug("deletion requested",
		slog.Int("position", position),
		slog.String("token", p.Token))
	return p, nil
}

// PendingDelete returns the pending request, if any.
func (s *Session) PendingDelete() (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Pending{}, false
	}
	return *s.pending, true
}

// ConfirmDelete removes the pending record and returns the machine to
// Idle. token must match the pending request. If the record at the
// pending position is no longer the one the user was asked about, the
// request is dropped and records.ErrNotFound is returned.
func (s *Session) ConfirmDelete(ctx context.Context, token string) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil || s.pending.Token != token {
		return types.Student{}, ErrNoPendingDeletion
	}
	p := *s.pending

	current, err := s.store.Get(p.Position)
	if err != nil || !strings.EqualFold(current.Reg, p.Student.Reg) {
		s.pending = nil
		return types.Student{}, fmt.Errorf("%w: %q is no longer at position %d",
			records.ErrNotFound, p.Student.Reg, p.Position)
	}

	removed, err := s.store.Remove(ctx, p.Position)
	if err != nil {
		// The record is still there; keep the request so the user can retry.
		return types.Student{}, err
	}
	s.pending = nil
	s.afterRemove(p.Position)

	s.log.Info("deletion confirmed", slog.String("reg", removed.Reg))
	return removed, nil
}

// CancelDelete returns the machine to Idle without removing anything.
func (s *Session) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// afterRemove keeps the edit selection pointing at the same record once
// position has been removed. Callers hold s.mu.
func (s *Session) afterRemove(position int) {
	switch {
	case s.editing == position:
		s.editing = records.NoPosition
	case s.editing > position:
		s.editing--
	}
}
