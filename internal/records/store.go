// Package records implements the record store: the ordered sequence of
// student records, the registration-number uniqueness rule, the search
// view, and write-through persistence to a durable slot.
//
// POSITIONS
// ─────────
// Records have no identifier besides their registration number. Callers
// address them by position: the index in the sequence at the moment of
// the call. List yields each record together with its position in the
// UNFILTERED sequence, so a row picked from a filtered view can be passed
// straight to Update or Remove.
//
// Positions are not stable: Remove shifts every later record down by one.
// Anyone holding a position across a Remove (an open edit form, a pending
// delete prompt) must adjust or drop it.
//
// ATOMICITY
// ─────────
// Every mutation builds the next sequence as a fresh slice, writes it to
// the slot, and only then swaps it in. If the write fails the in-memory
// sequence is untouched, so a mutation either fully happens or not at all.
//
// The write is conditional on the slot still holding what this store last
// read or wrote. When another process got there first the store reloads
// instead of overwriting. Add then re-checks uniqueness against the fresh
// sequence and tries again; Update and Remove return ErrConflict, since
// the position they were given may now name a different record.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// NoPosition means "no record": pass it to IsDuplicateRegistration when
// nothing should be excluded from the scan.
const NoPosition = -1

// Store owns the record sequence. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	students []types.Student // replaced wholesale, never modified in place
	raw      []byte          // slot contents students was decoded from; nil if the slot is empty

	slots storage.Slots
	log   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for mutation events. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// maxAddAttempts bounds how often Add reloads and retries after losing a
// write to another process.
const maxAddAttempts = 3

// Open loads the record sequence from the "students" slot. An empty slot
// yields an empty store.
func Open(ctx context.Context, slots storage.Slots, opts ...Option) (*Store, error) {
	s := &Store{slots: slots, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx); err != nil {
		return nil, fmt.Errorf("records.Open: %w", err)
	}

	s.log.Info("records loaded", slog.Int("count", len(s.students)))
	return s, nil
}

// load replaces the in-memory sequence with the slot's contents. On error
// the store is left as it was. Callers other than Open hold s.mu.
func (s *Store) load(ctx context.Context) error {
	raw, err := s.slots.Get(ctx, storage.SlotStudents)
	switch {
	case errors.Is(err, storage.ErrSlotEmpty):
		s.students, s.raw = nil, nil
		return nil
	case err != nil:
		return fmt.Errorf("load: %w", err)
	}

	students, err := decode(raw)
	if err != nil {
		return err
	}
	s.students, s.raw = students, raw
	return nil
}

// decode parses a persisted sequence and re-checks every invariant,
// since the slot may have been written by another client.
func decode(raw []byte) ([]types.Student, error) {
	var students []types.Student
	if err := json.Unmarshal(raw, &students); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSlot, err)
	}

	for i, st := range students {
		if err := check(st); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCorruptSlot, i, err)
		}
		if strings.TrimSpace(st.Name) == "" || strings.TrimSpace(st.Reg) == "" {
			return nil, fmt.Errorf("%w: record %d: name and reg must not be blank", ErrCorruptSlot, i)
		}
		if duplicateAt(students[:i], st.Reg, NoPosition) {
			return nil, fmt.Errorf("%w: record %d: registration number %q is repeated", ErrCorruptSlot, i, st.Reg)
		}
	}

	return students, nil
}

func (s *Store) snapshot() []types.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.students
}

// List returns the records whose name or registration number contains
// filter (trimmed, case-insensitive), each paired with its position in
// the unfiltered sequence. An empty filter matches everything.
//
// The sequence is lazy and can be ranged over any number of times; each
// range sees the store as it was when that range started.
func (s *Store) List(filter string) iter.Seq2[int, types.Student] {
	needle := strings.ToLower(strings.TrimSpace(filter))

	return func(yield func(int, types.Student) bool) {
		for i, st := range s.snapshot() {
			if needle != "" && !matches(st, needle) {
				continue
			}
			if !yield(i, st) {
				return
			}
		}
	}
}

func matches(st types.Student, needle string) bool {
	return strings.Contains(strings.ToLower(st.Name), needle) ||
		strings.Contains(strings.ToLower(st.Reg), needle)
}

// Entries collects List(filter) into a slice. It never returns nil, so
// an empty result encodes as [] rather than null.
func (s *Store) Entries(filter string) []types.Entry {
	entries := make([]types.Entry, 0)
	for pos, st := range s.List(filter) {
		entries = append(entries, types.Entry{Position: pos, Student: st})
	}
	return entries
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.snapshot())
}

// Get returns the record at position.
func (s *Store) Get(position int) (types.Student, error) {
	students := s.snapshot()
	if !inRange(students, position) {
		return types.Student{}, notFound(position)
	}
	return students[position], nil
}

// IsDuplicateRegistration reports whether any record other than the one
// at exclude uses reg. Comparison ignores case and surrounding
// whitespace. Pass NoPosition when creating; pass the edited record's
// position when updating, so a record never collides with itself.
func (s *Store) IsDuplicateRegistration(reg string, exclude int) bool {
	return duplicateAt(s.snapshot(), reg, exclude)
}

func duplicateAt(students []types.Student, reg string, exclude int) bool {
	reg = strings.TrimSpace(reg)
	for i, st := range students {
		if i != exclude && strings.EqualFold(strings.TrimSpace(st.Reg), reg) {
			return true
		}
	}
	return false
}

// Add validates sub, appends it and persists. It returns the new
// record's position and the record as stored.
func (s *Store) Add(ctx context.Context, sub types.Submission) (int, types.Student, error) {
	student, err := Parse(sub)
	if err != nil {
		return NoPosition, types.Student{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; ; attempt++ {
		if duplicateAt(s.students, student.Reg, NoPosition) {
			return NoPosition, types.Student{}, duplicate(student.Reg)
		}

		next := append(slices.Clone(s.students), student)
		err := s.commit(ctx, next)
		if errors.Is(err, ErrConflict) && attempt < maxAddAttempts {
			continue
		}
		if err != nil {
			return NoPosition, types.Student{}, err
		}

		position := len(next) - 1
		s.log.Info("record added",
			slog.Int("position", position),
			slog.String("reg", student.Reg))

		return position, student, nil
	}
}

// Update validates sub and replaces the record at position with it. The
// record keeps its position. It returns the record as stored.
func (s *Store) Update(ctx context.Context, position int, sub types.Submission) (types.Student, error) {
	student, err := Parse(sub)
	if err != nil {
		return types.Student{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !inRange(s.students, position) {
		return types.Student{}, notFound(position)
	}
	if duplicateAt(s.students, student.Reg, position) {
		return types.Student{}, duplicate(student.Reg)
	}

	next := slices.Clone(s.students)
	next[position] = student
	if err := s.commit(ctx, next); err != nil {
		return types.Student{}, err
	}

	s.log.Info("record updated",
		slog.Int("position", position),
		slog.String("reg", student.Reg))

	return student, nil
}

// Remove deletes the record at position and persists. Every later
// record moves down one position. The removed record is returned so
// callers can report what was deleted.
func (s *Store) Remove(ctx context.Context, position int) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !inRange(s.students, position) {
		return types.Student{}, notFound(position)
	}

	removed := s.students[position]
	next := slices.Delete(slices.Clone(s.students), position, position+1)
	if err := s.commit(ctx, next); err != nil {
		return types.Student{}, err
	}

	s.log.Info("record removed",
		slog.Int("position", position),
		slog.String("reg", removed.Reg))

	return removed, nil
}

// commit persists next and, only if that succeeds, makes it current.
// If another process saved the slot first, the store reloads and
// ErrConflict is returned. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []types.Student) error {
	if next == nil {
		next = []types.Student{}
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("records: encode: %w", err)
	}

	err = s.slots.Swap(ctx, storage.SlotStudents, s.raw, raw)
	if errors.Is(err, storage.ErrConflict) {
		if err := s.load(ctx); err != nil {
			s.log.Error("failed to reload records", slog.String("error", err.Error()))
			return fmt.Errorf("records: reload: %w", err)
		}
		s.log.Warn("records changed by another writer, reloaded",
			slog.Int("count", len(s.students)))
		return fmt.Errorf("%w: reloaded %d record(s)", ErrConflict, len(s.students))
	}
	if err != nil {
		s.log.Error("failed to persist records", slog.String("error", err.Error()))
		return fmt.Errorf("records: persist: %w", err)
	}

	s.students, s.raw = next, raw
	return nil
}

func inRange(students []types.Student, position int) bool {
	return position >= 0 && position < len(students)
}

func notFound(position int) error {
	return fmt.Errorf("%w: no record at position %d", ErrNotFound, position)
}

func duplicate(reg string) error {
	return fmt.Errorf("%w: %q already exists", ErrDuplicateKey, reg)
}
