// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Each exported function receives the session once, at route
// registration, and returns the http.HandlerFunc the router calls on
// every request:
//
//	router.HandleFunc("POST /api/students", student.New(sess))
//
// Records are addressed by {position}: the index returned by GetList.
// Positions shift after a delete, so clients should re-list afterwards.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/session"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
// Adds a record from the JSON request body. marks may be a number or text.
//
// Request body (JSON):
//
//	{ "name": "Alice", "reg": "R1", "dept": "CS", "year": "2", "marks": 90 }
//
// Success response (201 Created):
//
//	{ "position": 0 }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	409 Conflict     — registration number already in use, or the records
//	                   were changed by another process (re-list and retry)
//	500 Internal     — storage error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		sub, ok := decodeSubmission(w, r)
		if !ok {
			return
		}

		pos, _, err := sess.Store().Add(r.Context(), sub)
		if err != nil {
			writeError(w, err)
			return
		}

		slog.Info("student created", slog.Int("position", pos))
		response.WriteJSON(w, http.StatusCreated, map[string]int{"position": pos})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students?q=<filter>
// Returns the records whose name or reg contains q (case-insensitive), or
// every record when q is empty. Each item carries its position.
//
//	[
//	  { "position": 0, "name": "Alice", "reg": "R1", ... },
//	  { "position": 2, "name": "Alicia", "reg": "R3", ... }
//	]
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		slog.Info("listing students", slog.String("q", q))

		response.WriteJSON(w, http.StatusOK, sess.Store().Entries(q))
	}
}

// GetByPosition handles GET /api/students/{position}
func GetByPosition(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos, ok := position(w, r)
		if !ok {
			return
		}

		st, err := sess.Store().Get(pos)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, types.Entry{Position: pos, Student: st})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{position}
// Replaces the record at position. Its own registration number never
// counts as a duplicate.
//
// Success response (200 OK) — the stored record:
//
//	{ "position": 1, "name": "Bob", "reg": "R2", ... }
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos, ok := position(w, r)
		if !ok {
			return
		}
		slog.Info("updating a student", slog.Int("position", pos))

		sub, ok := decodeSubmission(w, r)
		if !ok {
			return
		}

		st, err := sess.Store().Update(r.Context(), pos, sub)
		if err != nil {
			writeError(w, err)
			return
		}

		slog.Info("student updated", slog.Int("position", pos))
		response.WriteJSON(w, http.StatusOK, types.Entry{Position: pos, Student: st})
	}
}

// BeginEdit handles POST /api/students/{position}/edit
// Selects the record for editing and returns it to prefill the form.
// The next POST /api/submit updates it.
func BeginEdit(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos, ok := position(w, r)
		if !ok {
			return
		}

		st, err := sess.BeginEdit(pos)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, types.Entry{Position: pos, Student: st})
	}
}

// CancelEdit handles DELETE /api/edit
func CancelEdit(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess.CancelEdit()
		response.WriteJSON(w, http.StatusOK, response.OK("Edit cancelled."))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Submit handles POST /api/submit
// Saves the form: adds a record when nothing is being edited, otherwise
// updates the record selected by BeginEdit.
//
// Success response (200 OK):
//
//	{ "position": 0, "updated": false, "student": {...}, "message": "..." }
//
// ─────────────────────────────────────────────────────────────────────────────
func Submit(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, ok := decodeSubmission(w, r)
		if !ok {
			return
		}

		out, err := sess.Submit(r.Context(), sub)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, struct {
			session.Outcome
			Message string `json:"message"`
		}{out, out.Message()})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// RequestDelete handles POST /api/students/{position}/deletion
// First step of a delete: nothing is removed yet. The response carries a
// token and a prompt to show the user.
//
//	{ "token": "0b5c…", "position": 0, "student": {...}, "prompt": "Are you sure…" }
//
// ─────────────────────────────────────────────────────────────────────────────
func RequestDelete(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos, ok := position(w, r)
		if !ok {
			return
		}
		slog.Info("deletion requested", slog.Int("position", pos))

		p, err := sess.RequestDelete(pos)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, p)
	}
}

// ConfirmDelete handles POST /api/deletion/confirm
//
// Request body (JSON):
//
//	{ "token": "0b5c…" }
func ConfirmDelete(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(bodyError(err)))
			return
		}

		removed, err := sess.ConfirmDelete(r.Context(), body.Token)
		if err != nil {
			writeError(w, err)
			return
		}

		slog.Info("student deleted", slog.String("reg", removed.Reg))
		response.WriteJSON(w, http.StatusOK, response.OK("Record deleted successfully."))
	}
}

// CancelDelete handles DELETE /api/deletion
func CancelDelete(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess.CancelDelete()
		response.WriteJSON(w, http.StatusOK, response.OK("Deletion cancelled."))
	}
}

// ── helpers ─────────────────────────────────────────────────────────────────

// decodeSubmission reads the request body. On failure it has already
// written a 400 and returns false.
func decodeSubmission(w http.ResponseWriter, r *http.Request) (types.Submission, bool) {
	var sub types.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(bodyError(err)))
		return types.Submission{}, false
	}
	return sub, true
}

func bodyError(err error) error {
	if errors.Is(err, io.EOF) {
		return errors.New("request body is empty")
	}
	return err
}

// position parses the {position} path segment. On failure it has already
// written a 400 and returns false.
func position(w http.ResponseWriter, r *http.Request) (int, bool) {
	pos, err := strconv.Atoi(r.PathValue("position"))
	if err != nil || pos < 0 {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid position: must be a non-negative integer")))
		return 0, false
	}
	return pos, true
}

// writeError maps store and session errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, records.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, records.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, records.ErrDuplicateKey), errors.Is(err, records.ErrConflict),
		errors.Is(err, session.ErrNoPendingDeletion):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("error", err.Error()))
	}

	response.WriteJSON(w, status, response.GeneralError(err))
}
