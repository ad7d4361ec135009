// Package types holds the shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// the record store, the session, the HTTP handlers and the CLI can all
// import types without depending on each other.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Student is one record as it is held in memory and persisted in the
// "students" slot.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — the persisted field names. They match what the
//     browser front end has always written to local storage.
//
//  2. validate:"..." — rules checked by go-playground/validator before a
//     record is accepted into the store.
type Student struct {
	Name  string `json:"name"  validate:"required"`
	Reg   string `json:"reg"   validate:"required"`
	Dept  string `json:"dept"`
	Year  string `json:"year"`
	Marks Marks  `json:"marks" validate:"min=0,max=100"`
}

// Submission converts the record back into form input, e.g. to prefill
// an edit form.
func (s Student) Submission() Submission {
	return Submission{
		Name:  s.Name,
		Reg:   s.Reg,
		Dept:  s.Dept,
		Year:  s.Year,
		Marks: Text(strconv.Itoa(int(s.Marks))),
	}
}

// Marks is a score in [0, 100]. It is always written as a JSON number
// but older data may hold it as text ("90"), so decoding accepts both.
type Marks int

// UnmarshalJSON accepts 90, "90" and " 90 ".
func (m *Marks) UnmarshalJSON(data []byte) error {
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}

	n, err := strconv.Atoi(strings.TrimSpace(string(t)))
	if err != nil {
		return fmt.Errorf("marks: %q is not an integer", string(t))
	}

	*m = Marks(n)
	return nil
}

// Submission is raw form input. Every field is text, exactly as typed
// by the user; nothing has been trimmed, parsed or validated yet.
type Submission struct {
	Name  string `json:"name"`
	Reg   string `json:"reg"`
	Dept  string `json:"dept"`
	Year  string `json:"year"`
	Marks Text   `json:"marks"`
}

// Trimmed returns a copy with surrounding whitespace removed from every
// field.
func (s Submission) Trimmed() Submission {
	return Submission{
		Name:  strings.TrimSpace(s.Name),
		Reg:   strings.TrimSpace(s.Reg),
		Dept:  strings.TrimSpace(s.Dept),
		Year:  strings.TrimSpace(s.Year),
		Marks: Text(strings.TrimSpace(string(s.Marks))),
	}
}

// Text is a string that also decodes from a bare JSON number, so a
// client may send "marks": 90 or "marks": "90".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}

	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", data)
	}
	*t = Text(n.String())
	return nil
}

// Entry pairs a record with its position in the unfiltered sequence.
// Callers address edits and deletes by Position.
type Entry struct {
	Position int `json:"position"`
	Student
}
