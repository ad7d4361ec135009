package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/session"
	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler http.Handler
	sess    *session.Session
	slots   *memory.Memory
}

func setup(t *testing.T, origins ...string) fixture {
	t.Helper()
	slots := memory.New()
	store, err := records.Open(context.Background(), slots)
	require.NoError(t, err)
	sess := session.New(store, nil)
	return fixture{handler: New(sess, slots, origins), sess: sess, slots: slots}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"numeric marks", `{"name":"Alice","reg":"R1","dept":"CS","year":"2","marks":90}`, http.StatusCreated},
		{"text marks", `{"name":"Alice","reg":"R1","dept":"CS","year":"2","marks":"90"}`, http.StatusCreated},
		{"empty body", ``, http.StatusBadRequest},
		{"malformed json", `{"name":`, http.StatusBadRequest},
		{"marks out of range", `{"name":"Alice","reg":"R1","marks":101}`, http.StatusBadRequest},
		{"marks not a number", `{"name":"Alice","reg":"R1","marks":"abc"}`, http.StatusBadRequest},
		{"missing name", `{"reg":"R1","marks":50}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			rr := f.do(t, http.MethodPost, "/api/students", tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}
}

func TestCreate_Duplicate(t *testing.T) {
	f := setup(t)

	rr := f.do(t, http.MethodPost, "/api/students", `{"name":"Alice","reg":"R1","marks":90}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"position":0}`, rr.Body.String())

	rr = f.do(t, http.MethodPost, "/api/students", `{"name":"Bob","reg":" r1 ","marks":70}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"error"`)
}

func TestList_Filter(t *testing.T) {
	f := setup(t)
	f.do(t, http.MethodPost, "/api/students", `{"name":"Alice","reg":"R1","marks":90}`)
	f.do(t, http.MethodPost, "/api/students", `{"name":"Bob","reg":"R2","marks":70}`)

	rr := f.do(t, http.MethodGet, "/api/students", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]types.Entry](t, rr), 2)

	rr = f.do(t, http.MethodGet, "/api/students?q=bob", "")
	got := decode[[]types.Entry](t, rr)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Position)
	assert.Equal(t, "Bob", got[0].Name)

	rr = f.do(t, http.MethodGet, "/api/students?q=nobody", "")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetAndUpdate(t *testing.T) {
	f := setup(t)
	f.do(t, http.MethodPost, "/api/students", `{"name":"Alice","reg":"R1","marks":90}`)
	f.do(t, http.MethodPost, "/api/students", `{"name":"Bob","reg":"R2","marks":70}`)

	rr := f.do(t, http.MethodPut, "/api/students/1", `{"name":"Robert","reg":"R2","marks":"72"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[types.Entry](t, rr)
	assert.Equal(t, "Robert", got.Name)
	assert.Equal(t, types.Marks(72), got.Marks)

	rr = f.do(t, http.MethodPut, "/api/students/1", `{"name":"Robert","reg":"r1","marks":72}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/students/0", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Alice", decode[types.Entry](t, rr).Name)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/students/5", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPut, "/api/students/5", `{"name":"X","reg":"X","marks":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/students/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/students/-1", "").Code)
}

func TestUpdate_RecordsChangedElsewhere(t *testing.T) {
	f := setup(t)
	f.do(t, http.MethodPost, "/api/students", `{"name":"Alice","reg":"R1","marks":90}`)

	// A second process on the same slot adds Bob.
	other, err := records.Open(context.Background(), f.slots)
	require.NoError(t, err)
	_, _, err = other.Add(context.Background(), types.Submission{Name: "Bob", Reg: "R2", Marks: "70"})
	require.NoError(t, err)

	rr := f.do(t, http.MethodPut, "/api/students/0", `{"name":"Alice","reg":"R1","marks":10}`)
	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	rr = f.do(t, http.MethodGet, "/api/students", "")
	assert.Len(t, decode[[]types.Entry](t, rr), 2)

	rr = f.do(t, http.MethodPut, "/api/students/0", `{"name":"Alice","reg":"R1","marks":10}`)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = f.do(t, http.MethodPost, "/api/students", `{"name":"Bobby","reg":"r2","marks":70}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestEditAndSubmit(t *testing.T) {
	f := setup(t)

	rr := f.do(t, http.MethodPost, "/api/submit", `{"name":"Alice","reg":"R1","marks":90}`)
	require.Equal(t, http.StatusOK, rr.Code)
	out := decode[map[string]any](t, rr)
	assert.Equal(t, false, out["updated"])
	assert.Equal(t, "Student Alice added successfully!", out["message"])

	rr = f.do(t, http.MethodPost, "/api/students/0/edit", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "R1", decode[types.Entry](t, rr).Reg)

	rr = f.do(t, http.MethodPost, "/api/submit", `{"name":"Alice Smith","reg":"R1","marks":95}`)
	require.Equal(t, http.StatusOK, rr.Code)
	out = decode[map[string]any](t, rr)
	assert.Equal(t, true, out["updated"])

	st, err := f.sess.Store().Get(0)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", st.Name)

	f.do(t, http.MethodPost, "/api/students/0/edit", "")
	rr = f.do(t, http.MethodDelete, "/api/edit", "")
	require.Equal(t, http.StatusOK, rr.Code)
	_, editing := f.sess.Editing()
	assert.False(t, editing)
}

func TestTwoStepDelete(t *testing.T) {
	f := setup(t)
	f.do(t, http.MethodPost, "/api/students", `{"name":"Alice","reg":"R1","marks":90}`)

	// Confirm without a request.
	rr := f.do(t, http.MethodPost, "/api/deletion/confirm", `{"token":"x"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/students/0/deletion", "")
	require.Equal(t, http.StatusOK, rr.Code)
	p := decode[session.Pending](t, rr)
	assert.Contains(t, p.Prompt, "Alice (R1)")
	assert.Equal(t, 1, f.sess.Store().Len())

	rr = f.do(t, http.MethodPost, "/api/deletion/confirm", `{"token":"`+p.Token+`"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Record deleted successfully."}`, rr.Body.String())
	assert.Equal(t, 0, f.sess.Store().Len())

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/students/0/deletion", "").Code)
}

func TestTwoStepDelete_Cancel(t *testing.T) {
	f := setup(t)
	f.do(t, http.MethodPost, "/api/students", `{"name":"Alice","reg":"R1","marks":90}`)

	rr := f.do(t, http.MethodPost, "/api/students/0/deletion", "")
	p := decode[session.Pending](t, rr)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/api/deletion", "").Code)

	rr = f.do(t, http.MethodPost, "/api/deletion/confirm", `{"token":"`+p.Token+`"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, 1, f.sess.Store().Len())
}

func TestTheme(t *testing.T) {
	f := setup(t)

	rr := f.do(t, http.MethodGet, "/api/theme", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"theme":"light"}`, rr.Body.String())

	rr = f.do(t, http.MethodPut, "/api/theme", `{"theme":"dark"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/theme", "")
	assert.JSONEq(t, `{"theme":"dark"}`, rr.Body.String())

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, "/api/theme", `{"theme":"blue"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, "/api/theme", ``).Code)
}

func TestCORS(t *testing.T) {
	f := setup(t, "http://localhost:3000")

	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}
