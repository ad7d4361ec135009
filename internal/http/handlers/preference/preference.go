// Package preference contains the HTTP handlers for the display theme.
package preference

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/theme"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

type body struct {
	Theme string `json:"theme"`
}

// Get handles GET /api/theme
//
//	{ "theme": "light" }
func Get(slots storage.Slots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := theme.Load(r.Context(), slots)
		if err != nil {
			slog.Error("error loading theme", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, body{Theme: string(t)})
	}
}

// Put handles PUT /api/theme with body { "theme": "dark" }.
func Put(slots storage.Slots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in body
		err := json.NewDecoder(r.Body).Decode(&in)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		t, err := theme.Parse(in.Theme)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := theme.Save(r.Context(), slots, t); err != nil {
			slog.Error("error saving theme", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		slog.Info("theme saved", slog.String("theme", string(t)))
		response.WriteJSON(w, http.StatusOK, body{Theme: string(t)})
	}
}
