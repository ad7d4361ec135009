// Package routes wires every HTTP handler onto one router.
//
// Route table:
//
//	GET    /api/students                      → list (optional ?q= filter)
//	POST   /api/students                      → add a record
//	GET    /api/students/{position}           → get one record
//	PUT    /api/students/{position}           → update a record
//	POST   /api/students/{position}/edit      → select a record for editing
//	DELETE /api/edit                          → clear the edit selection
//	POST   /api/submit                        → save the form (add or update)
//	POST   /api/students/{position}/deletion  → ask to delete (step 1)
//	POST   /api/deletion/confirm              → confirm the delete (step 2)
//	DELETE /api/deletion                      → cancel the delete
//	GET    /api/theme                         → theme preference
//	PUT    /api/theme                         → save theme preference
package routes

import (
	"net/http"

	"github.com/aanand-mishra/student-records/internal/http/handlers/preference"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/session"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/gorilla/handlers"
)

// New returns the application's HTTP handler. allowedOrigins lists the
// browser origins permitted to call the API; an empty list disables
// cross-origin access.
func New(sess *session.Session, slots storage.Slots, allowedOrigins []string) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /api/students", student.GetList(sess))
	router.HandleFunc("POST /api/students", student.New(sess))
	router.HandleFunc("GET /api/students/{position}", student.GetByPosition(sess))
	router.HandleFunc("PUT /api/students/{position}", student.Update(sess))

	router.HandleFunc("POST /api/students/{position}/edit", student.BeginEdit(sess))
	router.HandleFunc("DELETE /api/edit", student.CancelEdit(sess))
	router.HandleFunc("POST /api/submit", student.Submit(sess))

	router.HandleFunc("POST /api/students/{position}/deletion", student.RequestDelete(sess))
	router.HandleFunc("POST /api/deletion/confirm", student.ConfirmDelete(sess))
	router.HandleFunc("DELETE /api/deletion", student.CancelDelete(sess))

	router.HandleFunc("GET /api/theme", preference.Get(slots))
	router.HandleFunc("PUT /api/theme", preference.Put(slots))

	if len(allowedOrigins) == 0 {
		return router
	}

	return handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(router)
}
