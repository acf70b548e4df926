package handlers

import (
	"context"
	"net/http"

	"github.com/CrowderSoup/gamific/database"
	"github.com/CrowderSoup/gamific/services"
	"github.com/gorilla/mux"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter wires every route of the API. All routes except /api/health and
// /api/ws sit behind the auth middleware, and so does the 405 handler: a
// caller without a session always sees 401 first.
func NewRouter(authService *services.AuthService, boardService *services.BoardService, hub *services.Hub, store Pinger, allowedOrigins []string) *mux.Router {
	authMiddleware := NewAuthMiddleware(authService, boardService)
	authHandler := NewAuthHandler(authService)
	dataHandler := NewDataHandler(boardService, authMiddleware, hub, allowedOrigins)
	boardHandler := NewBoardHandler(boardService)
	journeyColumns := NewColumnHandler(boardService, database.JourneyColumnFamily)
	missionColumns := NewColumnHandler(boardService, database.MissionColumnFamily)

	protect := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Auth(h)
	}

	r := mux.NewRouter()
	r.MethodNotAllowedHandler = authMiddleware.Auth(http.HandlerFunc(methodNotAllowed))
	r.NotFoundHandler = http.HandlerFunc(notFound)

	r.HandleFunc("/api/health", health(store)).Methods("GET")

	// Auth routes
	r.Handle("/api/auth/verify", protect(authHandler.VerifyToken)).Methods("GET")
	r.Handle("/api/auth/logout", protect(authHandler.Logout)).Methods("POST")

	// WebSocket route for board events; authenticates itself
	r.HandleFunc("/api/ws", dataHandler.HandleWebSocket).Methods("GET")

	r.Handle("/api/users", protect(dataHandler.ListUsers)).Methods("GET")

	r.Handle("/api/journeys", protect(boardHandler.ListJourneys)).Methods("GET")
	r.Handle("/api/journeys", protect(boardHandler.CreateJourney)).Methods("POST")
	r.Handle("/api/journeys/{id}", protect(boardHandler.GetJourney)).Methods("GET")
	r.Handle("/api/journeys/{id}", protect(boardHandler.UpdateJourney)).Methods("PUT")
	r.Handle("/api/journeys/{id}", protect(boardHandler.DeleteJourney)).Methods("DELETE")

	for path, h := range map[string]*ColumnHandler{
		"/api/journeyColumns": journeyColumns,
		"/api/missionColumns": missionColumns,
	} {
		r.Handle(path, protect(h.List)).Methods("GET")
		r.Handle(path, protect(h.Create)).Methods("POST")
		r.Handle(path+"/{id}", protect(h.Get)).Methods("GET")
		r.Handle(path+"/{id}", protect(h.Update)).Methods("PUT")
		r.Handle(path+"/{id}", protect(h.Delete)).Methods("DELETE")
	}

	r.Handle("/api/missions", protect(boardHandler.ListMissions)).Methods("GET")
	r.Handle("/api/missions", protect(boardHandler.CreateMission)).Methods("POST")
	r.Handle("/api/missions/{id}", protect(boardHandler.GetMission)).Methods("GET")
	r.Handle("/api/missions/{id}", protect(boardHandler.UpdateMission)).Methods("PUT")
	r.Handle("/api/missions/{id}", protect(boardHandler.DeleteMission)).Methods("DELETE")

	r.Handle("/api/tasks", protect(boardHandler.ListTasks)).Methods("GET")
	r.Handle("/api/tasks", protect(boardHandler.CreateTask)).Methods("POST")
	r.Handle("/api/tasks/{id}", protect(boardHandler.GetTask)).Methods("GET")
	r.Handle("/api/tasks/{id}", protect(boardHandler.UpdateTask)).Methods("PUT")
	r.Handle("/api/tasks/{id}", protect(boardHandler.DeleteTask)).Methods("DELETE")

	r.Handle("/api/subtasks/{id}", protect(boardHandler.UpdateSubtask)).Methods("PUT")

	return r
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			respondError(w, "checking database", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
