package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"syncalendar/internal/auth"
	"syncalendar/internal/calendar"
	"syncalendar/internal/notify"
	"syncalendar/internal/storage"
)

// Deps is everything the HTTP API needs. Mirror is nil when Google
// Calendar mirroring is disabled.
type Deps struct {
	Store     storage.Store
	Auth      *auth.Service
	Google    *auth.GoogleProvider
	Scheduler *notify.Scheduler
	Mirror    EventMirror

	// SimulateGoogle enables the development account on /auth/google
	// when Google is not configured.
	SimulateGoogle bool
	Location       *time.Location
	Now            calendar.Clock
	Log            *logrus.Entry
}

// NewRouter wires the routes of the REST API.
func NewRouter(d Deps) http.Handler {
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	authHandler := NewAuthHandler(d.Auth, d.Google, d.SimulateGoogle, d.Log)
	userHandler := NewUserHandler(d.Store, d.Log)
	eventHandler := NewEventHandler(d.Store, d.Scheduler, d.Mirror, d.Location, d.Log)
	calendarHandler := NewCalendarHandler(d.Store, d.Mirror, d.Location, d.Now, d.Log)
	notificationHandler := NewNotificationHandler(d.Store, d.Store, d.Location, d.Now, d.Log)

	protected := func(h http.HandlerFunc) http.HandlerFunc { return requireAuth(d.Auth, d.Log, h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Log, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /auth/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /auth/logout", authHandler.HandleLogout)
	mux.HandleFunc("GET /auth/google", authHandler.HandleGoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.HandleGoogleCallback)

	mux.HandleFunc("GET /user/me", protected(userHandler.HandleMe))
	mux.HandleFunc("GET /user/search", protected(userHandler.HandleSearch))
	mux.HandleFunc("GET /user/{id}", protected(userHandler.HandleGet))

	mux.HandleFunc("GET /events", protected(eventHandler.HandleList))
	mux.HandleFunc("POST /events", protected(eventHandler.HandleCreate))
	mux.HandleFunc("GET /events/{id}", protected(eventHandler.HandleGet))
	mux.HandleFunc("PUT /events/{id}", protected(eventHandler.HandleUpdate))
	mux.HandleFunc("DELETE /events/{id}", protected(eventHandler.HandleDelete))

	mux.HandleFunc("GET /calendar/month", protected(calendarHandler.HandleMonth))
	mux.HandleFunc("GET /calendar/today", protected(calendarHandler.HandleToday))
	mux.HandleFunc("GET /calendar/google", protected(calendarHandler.HandleGoogle))
	mux.HandleFunc("GET /calendar.ics", requireAuthOrQuery(d.Auth, d.Log, calendarHandler.HandleICS))

	mux.HandleFunc("GET /notifications", protected(notificationHandler.HandleList))
	mux.HandleFunc("DELETE /notifications", protected(notificationHandler.HandleClear))
	mux.HandleFunc("GET /notifications/feed", protected(notificationHandler.HandleFeed))
	mux.HandleFunc("POST /notifications/read-all", protected(notificationHandler.HandleReadAll))
	mux.HandleFunc("GET /notifications/settings", protected(notificationHandler.HandleGetSettings))
	mux.HandleFunc("PUT /notifications/settings", protected(notificationHandler.HandlePutSettings))
	mux.HandleFunc("POST /notifications/{id}/read", protected(notificationHandler.HandleRead))
	mux.HandleFunc("DELETE /notifications/{id}", protected(notificationHandler.HandleDelete))

	return logRequests(d.Log, mux)
}
