package http

import (
	"net/http"

	"github.com/marchalgreen/Rundeklar-sub002/internal/http/handlers"
)

func NewServer(deps Deps) *Server {
	server := &Server{
		deps:   deps,
		Router: http.NewServeMux(),
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(handler, paramsMiddleware, authMiddleware)
	d := s.deps
	s.handle("GET /health", handlers.HealthCheckHandler())
	if d.MetricsHandler != nil {
		s.Router.Handle("GET /metrics", d.MetricsHandler)
	}
	s.handle("POST /clear", handlers.ClearStoreHandler(d.Store))

	s.handle("GET /stats/groups", handlers.GroupAttendanceHandler(d.Attendance))
	s.handle("GET /stats/weekdays", handlers.WeekdayAttendanceHandler(d.Attendance))
	s.handle("GET /stats/months", handlers.MonthlyTrendHandler(d.Attendance))
	s.handle("GET /stats/group-trend", handlers.GroupTrendHandler(d.Attendance))
	s.handle("GET /stats/players", handlers.PlayerLongTailHandler(d.Attendance))
	s.handle("GET /stats/training-days", handlers.TrainingDaysHandler(d.Attendance))
	s.handle("GET /stats/kpi", handlers.KPIHandler(d.KPI))

	s.handle("GET /players/{id}/statistics", handlers.PlayerStatisticsHandler(d.Network))
	s.handle("GET /players/{id}/partners", handlers.TopPartnersHandler(d.Network))
	s.handle("GET /players/{id}/opponents", handlers.TopOpponentsHandler(d.Network))
	s.handle("GET /players/{id}/compare/{other}", handlers.PlayerComparisonHandler(d.Network))
	s.handle("GET /players/{id}/head-to-head/{other}", handlers.HeadToHeadHandler(d.Network))

	s.handle("GET /sessions/active", handlers.ActiveSessionHandler(d.Sessions))
	s.handle("POST /sessions", handlers.StartSessionHandler(d.Sessions))
	s.handle("POST /sessions/{id}/end", handlers.EndSessionHandler(d.Sessions))
	s.handle("POST /sessions/{id}/check-ins", handlers.CheckInHandler(d.Sessions))
	s.handle("DELETE /sessions/{id}/check-ins/{playerId}", handlers.CheckoutHandler(d.Sessions))
	s.handle("POST /sessions/{id}/snapshot", handlers.SnapshotHandler(d.Snapshots))

	if d.Cache != nil && d.PubSub != nil {
		s.handle("POST /pubsub/snapshot-created", handlers.SnapshotCreatedHandler(d.Cache, d.PubSub))
	}
}

func (s *Server) handle(pattern string, h http.Handler) {
	s.Router.Handle(pattern, Chain(h, paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
