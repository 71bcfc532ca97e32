package http

import (
	"net/http"

	"github.com/marchalgreen/Rundeklar-sub002/internal/attendance"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/http/handlers"
	"github.com/marchalgreen/Rundeklar-sub002/internal/kpi"
	"github.com/marchalgreen/Rundeklar-sub002/internal/network"
	"github.com/marchalgreen/Rundeklar-sub002/internal/pubsub"
	"github.com/marchalgreen/Rundeklar-sub002/internal/session"
	"github.com/marchalgreen/Rundeklar-sub002/internal/snapshot"
)

// Deps are the services the server routes to.
type Deps struct {
	Store          club.Store
	Cache          handlers.Invalidator
	MetricsHandler http.Handler
	Sessions       *session.Service
	Snapshots      *snapshot.Builder
	Attendance     *attendance.Aggregator
	Network        *network.Analyzer
	KPI            *kpi.Engine
	PubSub         pubsub.PubSubClient
}

type Server struct {
	deps   Deps
	Router *http.ServeMux
}
