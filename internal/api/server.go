package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/anggasct/trafficsim"
	"github.com/anggasct/trafficsim/internal/httpx"
	"github.com/anggasct/trafficsim/pkg/core"
)

// Server exposes an engine over HTTP. Every mutation is dispatched as a
// trafficsim.Command.
type Server struct {
	engine  *trafficsim.Engine
	hub     *Hub
	logger  zerolog.Logger
	timeout time.Duration
}

func NewServer(engine *trafficsim.Engine, hub *Hub, logger zerolog.Logger, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Server{engine: engine, hub: hub, logger: logger, timeout: timeout}
}

type commandResponse struct {
	CommandID string          `json:"command_id"`
	Applied   bool            `json:"applied"`
	State     core.ClockState `json:"state"`
	Config    core.Config     `json:"config"`
	Runtime   string          `json:"runtime"`
	Reason    string          `json:"reason,omitempty"`
	Code      string          `json:"code,omitempty"`
}

type configResponse struct {
	State         core.ClockState `json:"state"`
	Config        core.Config     `json:"config"`
	ScenarioLabel string          `json:"scenario_label"`
	Runtime       string          `json:"runtime"`
}

type signalRequest struct {
	Phase core.Phase `json:"phase"`
}

// Routes builds the chi router
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "trafficd",
			"engine":  s.engine.ID(),
			"state":   s.engine.State(),
		})
	})

	router.Get("/v1/stream", func(w http.ResponseWriter, r *http.Request) {
		s.hub.ServeWS(w, r, s.engine.Snapshot())
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))

		r.Get("/v1/snapshot", func(w http.ResponseWriter, _ *http.Request) {
			httpx.WriteJSON(w, http.StatusOK, s.engine.Snapshot())
		})
		r.Get("/v1/intersections", func(w http.ResponseWriter, _ *http.Request) {
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": s.engine.Intersections()})
		})
		r.Get("/v1/alerts", func(w http.ResponseWriter, _ *http.Request) {
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": s.engine.Alerts()})
		})
		r.Get("/v1/series", func(w http.ResponseWriter, _ *http.Request) {
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": s.engine.Series()})
		})
		r.Get("/v1/summary", func(w http.ResponseWriter, _ *http.Request) {
			httpx.WriteJSON(w, http.StatusOK, s.engine.Summary())
		})
		r.Get("/v1/config", s.getConfig)
		r.Patch("/v1/config", s.patchConfig)

		r.Post("/v1/simulation/{action}", s.simulation)
		r.Delete("/v1/alerts/{id}", s.dismissAlert)
		r.Put("/v1/intersections/{id}/signal", s.setSignal)
	})

	return router
}

func (s *Server) getConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := s.engine.Config()
	httpx.WriteJSON(w, http.StatusOK, configResponse{
		State:         s.engine.State(),
		Config:        cfg,
		ScenarioLabel: cfg.Scenario.Label(),
		Runtime:       core.FormatRuntime(cfg.Runtime),
	})
}

func (s *Server) patchConfig(w http.ResponseWriter, r *http.Request) {
	var change core.ConfigChange
	if err := httpx.DecodeJSON(r, &change); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if change.Empty() {
		httpx.WriteError(w, http.StatusBadRequest, "no configuration field given")
		return
	}
	s.respond(w, s.engine.Dispatch(trafficsim.NewCommand(trafficsim.CommandConfigure, change)))
}

func (s *Server) simulation(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	switch action {
	case trafficsim.CommandStart, trafficsim.CommandStop, trafficsim.CommandReset:
		s.respond(w, s.engine.Dispatch(trafficsim.NewCommand(action, nil)))
	case trafficsim.CommandTick:
		result := s.engine.Dispatch(trafficsim.NewCommand(action, nil))
		if !result.Success() || result.Snapshot == nil {
			s.respond(w, result)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, result.Snapshot)
	default:
		httpx.WriteError(w, http.StatusNotFound, "unknown simulation action")
	}
}

func (s *Server) dismissAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result := s.engine.Dispatch(trafficsim.NewCommand(trafficsim.CommandDismissAlert, id))
	if result.Success() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.respond(w, result)
}

func (s *Server) setSignal(w http.ResponseWriter, r *http.Request) {
	var req signalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	override := trafficsim.SignalOverride{IntersectionID: chi.URLParam(r, "id"), Phase: req.Phase}
	s.respond(w, s.engine.Dispatch(trafficsim.NewCommand(trafficsim.CommandSetSignal, override)))
}

func (s *Server) respond(w http.ResponseWriter, result *trafficsim.CommandResult) {
	resp := commandResponse{
		CommandID: result.CommandID,
		Applied:   result.Applied,
		State:     result.CurrentState,
		Config:    result.Config,
		Runtime:   core.FormatRuntime(result.Config.Runtime),
		Reason:    result.RejectionReason,
	}
	if result.Error != nil {
		resp.Code = trafficsim.GetErrorCode(result.Error).String()
	}
	httpx.WriteJSON(w, statusFor(result), resp)
}

func statusFor(result *trafficsim.CommandResult) int {
	if result.Success() {
		return http.StatusOK
	}
	switch trafficsim.GetErrorCode(result.Error) {
	case trafficsim.ErrCodeInvalidTransition, trafficsim.ErrCodeAutoModeActive:
		return http.StatusConflict
	case trafficsim.ErrCodeUnknownIntersection, trafficsim.ErrCodeUnknownAlert:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(started)).
			Msg("http request")
	})
}
