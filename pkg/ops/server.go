package ops

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bacworks/bacworks-go/pkg/health"
	"github.com/bacworks/bacworks-go/pkg/object"
	"github.com/bacworks/bacworks-go/pkg/session"
)

// Server serves a session's health and statistics.
type Server struct {
	addr    string
	session *session.Session
	logger  *slog.Logger
	server  *http.Server
}

// NewServer creates a server for the given session. The logger may be
// nil.
func NewServer(addr string, sess *session.Session, logger *slog.Logger) *Server {
	return &Server{
		addr:    addr,
		session: sess,
		logger:  logger,
	}
}

// Handler returns the route tree, for tests and for embedding under a
// larger router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/objects", s.handleObjects)
	return r
}

// Start begins serving in the background. Returns immediately; serve
// errors other than a clean shutdown are logged.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if s.logger != nil {
		s.logger.Info("ops server starting", "addr", s.addr)
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if s.logger != nil {
				s.logger.Error("ops server failed", "err", err)
			}
		}
	}()
	return nil
}

// Shutdown stops the server, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// healthResponse is the /health body.
type healthResponse struct {
	State     string    `json:"state"`
	DeviceID  uint32    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
}

// statsResponse mirrors health.Snapshot with JSON-friendly fields.
type statsResponse struct {
	State               string     `json:"state"`
	Attempts            uint64     `json:"attempts"`
	Successes           uint64     `json:"successes"`
	Failures            uint64     `json:"failures"`
	Retries             uint64     `json:"retries"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	AvgLatencyMs        float64    `json:"avg_latency_ms"`
	LastRead            *time.Time `json:"last_read,omitempty"`
	LastWrite           *time.Time `json:"last_write,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
}

// objectResponse is one registry entry in the /objects body.
type objectResponse struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Instance    uint32 `json:"instance"`
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.session.Health()

	code := http.StatusOK
	if state == health.StateUnhealthy {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, healthResponse{
		State:     state.String(),
		DeviceID:  s.session.Endpoint().DeviceID,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Stats()

	resp := statsResponse{
		State:               snap.State.String(),
		Attempts:            snap.Attempts,
		Successes:           snap.Successes,
		Failures:            snap.Failures,
		Retries:             snap.Retries,
		ConsecutiveFailures: snap.ConsecutiveFailures,
		AvgLatencyMs:        float64(snap.AvgLatency) / float64(time.Millisecond),
	}
	if !snap.LastRead.IsZero() {
		t := snap.LastRead
		resp.LastRead = &t
	}
	if !snap.LastWrite.IsZero() {
		t := snap.LastWrite
		resp.LastWrite = &t
	}
	if snap.LastError != nil {
		resp.LastError = snap.LastError.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	objects := s.session.Objects()

	resp := make([]objectResponse, 0, len(objects))
	for _, o := range objects {
		resp = append(resp, toObjectResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toObjectResponse(o object.Object) objectResponse {
	return objectResponse{
		Name:        o.Name,
		Type:        o.Kind.String(),
		Instance:    o.Instance,
		Description: o.Description,
		Unit:        o.Unit,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
