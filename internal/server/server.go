// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz     liveness probe
//	POST /v1/layout   lay out a document
//
// The layout endpoint accepts either a bare graph document or an envelope
// {"document": {...}, "options": {...}}. The ?format= query selects the
// response encoding (json by default). A json response wraps the positioned
// document together with the layout report; other formats are returned raw
// with a matching content type.
//
// Every response carries an X-Request-ID header. Layouts are serialized: a
// Server runs at most one layout at a time.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/swimlane/pkg/buildinfo"
	"github.com/matzehuels/swimlane/pkg/config"
	"github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/graph"
	"github.com/matzehuels/swimlane/pkg/layout"
	"github.com/matzehuels/swimlane/pkg/layout/position"
	"github.com/matzehuels/swimlane/pkg/layout/routing"
	"github.com/matzehuels/swimlane/pkg/observability"
	"github.com/matzehuels/swimlane/pkg/pipeline"
)

// RequestIDHeader carries the per-request uuid.
const RequestIDHeader = "X-Request-ID"

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatYAML: "application/yaml",
	pipeline.FormatBPMN: "application/xml",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
}

// Server serves layout requests from a pipeline runner.
type Server struct {
	runner   *pipeline.Runner
	cfg      config.Server
	defaults pipeline.Options
	logger   *log.Logger
	started  time.Time

	// mu serializes layouts.
	mu sync.Mutex

	router chi.Router
}

// New builds a server. Request options are layered over the options derived
// from cfg.
func New(runner *pipeline.Runner, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:   runner,
		cfg:      cfg.Server,
		defaults: pipeline.OptionsFromConfig(cfg),
		logger:   logger,
		started:  time.Now(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout.Duration,
		WriteTimeout: s.cfg.WriteTimeout.Duration,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Hostname string `json:"hostname"`
	Uptime   string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  buildinfo.Version,
		Hostname: host,
		Uptime:   time.Since(s.started).Round(time.Second).String(),
	})
}

// layoutRequest is the envelope form of a layout request body.
type layoutRequest struct {
	Document json.RawMessage   `json:"document"`
	Options  *pipeline.Options `json:"options"`
}

// LayoutResponse is the json body of POST /v1/layout.
type LayoutResponse struct {
	RequestID string          `json:"request_id"`
	DocHash   string          `json:"doc_hash"`
	Cached    bool            `json:"cached"`
	Document  json.RawMessage `json:"document"`
	Report    *layout.Report  `json:"report"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Error     string `json:"error"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.failStatus(w, r, http.StatusRequestEntityTooLarge,
				errors.New(errors.ErrCodeInvalidInput, "document exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	doc, reqOpts, err := splitRequest(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	g, err := pipeline.Decode(ctx, bytes.NewReader(doc), graph.FormatJSON, "request")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts := s.mergeOptions(reqOpts)
	opts.Formats = []string{format}
	opts.Logger = s.logger.With("request_id", RequestID(ctx))

	res, err := s.execute(ctx, g, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	artifact := res.Artifacts[format]
	if format != pipeline.FormatJSON {
		w.Header().Set("Content-Type", contentTypes[format])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(artifact)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{
		RequestID: RequestID(ctx),
		DocHash:   res.DocHash,
		Cached:    res.CacheInfo.LayoutHit,
		Document:  artifact,
		Report:    res.Report,
	})
}

func (s *Server) execute(ctx context.Context, g *graph.Graph, opts pipeline.Options) (*pipeline.Result, error) {
	if d := s.cfg.LayoutTimeout.Duration; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.Execute(ctx, g, opts)
}

// splitRequest separates an envelope body into document and options. A
// body without a "document" member is the document itself.
func splitRequest(body []byte) ([]byte, *pipeline.Options, error) {
	var req layoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body is not valid JSON")
	}
	if len(req.Document) == 0 || string(req.Document) == "null" {
		return body, req.Options, nil
	}
	return req.Document, req.Options, nil
}

// mergeOptions overlays the non-zero request options on the server
// defaults, field by field inside position and routing. Range checks run
// later in the runner.
func (s *Server) mergeOptions(req *pipeline.Options) pipeline.Options {
	opts := s.defaults
	if req == nil {
		return opts
	}
	if req.Ordering != "" {
		opts.Ordering = req.Ordering
	}
	if req.Sweeps != 0 {
		opts.Sweeps = req.Sweeps
	}
	if req.Router != "" {
		opts.Router = req.Router
	}
	if req.MaxNodes != 0 {
		opts.MaxNodes = req.MaxNodes
	}
	if req.Position != nil {
		base := position.DefaultOptions()
		if opts.Position != nil {
			base = *opts.Position
		}
		merged := base.Overlay(*req.Position)
		opts.Position = &merged
	}
	if req.Routing != nil {
		base := routing.DefaultOptions()
		if opts.Routing != nil {
			base = *opts.Routing
		}
		merged := base.Overlay(*req.Routing)
		opts.Routing = &merged
	}
	opts.Detailed = req.Detailed
	opts.Refresh = req.Refresh
	return opts
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.failStatus(w, r, errors.HTTPStatus(err), err)
}

func (s *Server) failStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	ctx := r.Context()
	observability.HTTP().OnError(ctx, r.Method, r.URL.Path, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", RequestID(ctx), "err", err)
	} else {
		s.logger.Warn("request rejected", "request_id", RequestID(ctx), "status", status, "err", err)
	}

	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, ErrorResponse{
		RequestID: RequestID(ctx),
		Code:      string(code),
		Error:     errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
