package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfsm/internal/merge"
	"github.com/local/pdfsm/internal/metrics"
	"github.com/local/pdfsm/internal/session"
	"github.com/local/pdfsm/internal/statuscheck"
)

// Merger runs one merge unless another is already in progress.
type Merger interface {
	TryMerge(ctx context.Context, run merge.Run) (*merge.Result, bool, error)
}

// StatusReporter produces the readiness summary served on /status.
type StatusReporter interface {
	Summary(ctx context.Context) statuscheck.Summary
}

// Credentials guard the routes that read or write files.
type Credentials struct {
	Username string
	Password string
}

type Web struct {
	merger  Merger
	session *session.Session
	status  StatusReporter
	creds   Credentials
}

func New(m Merger, s *session.Session, st StatusReporter, creds Credentials) *Web {
	return &Web{merger: m, session: s, status: st, creds: creds}
}

func (w *Web) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/merge", w.requireAuth(w.handleMerge))
	mux.HandleFunc("/api/paths", w.requireAuth(w.handlePaths))
	mux.HandleFunc("/health", w.handleHealth)
	mux.HandleFunc("/status", w.handleStatus)
	mux.Handle("/metrics", metrics.Handler())
}

// requireAuth checks HTTP basic credentials. Without configured
// credentials the route is closed.
func (w *Web) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(wr http.ResponseWriter, r *http.Request) {
		if w.creds.Username == "" || w.creds.Password == "" {
			writeError(wr, http.StatusForbidden, "WEB_USERNAME/WEB_PASSWORD not set")
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(w.creds.Username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(w.creds.Password)) != 1 {
			log.Warn().Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("unauthorized request")
			wr.Header().Set("WWW-Authenticate", `Basic realm="pdfsm"`)
			writeError(wr, http.StatusUnauthorized, "invalid credentials")
			return
		}
		next(wr, r)
	}
}

type mergeRequest struct {
	SelectFile string `json:"select_file"`
	InputDir   string `json:"input_dir"`
	OutputFile string `json:"output_file"`
}

type mergeResponse struct {
	*merge.Result
	Error string `json:"error,omitempty"`
	Tip   string `json:"tip,omitempty"`
}

func (w *Web) handleMerge(wr http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		wr.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(wr, http.StatusBadRequest, "invalid json")
		return
	}
	paths := w.session.Resolve(session.Paths{
		SelectFile: req.SelectFile,
		InputPath:  req.InputDir,
		SaveFile:   req.OutputFile,
	})
	if !paths.Ready() {
		writeError(wr, http.StatusBadRequest, merge.ErrIncompleteRun.Error())
		return
	}

	res, ran, err := w.merger.TryMerge(r.Context(), merge.Run{
		SelectorFile: paths.SelectFile,
		InputDir:     paths.InputPath,
		OutputFile:   paths.SaveFile,
	})
	if !ran {
		writeError(wr, http.StatusConflict, "a merge is already running")
		return
	}
	resp := mergeResponse{Result: res, Tip: w.session.Remember(paths)}
	if err != nil {
		resp.Error = err.Error()
		if errors.Is(err, merge.ErrIncompleteRun) {
			writeJSON(wr, http.StatusBadRequest, resp)
			return
		}
	}
	log.Info().Str("run_id", res.RunID).Str("status", string(res.Status)).Msg("merge served")
	writeJSON(wr, http.StatusOK, resp)
}

func (w *Web) handlePaths(wr http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		wr.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(wr, http.StatusOK, w.session.Saved())
}

func (w *Web) handleHealth(wr http.ResponseWriter, _ *http.Request) {
	writeJSON(wr, http.StatusOK, map[string]string{"status": "ok"})
}

func (w *Web) handleStatus(wr http.ResponseWriter, r *http.Request) {
	if w.status == nil {
		writeError(wr, http.StatusServiceUnavailable, "status checks not configured")
		return
	}
	writeJSON(wr, http.StatusOK, w.status.Summary(r.Context()))
}

func writeJSON(wr http.ResponseWriter, code int, v any) {
	wr.Header().Set("Content-Type", "application/json")
	wr.WriteHeader(code)
	_ = json.NewEncoder(wr).Encode(v)
}

func writeError(wr http.ResponseWriter, code int, msg string) {
	writeJSON(wr, code, map[string]string{"error": msg})
}
