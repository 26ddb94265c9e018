package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/caffeineduck/mdbsh/executor"
	"github.com/caffeineduck/mdbsh/hostfunc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for script execution",
	Long: `Start an HTTP server that provides REST endpoints for script execution.

Endpoints:
  POST   /execute              Execute code (stateless)
  POST   /sessions             Create session, returns {"session_id":"..."}
  POST   /sessions/{id}/exec   Execute in session (handles persist)
  DELETE /sessions/{id}        Close session and release its handles
  GET    /health               Health check

Each session owns its own handle tables. Idle sessions are closed after
--session-ttl.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Duration("timeout", 30*time.Second, "Default execution timeout")
	serveCmd.Flags().Duration("session-ttl", 15*time.Minute, "Close sessions idle for this long")
	serveCmd.Flags().Bool("lint", false, "Warn about calls with more arguments than the operation takes")
	serveCmd.Flags().StringSlice("mount", nil, "Confine environment paths to virtual:host[:ro|rw|rwc] (repeatable)")
	rootCmd.AddCommand(serveCmd)
}

type sessionManager struct {
	sessions map[string]*serverSession
	mu       sync.Mutex
	ttl      time.Duration
	logger   *zap.Logger
}

type serverSession struct {
	session  *executor.Session
	lastUsed time.Time
}

func newSessionManager(ttl time.Duration, logger *zap.Logger) *sessionManager {
	return &sessionManager{
		sessions: make(map[string]*serverSession),
		ttl:      ttl,
		logger:   logger,
	}
}

func (sm *sessionManager) create(exec *executor.Executor, lang executor.Language, opts ...executor.SessionOption) (string, error) {
	session, err := exec.NewSession(lang, opts...)
	if err != nil {
		return "", err
	}

	id := generateSessionID()
	sm.mu.Lock()
	sm.sessions[id] = &serverSession{
		session:  session,
		lastUsed: time.Now(),
	}
	sm.mu.Unlock()
	sm.logger.Debug("session created", zap.String("id", id))
	return id, nil
}

func (sm *sessionManager) get(id string) (*executor.Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	ss, ok := sm.sessions[id]
	if !ok {
		return nil, false
	}
	ss.lastUsed = time.Now()
	return ss.session, true
}

func (sm *sessionManager) close(id string) bool {
	sm.mu.Lock()
	ss, ok := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()
	if ok {
		sm.closeSession(id, ss.session)
	}
	return ok
}

func (sm *sessionManager) closeSession(id string, s *executor.Session) {
	if err := s.Close(); err != nil {
		sm.logger.Warn("close session", zap.String("id", id), zap.Error(err))
	}
}

// reap closes sessions idle longer than the TTL.
func (sm *sessionManager) reap(now time.Time) int {
	sm.mu.Lock()
	expired := make(map[string]*executor.Session)
	for id, ss := range sm.sessions {
		if now.Sub(ss.lastUsed) > sm.ttl {
			expired[id] = ss.session
			delete(sm.sessions, id)
		}
	}
	sm.mu.Unlock()

	for id, s := range expired {
		sm.logger.Info("closing idle session", zap.String("id", id))
		sm.closeSession(id, s)
	}
	return len(expired)
}

// run reaps idle sessions until ctx is done, then closes the rest.
func (sm *sessionManager) run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			sm.closeAll()
			return nil
		case now := <-ticker.C:
			sm.reap(now)
		}
	}
}

func (sm *sessionManager) closeAll() {
	sm.mu.Lock()
	all := sm.sessions
	sm.sessions = make(map[string]*serverSession)
	sm.mu.Unlock()
	for id, ss := range all {
		sm.closeSession(id, ss.session)
	}
}

func (sm *sessionManager) count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}

func generateSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x", b)
}

type executeRequest struct {
	Code    string `json:"code"`
	Timeout string `json:"timeout,omitempty"`
}

type executeResponse struct {
	Output     string `json:"output"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

type server struct {
	exec     *executor.Executor
	lang     executor.Language
	sessions *sessionManager
	timeout  time.Duration
	mounts   []hostfunc.Mount
	lint     bool
	logger   *zap.Logger
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /execute", s.handleExecute)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("POST /sessions/{id}/exec", s.handleSessionExec)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *server) runOpts(timeout time.Duration) []executor.Option {
	opts := []executor.Option{
		executor.WithTimeout(timeout),
		executor.WithLint(s.lint),
	}
	for _, m := range s.mounts {
		opts = append(opts, executor.WithMount(m.VirtualPath, m.HostPath, m.Mode))
	}
	return opts
}

func (s *server) sessionOpts() []executor.SessionOption {
	opts := []executor.SessionOption{
		executor.WithSessionTimeout(s.timeout),
		executor.WithSessionLint(s.lint),
	}
	for _, m := range s.mounts {
		opts = append(opts, executor.WithSessionMount(m.VirtualPath, m.HostPath, m.Mode))
	}
	return opts
}

// decodeExecute reads a code request; an empty or invalid body is a 400.
func decodeExecute(w http.ResponseWriter, r *http.Request) (executeRequest, bool) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return req, false
	}
	if req.Code == "" {
		http.Error(w, "code required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *server) requestTimeout(req executeRequest) time.Duration {
	if req.Timeout != "" {
		if d, err := time.ParseDuration(req.Timeout); err == nil {
			return d
		}
	}
	return s.timeout
}

func writeResult(w http.ResponseWriter, result executor.Result) {
	resp := executeResponse{
		Output:     result.Output,
		DurationMs: result.Duration.Milliseconds(),
	}
	if result.Error != nil {
		resp.Error = result.Error.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *server) handleExecute(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExecute(w, r)
	if !ok {
		return
	}
	result := s.exec.Run(r.Context(), s.lang, req.Code, s.runOpts(s.requestTimeout(req))...)
	s.logger.Debug("execute", zap.Duration("duration", result.Duration), zap.Error(result.Error))
	writeResult(w, result)
}

func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	// The body is optional; nothing in it is used yet.
	io.Copy(io.Discard, r.Body)

	id, err := s.sessions.create(s.exec, s.lang, s.sessionOpts()...)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to create session: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, createSessionResponse{SessionID: id})
}

func (s *server) handleSessionExec(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessions.get(r.PathValue("id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	req, ok := decodeExecute(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if req.Timeout != "" {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout(req))
		defer cancel()
	}
	writeResult(w, session.Run(ctx, req.Code))
}

func (s *server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.close(r.PathValue("id")) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Sessions", strconv.Itoa(s.sessions.count()))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// serve runs the HTTP server and the session reaper until ctx is done.
func (s *server) serve(ctx context.Context, ln net.Listener, reapInterval time.Duration) error {
	srv := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.sessions.run(gctx, reapInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runServe(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetInt("port")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ttl, _ := cmd.Flags().GetDuration("session-ttl")
	lint, _ := cmd.Flags().GetBool("lint")
	mountSpecs, _ := cmd.Flags().GetStringSlice("mount")

	mounts, err := parseMounts(mountSpecs)
	if err != nil {
		return err
	}
	language, err := getLanguage("", "")
	if err != nil {
		return err
	}

	exec, closeExec, err := newExecutor(cmd, executor.WithPrecompile(language))
	if err != nil {
		return err
	}
	defer closeExec()

	s := &server{
		exec:     exec,
		lang:     language,
		sessions: newSessionManager(ttl, logger.Named("sessions")),
		timeout:  timeout,
		mounts:   mounts,
		lint:     lint,
		logger:   logger,
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	logger.Info("listening", zap.String("addr", ln.Addr().String()))
	fmt.Fprintf(cmd.ErrOrStderr(), "mdbsh server listening on %s\n", ln.Addr())

	return s.serve(cmd.Context(), ln, time.Minute)
}
