package server

import (
	"net/http"
	"net/http/pprof"

	"github.com/undercut/pitwall/internal/server/middleware"
)

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /compounds", s.handleCompounds)
	mux.HandleFunc("GET /drivers", s.handleDrivers)

	mux.HandleFunc("POST /train", s.handleTrain)
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("POST /compare", s.handleCompare)

	mux.HandleFunc("POST /optimizer/train", s.handleOptimizerTrain)
	mux.HandleFunc("POST /optimizer/plan", s.handleOptimizerPlan)
	mux.HandleFunc("GET /optimizer/status", s.handleOptimizerStatus)

	mux.Handle("GET /metrics", s.metrics.handler())

	// Debug and profiling routes carry their own authentication
	s.setupDebugRoutes(mux)

	return mux
}

// setupDebugRoutes configures debug and profiling endpoints with authentication.
func (s *Server) setupDebugRoutes(mux *http.ServeMux) {
	profilingEnabled := s.config.Server.Profiling.Enabled
	debugEnabled := s.config.Debug.Enabled

	if !profilingEnabled && !debugEnabled {
		return
	}

	debugAuthConfig := &middleware.DebugAuthConfig{
		Token:              s.config.Debug.Auth.Token,
		FallbackAuthConfig: s.authConfig,
	}
	debugAuth := middleware.DebugAuth(debugAuthConfig)

	if profilingEnabled {
		s.logger.Info("profiling endpoints enabled at /debug/pprof/ (auth required)")
		mux.Handle("GET /debug/pprof/{$}", debugAuth(http.HandlerFunc(pprof.Index)))
		mux.Handle("GET /debug/pprof/cmdline", debugAuth(http.HandlerFunc(pprof.Cmdline)))
		mux.Handle("GET /debug/pprof/profile", debugAuth(http.HandlerFunc(pprof.Profile)))
		mux.Handle("GET /debug/pprof/symbol", debugAuth(http.HandlerFunc(pprof.Symbol)))
		mux.Handle("POST /debug/pprof/symbol", debugAuth(http.HandlerFunc(pprof.Symbol)))
		mux.Handle("GET /debug/pprof/trace", debugAuth(http.HandlerFunc(pprof.Trace)))
		mux.Handle("GET /debug/pprof/heap", debugAuth(pprof.Handler("heap")))
		mux.Handle("GET /debug/pprof/goroutine", debugAuth(pprof.Handler("goroutine")))
		mux.Handle("GET /debug/pprof/allocs", debugAuth(pprof.Handler("allocs")))
		mux.Handle("GET /debug/pprof/block", debugAuth(pprof.Handler("block")))
		mux.Handle("GET /debug/pprof/mutex", debugAuth(pprof.Handler("mutex")))
		mux.Handle("GET /debug/pprof/threadcreate", debugAuth(pprof.Handler("threadcreate")))
		// Catch-all for index
		mux.Handle("GET /debug/pprof/{name...}", debugAuth(http.HandlerFunc(pprof.Index)))
	}

	if debugEnabled {
		s.logger.Warn("debug mode enabled - debug endpoints require authentication")
		mux.Handle("GET /debug/vocab", debugAuth(http.HandlerFunc(s.handleDebugVocab)))
		mux.Handle("GET /debug/artifacts", debugAuth(http.HandlerFunc(s.handleDebugArtifacts)))
	}
}
