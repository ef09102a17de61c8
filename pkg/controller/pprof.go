package controller

import (
	"net/http"
	"net/http/pprof"
)

// PprofPrefix is the path the profiling handlers are mounted under.
const PprofPrefix = "/debug/pprof/"

// PprofMux returns an http.ServeMux exposing net/http/pprof below PprofPrefix.
func PprofMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Index also serves the named profiles (heap, goroutine, ...).
	mux.HandleFunc(PprofPrefix, pprof.Index)
	mux.HandleFunc(PprofPrefix+"cmdline", pprof.Cmdline)
	mux.HandleFunc(PprofPrefix+"profile", pprof.Profile)
	mux.HandleFunc(PprofPrefix+"symbol", pprof.Symbol)
	mux.HandleFunc(PprofPrefix+"trace", pprof.Trace)

	return mux
}
