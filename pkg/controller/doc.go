// Package controller contains HTTP middlewares and small response helpers
// used by the API server.
//
// Middlewares:
//   - WithCORS: CORS headers for browser clients downloading reports, OPTIONS preflight.
//   - WithLogger: request ID and request-scoped logger in the context, access log.
//
// Helpers:
//   - WriteJSON / WriteError: JSON bodies, semantic error kinds mapped to status codes.
//   - PprofMux: net/http/pprof handlers under PprofPrefix.
package controller
