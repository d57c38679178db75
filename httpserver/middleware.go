package httpserver

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/sitewarden/sitecloner/api"
)

// requireFunctionKey rejects requests that do not present one of the
// configured access keys, either in the x-functions-key header or the code
// query parameter. A server deployed without keys skips the check.
func (srv *Server) requireFunctionKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(srv.cfg.FunctionKeys) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		presented := r.Header.Get(api.FunctionKeyHeader)
		if presented == "" {
			presented = r.URL.Query().Get(api.CodeQueryParam)
		}

		for _, key := range srv.cfg.FunctionKeys {
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
		}

		srv.log.Warn("Rejected request without valid function key",
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}
