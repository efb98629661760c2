package server

import (
	"net/http"
	"os"
)

func allowedOrigin() string {
	if v := os.Getenv("COUPLING_CORS_ALLOWED_ORIGIN"); v != "" {
		return v
	}
	return "*"
}

// Cors 为所有响应加上跨域头，OPTIONS 预检直接返回 204
func Cors(next http.Handler) http.Handler {
	origin := allowedOrigin()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
