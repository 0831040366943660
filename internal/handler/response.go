package handler

import (
	"net/http"
	"time"

	"github.com/poefarm/tracker-server-go/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

func unixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
