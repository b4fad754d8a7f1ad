package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/meeplemedia/creatordex/pkg/youtube"
)

// Handler builds the HTTP API for the proxy: channel metadata, handle
// resolution, cached logo files and a health probe.
func Handler(svc *ChannelService, images *ImageCache) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/channel/{channelID}", func(w http.ResponseWriter, req *http.Request) {
		channelID := chi.URLParam(req, "channelID")
		if channelID == "" {
			writeError(w, http.StatusBadRequest, "channel id is required")
			return
		}

		info, err := svc.Channel(req.Context(), channelID)
		if err != nil {
			if eris.Is(err, youtube.ErrNotFound) {
				writeError(w, http.StatusNotFound, "channel not found")
				return
			}
			zap.L().Error("server: channel lookup failed", zap.String("channel_id", channelID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "channel lookup failed")
			return
		}

		out := *info
		if images != nil && out.Logo != "" {
			if local, err := images.Fetch(req.Context(), channelID, out.Logo); err == nil {
				out.Logo = local
			} else {
				zap.L().Warn("server: logo cache failed", zap.String("channel_id", channelID), zap.Error(err))
			}
		}
		writeJSON(w, http.StatusOK, &out)
	})

	r.Get("/api/resolve", func(w http.ResponseWriter, req *http.Request) {
		query := strings.TrimSpace(req.URL.Query().Get("q"))
		if query == "" {
			writeError(w, http.StatusBadRequest, "query parameter q is required")
			return
		}

		res, err := svc.Resolve(req.Context(), query)
		if err != nil {
			if eris.Is(err, youtube.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no channel matched the query")
				return
			}
			zap.L().Error("server: resolve failed", zap.String("query", query), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "channel resolution failed")
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	if images != nil {
		fs := http.StripPrefix("/cache/", http.FileServer(http.Dir(images.Dir())))
		r.Get("/cache/*", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=86400")
			fs.ServeHTTP(w, req)
		})
	}

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		zap.L().Info("http request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", ww.Status()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
