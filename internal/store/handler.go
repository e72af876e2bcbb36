package store

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/debemdeboas/the-feed/internal/config"
	"github.com/debemdeboas/the-feed/internal/model"
	"github.com/debemdeboas/the-feed/internal/routes"
)

type Handler struct {
	repo Repository
	mux  *http.ServeMux
}

func NewHandler(repo Repository) *Handler {
	h := &Handler{
		repo: repo,
		mux:  http.NewServeMux(),
	}

	h.mux.HandleFunc(routes.Health, h.serveHealth)
	h.mux.HandleFunc(routes.ListPosts, h.serveList)
	h.mux.HandleFunc(routes.CreatePost, h.serveCreate)
	h.mux.HandleFunc(routes.GetPost, h.serveGet)
	h.mux.HandleFunc(routes.UpdatePost, h.serveUpdate)
	h.mux.HandleFunc(routes.DeletePost, h.serveDelete)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// NewServer mounts the handler under basePath with security headers and request logging.
func NewServer(basePath string, repo Repository) http.Handler {
	var handler http.Handler = NewHandler(repo)
	if basePath = strings.TrimRight(basePath, "/"); basePath != "" {
		handler = http.StripPrefix(basePath, handler)
	}
	return logRequests(secureHeaders(handler.ServeHTTP))
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		h(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		h.ServeHTTP(rec, r)

		storeLogger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request served")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.Header().Set(config.HCacheControl, "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		storeLogger.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError maps repository errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		http.Error(w, config.HTTPErrPostNotFound, http.StatusNotFound)
	case errors.Is(err, ErrInvalidPost):
		http.Error(w, config.HTTPErrAuthorContent, http.StatusBadRequest)
	default:
		storeLogger.Error().Err(err).Msg("Repository error")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func decodeInput(w http.ResponseWriter, r *http.Request) (model.PostInput, bool) {
	var in model.PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		storeLogger.Debug().Err(err).Msg("Invalid request body")
		http.Error(w, config.HTTPErrInvalidBody, http.StatusBadRequest)
		return in, false
	}
	return in, true
}

func (h *Handler) serveHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) serveList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.repo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) serveGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.repo.Get(r.Context(), model.PostID(r.PathValue(routes.PostIDParam)))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) serveCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	post, err := h.repo.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	storeLogger.Info().Str("post_id", string(post.ID)).Str("author", post.Author).Msg("Post created")
	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) serveUpdate(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	post, err := h.repo.Update(r.Context(), model.PostID(r.PathValue(routes.PostIDParam)), in)
	if err != nil {
		writeError(w, err)
		return
	}

	storeLogger.Info().Str("post_id", string(post.ID)).Msg("Post updated")
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) serveDelete(w http.ResponseWriter, r *http.Request) {
	id := model.PostID(r.PathValue(routes.PostIDParam))
	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	storeLogger.Info().Str("post_id", string(id)).Msg("Post deleted")
	w.WriteHeader(http.StatusNoContent)
}
