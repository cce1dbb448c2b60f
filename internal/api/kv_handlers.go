package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func readValue(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	return string(body), nil
}

// kvAdd stores the raw request body. ?ttl=30s makes the entry expire.
func (s *Server) kvAdd(w http.ResponseWriter, r *http.Request) {
	value, err := readValue(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var ttl time.Duration
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil || ttl < 0 {
			s.writeError(w, r, fmt.Errorf("%w: bad ttl %q", errBadRequest, raw))
			return
		}
	}
	if err := s.kv.Add(r.Context(), chi.URLParam(r, "key"), value, ttl); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) kvGet(w http.ResponseWriter, r *http.Request) {
	value, err := s.kv.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, value)
}

func (s *Server) kvUpdate(w http.ResponseWriter, r *http.Request) {
	value, err := readValue(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.kv.Update(r.Context(), chi.URLParam(r, "key"), value); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) kvRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.kv.Remove(r.Context(), chi.URLParam(r, "key")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) kvKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.kv.Keys(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, keys)
}
