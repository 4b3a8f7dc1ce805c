package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/imagecache"
)

const maxBody = 8 << 20

// authed rejects API calls without a bearer credential.
func authed(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "user not authenticated")
			return
		}
		h(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"message": msg}})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleSaveResult(w http.ResponseWriter, r *http.Request) {
	var res brief.Result
	if !readJSON(w, r, &res) {
		return
	}
	if res.BriefID == "" {
		writeError(w, http.StatusBadRequest, "briefId is required")
		return
	}
	if err := s.store.Save(r.Context(), &res); err != nil {
		log.Printf("Error saving result %s: %v", res.BriefID, err)
		writeError(w, http.StatusInternalServerError, "could not save result")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"briefId": res.BriefID})
}

func (s *Server) handleUpdateResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var p brief.Patch
	if !readJSON(w, r, &p) {
		return
	}
	if err := s.store.Update(r.Context(), id, p); err != nil {
		log.Printf("Error updating result %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not update result")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"briefId": id})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := s.store.Get(r.Context(), id)
	if err != nil {
		log.Printf("Error reading result %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not read result")
		return
	}
	if res == nil {
		writeError(w, http.StatusNotFound, "result not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		log.Printf("Error listing results: %v", err)
		writeError(w, http.StatusInternalServerError, "could not list results")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleCacheAdd accepts the multipart form the image cache client sends:
// imageUrl plus the JSON-encoded entry in imageData.
func (s *Server) handleCacheAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBody); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	var e imagecache.Entry
	if err := json.Unmarshal([]byte(r.FormValue("imageData")), &e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid imageData: "+err.Error())
		return
	}
	if u := r.FormValue("imageUrl"); u != "" {
		e.ImageURL = u
	}
	if e.Prompt == "" || e.ImageURL == "" {
		writeError(w, http.StatusBadRequest, "prompt and imageUrl are required")
		return
	}

	if err := s.cache.Add(r.Context(), e); err != nil {
		log.Printf("Error caching image: %v", err)
		writeError(w, http.StatusInternalServerError, "could not cache image")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

type findResponse struct {
	Found bool `json:"found"`
	*imagecache.Hit
}

func (s *Server) handleCacheFind(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prompt := q.Get("prompt")
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	var params brief.GenerationParams
	var meta imagecache.Metadata
	if v := q.Get("params"); v != "" {
		if err := json.Unmarshal([]byte(v), &params); err != nil {
			writeError(w, http.StatusBadRequest, "invalid params")
			return
		}
	}
	if v := q.Get("metadata"); v != "" {
		if err := json.Unmarshal([]byte(v), &meta); err != nil {
			writeError(w, http.StatusBadRequest, "invalid metadata")
			return
		}
	}

	hit, err := s.cache.Find(r.Context(), prompt, params, meta)
	if err != nil {
		log.Printf("Error looking up cached image: %v", err)
		writeError(w, http.StatusInternalServerError, "could not look up image")
		return
	}
	writeJSON(w, http.StatusOK, findResponse{Found: hit != nil, Hit: hit})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.cache.Stats(r.Context())
	if err != nil {
		log.Printf("Error reading cache stats: %v", err)
		writeError(w, http.StatusInternalServerError, "could not read stats")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCacheCleanup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OlderThanDays *int `json:"olderThanDays"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.OlderThanDays == nil {
		writeError(w, http.StatusBadRequest, "olderThanDays is required")
		return
	}

	n, err := s.cache.Clear(r.Context(), *req.OlderThanDays)
	if errors.Is(err, imagecache.ErrInvalidAge) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("Error clearing image cache: %v", err)
		writeError(w, http.StatusInternalServerError, "could not clear cache")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
