package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/assistant"
	"github.com/llehouerou/novatone/internal/errmsg"
	"github.com/llehouerou/novatone/internal/library"
	"github.com/llehouerou/novatone/internal/track"
)

const (
	maxBodyBytes        = 64 << 10
	recommendationSeeds = 5
)

// Store is the persistence the API reads stats and chat sessions from.
type Store interface {
	assistant.ChatStore
}

type tracksResponse struct {
	Tracks []track.Track `json:"tracks"`
	Offset int           `json:"offset"`
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

type chatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId,omitempty"`
}

type recommendationsRequest struct {
	History []string `json:"history"`
}

type recommendationsResponse struct {
	Genres []string `json:"genres"`
}

type healthResponse struct {
	Status    string   `json:"status"`
	Sources   []string `json:"sources"`
	Assistant bool     `json:"assistant"`
	Store     bool     `json:"store"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	var names []string
	if s.deps.Catalog != nil {
		for _, a := range s.deps.Catalog.Adapters() {
			names = append(names, a.Name())
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Sources:   names,
		Assistant: s.deps.Assistant.Enabled(),
		Store:     s.deps.Store != nil,
	})
}

// handleTrending never fails because of a provider; failing providers contribute nothing.
func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	offset, ok := parseOffset(w, r)
	if !ok {
		return
	}
	tracks := s.deps.Catalog.Trending(r.Context(), offset)
	writeJSON(w, http.StatusOK, tracksResponse{Tracks: s.tag(r, tracks), Offset: offset})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	offset, ok := parseOffset(w, r)
	if !ok {
		return
	}
	tracks := s.deps.Catalog.Search(r.Context(), r.URL.Query().Get("q"), offset)
	writeJSON(w, http.StatusOK, tracksResponse{Tracks: s.tag(r, tracks), Offset: offset})
}

// tag adds moods when the caller asks for them with ?moods=1.
func (s *Server) tag(r *http.Request, tracks []track.Track) []track.Track {
	if s.deps.Tagger == nil {
		return tracks
	}
	if want, _ := strconv.ParseBool(r.URL.Query().Get("moods")); !want {
		return tracks
	}
	return s.deps.Tagger.TagAll(r.Context(), tracks)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if s.deps.Store == nil {
		if strings.TrimSpace(req.Message) == "" {
			writeError(w, http.StatusBadRequest, assistant.ErrEmptyMessage.Error())
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{
			Reply: s.deps.Assistant.Chat(r.Context(), req.Message, nil, nil),
		})
		return
	}

	reply, id, err := s.deps.Assistant.Converse(r.Context(), s.deps.Store, req.SessionID, req.Message)
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, library.ErrNotFound):
		writeError(w, http.StatusNotFound, errmsg.Format(errmsg.OpChatSession, err))
	case err != nil && reply == "":
		s.logger.Error("chat failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errmsg.Format(errmsg.OpChatSend, err))
	default:
		if err != nil {
			// The reply exists; only saving it failed.
			s.logger.Warn("chat not saved", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, chatResponse{Reply: reply, SessionID: id})
	}
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	history := req.History
	if len(history) == 0 {
		history = s.recentTitles(r.Context())
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{
		Genres: s.deps.Assistant.Recommendations(r.Context(), history),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeJSON(w, http.StatusOK, []library.TrackStat{})
		return
	}
	n := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		var err error
		if n, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}
	stats, err := s.deps.Store.TopStats(r.Context(), n)
	if err != nil {
		s.logger.Error("load stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) recentTitles(ctx context.Context) []string {
	if s.deps.Store == nil {
		return nil
	}
	stats, err := s.deps.Store.TopStats(ctx, recommendationSeeds)
	if err != nil {
		s.logger.Warn("load stats for recommendations failed", zap.Error(err))
		return nil
	}
	titles := make([]string, 0, len(stats))
	for _, st := range stats {
		titles = append(titles, st.Title)
	}
	return titles
}

func parseOffset(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("offset")
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
