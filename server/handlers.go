package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/CodMac/go-treesitter-coupling-analyzer/analyzer"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/CodMac/go-treesitter-coupling-analyzer/output"
	"github.com/CodMac/go-treesitter-coupling-analyzer/store"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Uptime    string            `json:"uptime,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

type AnalyzeRequest struct {
	Path     string `json:"path"`
	Language string `json:"language,omitempty"`
	Limit    int    `json:"limit,omitempty"` // 返回的耦合关系数量，默认 10
}

type AnalyzeResponse struct {
	Snapshot     store.Summary     `json:"snapshot"`
	Files        int               `json:"files"`
	Duration     string            `json:"duration"`
	TopRelations []output.Relation `json:"topRelations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "coupling-api",
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Details: map[string]string{
			"go_version": runtime.Version(),
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.Path = strings.TrimSpace(req.Path)
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	opts := s.opts
	if req.Language != "" {
		opts.Language = model.Language(strings.ToLower(req.Language))
	}
	res, err := analyzer.New(opts, s.logger).Analyze(r.Context(), req.Path)
	switch {
	case errors.Is(err, analyzer.ErrUnsupportedLanguage):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, fs.ErrNotExist):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.logger.Error("analysis failed", "path", req.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc := output.BuildDocument(res.Graph)
	snap := store.NewSnapshot(res.Root, string(res.Language), doc)
	if err := s.store.Save(r.Context(), snap); err != nil {
		s.logger.Error("failed to save snapshot", "id", snap.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}

	writeJSON(w, http.StatusCreated, AnalyzeResponse{
		Snapshot:     snap.Summary(),
		Files:        res.Files,
		Duration:     res.Duration.String(),
		TopRelations: doc.TopRelations(req.Limit),
	})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list snapshots", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request) (*store.Snapshot, bool) {
	id := r.PathValue("id")
	snap, err := s.store.Load(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "snapshot "+id+" not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to load snapshot", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return nil, false
	}
	return snap, true
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.loadSnapshot(w, r); ok {
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleGetClass(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	class := r.PathValue("class")
	cd, ok := snap.Document[class]
	if !ok {
		writeError(w, http.StatusNotFound, "class "+class+" not found")
		return
	}
	writeJSON(w, http.StatusOK, cd)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
