package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pefman/squad-combat/internal/models"
	"github.com/pefman/squad-combat/internal/roster"
)

// maxBodyBytes bounds request bodies; rosters are small.
const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GET /api/roster/default
func (s *Server) handleDefaultRoster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, roster.DefaultSpecs())
}

// POST /api/combat
// Body: { seed?, roster?: [...], max_rounds? }
func (s *Server) handleCombat(w http.ResponseWriter, r *http.Request) {
	var req models.CombatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	resp, err := s.runCombat(r.Context(), req, nil)
	if err != nil {
		if errors.Is(err, errBadRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Printf("server: combat failed: %v", err)
		writeError(w, http.StatusInternalServerError, "combat failed")
		return
	}
	writeJSON(w, resp)
}

// GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.stats.Summary())
}
