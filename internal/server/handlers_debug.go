package server

import (
	"net/http"

	"github.com/undercut/pitwall/internal/storage"
)

// DebugVocabResponse lists the category values the served model was fit
// with. Untrained servers report the catalog tables instead, since the
// fallback curve accepts anything.
type DebugVocabResponse struct {
	Trained   bool     `json:"trained"`
	Compounds []string `json:"compounds"`
	Drivers   []string `json:"drivers"`
	Tracks    []string `json:"tracks"`
}

// handleDebugVocab handles GET /debug/vocab. It answers the question behind
// most 422 responses: which compound/driver/track values the snapshot knows.
func (s *Server) handleDebugVocab(w http.ResponseWriter, r *http.Request) {
	resp := DebugVocabResponse{}

	if snap := s.model.Current(); snap != nil {
		resp.Trained = true
		resp.Compounds = snap.Encoders.Compound.Classes()
		resp.Drivers = snap.Encoders.Driver.Classes()
		resp.Tracks = snap.Encoders.Track.Classes()
	} else {
		for _, p := range s.catalog.Compounds() {
			resp.Compounds = append(resp.Compounds, string(p.Compound))
		}
		for _, d := range s.catalog.RankedDrivers() {
			resp.Drivers = append(resp.Drivers, d.Code)
		}
		for _, t := range s.catalog.Tracks() {
			resp.Tracks = append(resp.Tracks, t.Name)
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

type DebugArtifactsResponse struct {
	Model storage.ArtifactInfo `json:"model"`
	Agent storage.ArtifactInfo `json:"agent"`
}

// handleDebugArtifacts handles GET /debug/artifacts. Paths and file sizes
// stay off the public status surface.
func (s *Server) handleDebugArtifacts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, DebugArtifactsResponse{
		Model: s.store.ModelInfo(),
		Agent: s.store.AgentInfo(),
	})
}
