package api

import (
	"net/http"

	"github.com/dgallion1/scoregest/internal/competition"
)

// handleCompetitionInfo extracts competition info from an uploaded results
// index page. The optional url query parameter is the page's address, used
// to infer the type and resolve score links.
func (s *Server) handleCompetitionInfo(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, 4<<20)
	info, err := competition.ParseIndexPage(body, r.Header.Get("Content-Type"), r.URL.Query().Get("url"))
	if err != nil {
		jsonError(w, "parse index page: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if season := r.URL.Query().Get("season"); season != "" {
		writeJSON(w, http.StatusOK, map[string]any{"info": info, "context": info.Context(season)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"info": info})
}
