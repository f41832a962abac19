package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sw33tLie/groupgen/internal/utils"
	"github.com/sw33tLie/groupgen/pkg/generation"
	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/group"
	"github.com/sw33tLie/groupgen/pkg/storage"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Log.Debugf("writing response: %v", err)
	}
}

type statsResponse struct {
	Generators []storage.GeneratorStats `json:"generators"`
	Recent     []generator.Record       `json:"recentGenerations"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.DB.GetStats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	recent, err := s.DB.ListRecentGenerations(r.Context(), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, statsResponse{Generators: stats, Recent: recent})
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.DB.ListLatestGroups(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, groups)
}

// handleGroup returns the latest version of a group, or the one saved at
// ?timestamp=.
func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	search := group.Search{GroupName: r.PathValue("name"), Latest: true}
	if ts := r.URL.Query().Get("timestamp"); ts != "" {
		timestamp, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			http.Error(w, "invalid timestamp", http.StatusBadRequest)
			return
		}
		search.Latest = false
		search.Timestamp = timestamp
	}

	groups, err := s.DB.SearchGroups(r.Context(), search)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(groups) == 0 {
		http.Error(w, "group not found", http.StatusNotFound)
		return
	}
	writeJSON(w, groups[0])
}

type generatorResponse struct {
	Name      string   `json:"name"`
	Frequency string   `json:"frequency"`
	DependsOn []string `json:"dependsOn"`
	Level     int      `json:"level"`
}

// handleGenerators lists the loaded generators in execution order.
func (s *Server) handleGenerators(w http.ResponseWriter, r *http.Request) {
	out := []generatorResponse{}
	if s.Library == nil {
		writeJSON(w, out)
		return
	}

	levels, err := generation.ComputeLevelOfDependencies(s.Library, s.Library.Names())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, l := range generation.SortByLevel(levels) {
		def, _ := s.Library.Get(l.Name)
		dependsOn := def.DependsOn
		if dependsOn == nil {
			dependsOn = []string{}
		}
		out = append(out, generatorResponse{
			Name:      def.Name,
			Frequency: string(def.Frequency),
			DependsOn: dependsOn,
			Level:     l.Level,
		})
	}
	writeJSON(w, out)
}
