package server

import (
	"net/http"

	"github.com/muneebexotic/portfolio-api/internal/content"
)

// handleProjects serves the catalog featured-first, summaries truncated
// to the configured length. ?featured=true narrows to featured projects.
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects := content.SortProjectsByFeatured(s.catalog.Projects)

	q := r.URL.Query().Get("featured")
	if q == "true" || q == "1" {
		filtered := projects[:0:0]
		for _, p := range projects {
			if p.Featured {
				filtered = append(filtered, p)
			}
		}
		projects = filtered
	}

	for i := range projects {
		projects[i].Summary = content.TruncateText(projects[i].Summary, s.cfg.Content.SummaryLength)
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handlePosts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, content.SortPostsByDate(s.catalog.Posts))
}

type skillView struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Percent  int    `json:"percent"`
}

func (s *Server) handleSkills(w http.ResponseWriter, _ *http.Request) {
	views := make([]skillView, 0, len(s.catalog.Skills))
	for _, sk := range s.catalog.Skills {
		views = append(views, skillView{
			Name:     sk.Name,
			Category: sk.Category,
			Percent:  content.Percentage(sk.Level, content.SkillLevelMax),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleExperience(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Experience)
}
