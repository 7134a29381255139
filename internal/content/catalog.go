// Package content holds the site catalog (projects, skills, experience,
// blog post metadata) and the pure transforms applied before serving it.
package content

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Project struct {
	Title    string    `yaml:"title" json:"title"`
	Slug     string    `yaml:"slug" json:"slug"`
	Summary  string    `yaml:"summary" json:"summary"`
	Tags     []string  `yaml:"tags" json:"tags,omitempty"`
	RepoURL  string    `yaml:"repo_url" json:"repoUrl,omitempty"`
	DemoURL  string    `yaml:"demo_url" json:"demoUrl,omitempty"`
	Featured bool      `yaml:"featured" json:"featured"`
	Date     time.Time `yaml:"date" json:"date"`
}

// SkillLevelMax is the scale skills are authored on; levels are served
// as percentages of it.
const SkillLevelMax = 10

type Skill struct {
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category" json:"category"`
	Level    int    `yaml:"level" json:"-"`
}

type Experience struct {
	Company    string   `yaml:"company" json:"company"`
	Role       string   `yaml:"role" json:"role"`
	Start      string   `yaml:"start" json:"start"`
	End        string   `yaml:"end" json:"end,omitempty"`
	Highlights []string `yaml:"highlights" json:"highlights,omitempty"`
}

type Post struct {
	Title       string    `yaml:"title" json:"title"`
	Slug        string    `yaml:"slug" json:"slug"`
	Summary     string    `yaml:"summary" json:"summary"`
	Tags        []string  `yaml:"tags" json:"tags,omitempty"`
	PublishedAt time.Time `yaml:"published_at" json:"publishedAt"`
}

type Catalog struct {
	Projects   []Project    `yaml:"projects"`
	Skills     []Skill      `yaml:"skills"`
	Experience []Experience `yaml:"experience"`
	Posts      []Post       `yaml:"posts"`
}

// Load reads and validates the catalog file. The catalog is immutable
// after startup; post bodies live elsewhere and are not loaded here.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	slugs := make(map[string]bool, len(c.Projects)+len(c.Posts))
	for i, p := range c.Projects {
		if p.Title == "" || p.Slug == "" {
			return fmt.Errorf("project %d requires title and slug", i)
		}
		if slugs[p.Slug] {
			return fmt.Errorf("duplicate slug %q", p.Slug)
		}
		slugs[p.Slug] = true
	}
	for i, p := range c.Posts {
		if p.Title == "" || p.Slug == "" {
			return fmt.Errorf("post %d requires title and slug", i)
		}
		if slugs[p.Slug] {
			return fmt.Errorf("duplicate slug %q", p.Slug)
		}
		slugs[p.Slug] = true
	}
	for i, s := range c.Skills {
		if s.Name == "" {
			return fmt.Errorf("skill %d requires a name", i)
		}
		if s.Level < 0 || s.Level > SkillLevelMax {
			return fmt.Errorf("skill %q level must be within [0,%d]", s.Name, SkillLevelMax)
		}
	}
	for i, e := range c.Experience {
		if e.Company == "" || e.Role == "" {
			return fmt.Errorf("experience %d requires company and role", i)
		}
	}
	return nil
}
