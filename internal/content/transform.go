package content

import (
	"math"
	"sort"
)

// SortProjectsByFeatured returns a copy with every featured project
// before every non-featured one, preserving relative order within each
// group.
func SortProjectsByFeatured(projects []Project) []Project {
	out := make([]Project, len(projects))
	copy(out, projects)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Featured && !out[j].Featured
	})
	return out
}

// SortPostsByDate returns a copy ordered newest-first.
func SortPostsByDate(posts []Post) []Post {
	out := make([]Post, len(posts))
	copy(out, posts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

// Percentage converts part of max into a rounded percentage clamped to
// [0,100]. A non-positive max yields 0.
func Percentage(part, max int) int {
	if max <= 0 {
		return 0
	}
	p := int(math.Round(float64(part) / float64(max) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// TruncateText shortens s to at most max runes plus a "..." marker.
// Strings that already fit are returned unchanged.
func TruncateText(s string, max int) string {
	if max < 0 {
		max = 0
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
