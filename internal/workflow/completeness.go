package workflow

import (
	"strings"

	"clickdone/internal/database"
)

// Completeness holds the per-section flags derived from a persisted
// draft. All four must hold before Submit is allowed.
type Completeness struct {
	Basic      bool `json:"basic"`
	Design     bool `json:"design"`
	Functional bool `json:"functional"`
	Timeline   bool `json:"timeline"`
}

// Complete reports whether every section is filled in.
func (c Completeness) Complete() bool {
	return c.Basic && c.Design && c.Functional && c.Timeline
}

// CheckCompleteness derives the section flags from a request's persisted
// fields:
//
//	basic:      title and description both present
//	design:     a color scheme or a style description
//	functional: at least one non-blank requirement entry
//	timeline:   a budget, a deadline, or an expected timeline
func CheckCompleteness(req *database.WebsiteRequest) Completeness {
	functional := false
	for _, entry := range req.FunctionalRequirements {
		if strings.TrimSpace(entry) != "" {
			functional = true
			break
		}
	}

	return Completeness{
		Basic:      req.Title != "" && req.Description != "",
		Design:     req.ColorScheme != "" || req.StyleDescription != "",
		Functional: functional,
		Timeline:   req.Budget != nil || req.Deadline != nil || req.ExpectedTimeline != "",
	}
}
