// Package models contains shared value types for the gao engine.
package models

import "fmt"

// ScaleLevel classifies project size and complexity on a 0-4 scale.
type ScaleLevel int

const (
	// ScaleAtomic is a single trivial change (one story).
	ScaleAtomic ScaleLevel = 0
	// ScaleSmall is a small feature (one epic, a handful of stories).
	ScaleSmall ScaleLevel = 1
	// ScaleMedium is a mid-size feature set needing written requirements.
	ScaleMedium ScaleLevel = 2
	// ScaleLarge is a multi-epic project needing architecture work.
	ScaleLarge ScaleLevel = 3
	// ScaleMassive is a platform-scale effort.
	ScaleMassive ScaleLevel = 4
)

// Valid returns true if the scale level is within the 0-4 range.
func (s ScaleLevel) Valid() bool {
	return s >= ScaleAtomic && s <= ScaleMassive
}

// String returns a human-readable label for the scale level.
func (s ScaleLevel) String() string {
	switch s {
	case ScaleAtomic:
		return "atomic"
	case ScaleSmall:
		return "small"
	case ScaleMedium:
		return "medium"
	case ScaleLarge:
		return "large"
	case ScaleMassive:
		return "massive"
	default:
		return fmt.Sprintf("scale(%d)", int(s))
	}
}

// Clamp forces the scale level into the 0-4 range.
func (s ScaleLevel) Clamp() ScaleLevel {
	if s < ScaleAtomic {
		return ScaleAtomic
	}
	if s > ScaleMassive {
		return ScaleMassive
	}
	return s
}

// ProjectType categorizes the kind of project a request targets.
type ProjectType string

const (
	// ProjectGreenfield is a new codebase built from scratch.
	ProjectGreenfield ProjectType = "greenfield"
	// ProjectBrownfield is an existing codebase that needs discovery first.
	ProjectBrownfield ProjectType = "brownfield"
	// ProjectGame is a game project with its own fixed document set.
	ProjectGame ProjectType = "game"
)

// Valid returns true if the project type is a known value.
func (p ProjectType) Valid() bool {
	switch p {
	case ProjectGreenfield, ProjectBrownfield, ProjectGame:
		return true
	default:
		return false
	}
}

// PromptAnalysis is the structured classification of a free-text request.
// It is produced by the complexity classifier and consumed by the
// workflow selector; routing never branches on Confidence or Reasoning.
type PromptAnalysis struct {
	ScaleLevel         ScaleLevel  `json:"scale_level"`
	ProjectType        ProjectType `json:"project_type"`
	EstimatedStories   int         `json:"estimated_stories"`
	EstimatedEpics     int         `json:"estimated_epics"`
	Confidence         float64     `json:"confidence"`
	Reasoning          string      `json:"reasoning"`
	NeedsClarification bool        `json:"needs_clarification"`
	ClarifyingQuestions []string   `json:"clarifying_questions,omitempty"`
}
