// Package selector maps a prompt analysis to an ordered workflow
// sequence. Selection is a pure deterministic table keyed by project type
// and scale level; identical analyses always yield identical sequences.
package selector

import (
	"fmt"

	"github.com/gao-dev/gao/internal/workflow"
	"github.com/gao-dev/gao/pkg/models"
)

// scaleBounds clamps story and epic estimates into the range the routing
// table promises for each scale level.
type scaleBounds struct {
	minStories, maxStories int
	minEpics, maxEpics     int
}

var bounds = map[models.ScaleLevel]scaleBounds{
	models.ScaleAtomic:  {1, 1, 1, 1},
	models.ScaleSmall:   {2, 10, 1, 1},
	models.ScaleMedium:  {5, 15, 1, 2},
	models.ScaleLarge:   {12, 40, 2, 5},
	models.ScaleMassive: {20, 100, 3, 10},
}

// Selector builds sequences from a workflow registry.
type Selector struct {
	registry *workflow.Registry
}

// New creates a Selector over the given registry.
func New(registry *workflow.Registry) *Selector {
	return &Selector{registry: registry}
}

// Select maps an analysis to a workflow sequence. When the analysis asks
// for clarification the returned sequence has no workflows and carries the
// clarifying questions; callers must not execute it.
func (s *Selector) Select(analysis models.PromptAnalysis) (models.WorkflowSequence, error) {
	if analysis.NeedsClarification {
		questions := analysis.ClarifyingQuestions
		if len(questions) == 0 {
			questions = []string{"Can you describe the request in more detail?"}
		}
		return models.WorkflowSequence{
			ClarifyingQuestions: questions,
			Rationale:           "classification needs clarification before routing",
		}, nil
	}

	if analysis.ProjectType == models.ProjectGame {
		names := []string{models.WorkflowGameBrief, models.WorkflowGameDesignDoc}
		workflows, err := s.lookup(names)
		if err != nil {
			return models.WorkflowSequence{}, err
		}
		return models.WorkflowSequence{
			Workflows:        workflows,
			EstimatedStories: 0,
			EstimatedEpics:   0,
			Rationale:        "game project: fixed brief and design document sequence",
		}, nil
	}

	scale := analysis.ScaleLevel.Clamp()
	b := bounds[scale]
	stories := clamp(analysis.EstimatedStories, b.minStories, b.maxStories)
	epics := clamp(analysis.EstimatedEpics, b.minEpics, b.maxEpics)

	var names []string
	var perEpicTechSpec bool
	var rationale string

	switch scale {
	case models.ScaleAtomic:
		names = []string{
			models.WorkflowTechSpec,
			models.WorkflowCreateStory,
			models.WorkflowImplementStory,
			models.WorkflowCloseStory,
		}
		stories = 1
		epics = 1
		rationale = "atomic change: single story with a minimal tech spec"

	case models.ScaleSmall:
		names = []string{
			models.WorkflowTechSpec,
			models.WorkflowCreateStory,
			models.WorkflowImplementStory,
			models.WorkflowCloseStory,
		}
		rationale = "small feature: tech spec plus story loop, one epic"

	case models.ScaleMedium:
		names = []string{
			models.WorkflowRequirementsDoc,
			models.WorkflowTechSpec,
			models.WorkflowCreateStory,
			models.WorkflowImplementStory,
			models.WorkflowCloseStory,
		}
		rationale = "medium project: written requirements before the tech spec"

	default: // ScaleLarge, ScaleMassive
		names = []string{
			models.WorkflowRequirementsDoc,
			models.WorkflowArchitectureDoc,
			models.WorkflowTechSpec,
			models.WorkflowCreateStory,
			models.WorkflowImplementStory,
			models.WorkflowCloseStory,
		}
		perEpicTechSpec = true
		rationale = "large project: requirements and architecture up front, tech spec generated per epic"
	}

	if analysis.ProjectType == models.ProjectBrownfield {
		names = append([]string{models.WorkflowDocumentProject}, names...)
		rationale = "brownfield: discovery first; " + rationale
	}

	workflows, err := s.lookup(names)
	if err != nil {
		return models.WorkflowSequence{}, err
	}

	return models.WorkflowSequence{
		Workflows:        workflows,
		EstimatedStories: stories,
		EstimatedEpics:   epics,
		PerEpicTechSpec:  perEpicTechSpec,
		Rationale:        rationale,
	}, nil
}

// lookup resolves workflow names against the registry, in order.
func (s *Selector) lookup(names []string) ([]models.WorkflowDefinition, error) {
	defs := make([]models.WorkflowDefinition, 0, len(names))
	for _, name := range names {
		def, err := s.registry.Get(name)
		if err != nil {
			return nil, fmt.Errorf("build sequence: %w", err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
