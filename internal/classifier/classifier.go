// Package classifier converts a free-text request into a structured
// routing decision via an injected analysis collaborator.
package classifier

import (
	"context"

	"github.com/gao-dev/gao/pkg/models"
)

// AnalysisCollaborator is the opaque structured-text-in, JSON-out
// function the classifier delegates to. Implementations are expected to
// be timeout-bounded; their output is unverified until parsed.
type AnalysisCollaborator interface {
	Analyze(ctx context.Context, prompt string, model string) (string, error)
}

// Classifier classifies requests into PromptAnalysis values.
type Classifier struct {
	collaborator AnalysisCollaborator
	model        string
}

// New creates a Classifier using the given collaborator and model ID.
func New(collaborator AnalysisCollaborator, model string) *Classifier {
	return &Classifier{collaborator: collaborator, model: model}
}

// Classify analyzes a request and always returns a usable analysis.
// Collaborator failures and malformed responses degrade to the safe
// default (scale 2, needs_clarification) instead of erroring: routing
// must always receive a value it can act on.
func (c *Classifier) Classify(ctx context.Context, request string) models.PromptAnalysis {
	prompt := buildPrompt(request)

	raw, err := c.collaborator.Analyze(ctx, prompt, c.model)
	if err != nil {
		return defaultAnalysis("analysis call failed: " + err.Error())
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		return defaultAnalysis("analysis response unparseable: " + err.Error())
	}

	return analysis
}

// defaultAnalysis is the safe fallback when classification cannot commit.
func defaultAnalysis(reason string) models.PromptAnalysis {
	return models.PromptAnalysis{
		ScaleLevel:         models.ScaleMedium,
		ProjectType:        models.ProjectGreenfield,
		EstimatedStories:   8,
		EstimatedEpics:     1,
		Confidence:         0,
		Reasoning:          reason,
		NeedsClarification: true,
		ClarifyingQuestions: []string{
			"Can you describe the scope of the request in more detail?",
		},
	}
}
