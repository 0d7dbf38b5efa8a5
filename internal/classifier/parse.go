package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gao-dev/gao/pkg/models"
)

// parseAnalysis extracts a PromptAnalysis from a collaborator response.
// It tolerates markdown code fences and surrounding prose, then validates
// and clamps the parsed fields.
func parseAnalysis(response string) (models.PromptAnalysis, error) {
	var analysis models.PromptAnalysis

	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
		if idx := strings.LastIndex(response, "```"); idx != -1 {
			response = response[:idx]
		}
		response = strings.TrimSpace(response)
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
		if idx := strings.LastIndex(response, "```"); idx != -1 {
			response = response[:idx]
		}
		response = strings.TrimSpace(response)
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return analysis, fmt.Errorf("no JSON object found in response")
	}
	response = response[start : end+1]

	if err := json.Unmarshal([]byte(response), &analysis); err != nil {
		return analysis, fmt.Errorf("unmarshal analysis: %w", err)
	}

	return normalize(analysis)
}

// normalize validates and clamps parsed fields so downstream routing only
// ever sees in-range values.
func normalize(a models.PromptAnalysis) (models.PromptAnalysis, error) {
	a.ScaleLevel = a.ScaleLevel.Clamp()

	if !a.ProjectType.Valid() {
		a.ProjectType = models.ProjectGreenfield
	}

	if a.EstimatedStories < 1 {
		a.EstimatedStories = 1
	}
	if a.EstimatedEpics < 1 {
		a.EstimatedEpics = 1
	}

	if a.Confidence < 0 {
		a.Confidence = 0
	}
	if a.Confidence > 1 {
		a.Confidence = 1
	}

	if a.NeedsClarification && len(a.ClarifyingQuestions) == 0 {
		a.ClarifyingQuestions = []string{
			"Can you describe the scope of the request in more detail?",
		}
	}

	return a, nil
}
