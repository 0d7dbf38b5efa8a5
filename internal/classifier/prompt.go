package classifier

// analysisPrompt is the fixed template sent to the analysis collaborator.
// The response contract mirrors models.PromptAnalysis.
const analysisPrompt = `You are a software delivery planner. Analyze the following request and
classify its complexity.

Scale levels:
- 0: atomic change (fix a typo, tweak one file) - exactly 1 story
- 1: small feature (2-10 stories, 1 epic)
- 2: medium feature set needing written requirements (5-15 stories, 1-2 epics)
- 3: large multi-epic project needing architecture work (12-40 stories, 2-5 epics)
- 4: platform-scale effort (40+ stories, 5+ epics)

Project types:
- "greenfield": a new codebase
- "brownfield": changes to an existing codebase that must be surveyed first
- "game": a game project

Respond with a JSON object in this exact format:
{
  "scale_level": 2,
  "project_type": "greenfield",
  "estimated_stories": 8,
  "estimated_epics": 1,
  "confidence": 0.85,
  "reasoning": "one or two sentences",
  "needs_clarification": false,
  "clarifying_questions": []
}

IMPORTANT:
- scale_level must be an integer 0-4
- confidence must be between 0 and 1
- Set needs_clarification true and fill clarifying_questions only when the
  request is too vague to plan
- Do not include any text before or after the JSON object

Request to analyze:
`

// buildPrompt appends the request to the fixed template.
func buildPrompt(request string) string {
	return analysisPrompt + request
}
