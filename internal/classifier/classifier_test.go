package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gao-dev/gao/pkg/models"
)

// fakeCollaborator returns a canned response or error.
type fakeCollaborator struct {
	response string
	err      error
	gotPrompt string
	gotModel  string
}

func (f *fakeCollaborator) Analyze(_ context.Context, prompt, model string) (string, error) {
	f.gotPrompt = prompt
	f.gotModel = model
	return f.response, f.err
}

func TestClassifyParsesWellFormedResponse(t *testing.T) {
	fake := &fakeCollaborator{response: `{
		"scale_level": 3,
		"project_type": "greenfield",
		"estimated_stories": 24,
		"estimated_epics": 3,
		"confidence": 0.9,
		"reasoning": "multi-epic platform",
		"needs_clarification": false
	}`}
	c := New(fake, "claude-sonnet")

	got := c.Classify(context.Background(), "build a SaaS billing platform")

	if got.ScaleLevel != models.ScaleLarge {
		t.Errorf("ScaleLevel = %d, want 3", got.ScaleLevel)
	}
	if got.EstimatedStories != 24 || got.EstimatedEpics != 3 {
		t.Errorf("estimates = %d stories / %d epics", got.EstimatedStories, got.EstimatedEpics)
	}
	if got.NeedsClarification {
		t.Error("unexpected clarification request")
	}
	if !strings.Contains(fake.gotPrompt, "build a SaaS billing platform") {
		t.Error("request text not embedded in prompt")
	}
	if fake.gotModel != "claude-sonnet" {
		t.Errorf("model = %q", fake.gotModel)
	}
}

func TestClassifyHandlesMarkdownFences(t *testing.T) {
	fake := &fakeCollaborator{response: "```json\n" + `{
		"scale_level": 0,
		"project_type": "brownfield",
		"estimated_stories": 1,
		"estimated_epics": 1,
		"confidence": 0.95,
		"needs_clarification": false
	}` + "\n```"}
	c := New(fake, "m")

	got := c.Classify(context.Background(), "fix a typo in README")
	if got.ScaleLevel != models.ScaleAtomic {
		t.Errorf("ScaleLevel = %d, want 0", got.ScaleLevel)
	}
	if got.ProjectType != models.ProjectBrownfield {
		t.Errorf("ProjectType = %s", got.ProjectType)
	}
}

func TestClassifyHandlesSurroundingProse(t *testing.T) {
	fake := &fakeCollaborator{response: `Here is my analysis:
{"scale_level": 1, "project_type": "greenfield", "estimated_stories": 4, "estimated_epics": 1, "confidence": 0.7, "needs_clarification": false}
Hope that helps!`}
	c := New(fake, "m")

	got := c.Classify(context.Background(), "add a CSV export")
	if got.ScaleLevel != models.ScaleSmall || got.EstimatedStories != 4 {
		t.Errorf("analysis = %+v", got)
	}
}

func TestClassifyDegradesOnCollaboratorError(t *testing.T) {
	fake := &fakeCollaborator{err: errors.New("api unavailable")}
	c := New(fake, "m")

	got := c.Classify(context.Background(), "anything")
	assertDefault(t, got)
}

func TestClassifyDegradesOnGarbageResponse(t *testing.T) {
	for _, response := range []string{
		"",
		"no json here",
		"{not valid json]",
		`{"scale_level": "huge"}`,
	} {
		fake := &fakeCollaborator{response: response}
		c := New(fake, "m")

		got := c.Classify(context.Background(), "anything")
		assertDefault(t, got)
	}
}

func TestClassifyClampsOutOfRangeFields(t *testing.T) {
	fake := &fakeCollaborator{response: `{
		"scale_level": 11,
		"project_type": "spaceship",
		"estimated_stories": -5,
		"estimated_epics": 0,
		"confidence": 3.5,
		"needs_clarification": false
	}`}
	c := New(fake, "m")

	got := c.Classify(context.Background(), "anything")
	if got.ScaleLevel != models.ScaleMassive {
		t.Errorf("ScaleLevel = %d, want clamped to 4", got.ScaleLevel)
	}
	if got.ProjectType != models.ProjectGreenfield {
		t.Errorf("ProjectType = %s, want greenfield fallback", got.ProjectType)
	}
	if got.EstimatedStories != 1 || got.EstimatedEpics != 1 {
		t.Errorf("estimates = %d/%d, want floored to 1/1", got.EstimatedStories, got.EstimatedEpics)
	}
	if got.Confidence != 1 {
		t.Errorf("Confidence = %f, want clamped to 1", got.Confidence)
	}
}

func TestClassifyClarificationGetsQuestions(t *testing.T) {
	fake := &fakeCollaborator{response: `{
		"scale_level": 2,
		"project_type": "greenfield",
		"estimated_stories": 8,
		"estimated_epics": 1,
		"confidence": 0.3,
		"needs_clarification": true,
		"clarifying_questions": []
	}`}
	c := New(fake, "m")

	got := c.Classify(context.Background(), "make it better")
	if !got.NeedsClarification {
		t.Fatal("expected clarification")
	}
	if len(got.ClarifyingQuestions) == 0 {
		t.Error("clarification without questions")
	}
}

func assertDefault(t *testing.T, got models.PromptAnalysis) {
	t.Helper()
	if got.ScaleLevel != models.ScaleMedium {
		t.Errorf("fallback ScaleLevel = %d, want 2", got.ScaleLevel)
	}
	if !got.NeedsClarification {
		t.Error("fallback must request clarification")
	}
	if len(got.ClarifyingQuestions) == 0 {
		t.Error("fallback must carry clarifying questions")
	}
}
