package executor

import (
	"path"
	"strings"

	"github.com/gao-dev/gao/pkg/models"
)

// workflowDocTypes maps document-producing workflows to the type of their
// primary artifact. It is consulted before filename heuristics.
var workflowDocTypes = map[string]models.DocumentType{
	models.WorkflowDocumentProject: models.DocTypeProjectDoc,
	models.WorkflowGameBrief:       models.DocTypeBrief,
	models.WorkflowGameDesignDoc:   models.DocTypeGameDesign,
	models.WorkflowRequirementsDoc: models.DocTypePRD,
	models.WorkflowArchitectureDoc: models.DocTypeArchitecture,
	models.WorkflowTechSpec:        models.DocTypeTechSpec,
	models.WorkflowCreateStory:     models.DocTypeStory,
}

// typeRule is one pure filename classification rule. Rules are evaluated
// in order so new types are additive rather than nested conditionals.
type typeRule struct {
	match func(base, relPath string) bool
	typ   models.DocumentType
}

var sourceExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".tsx": true,
	".jsx": true, ".rs": true, ".java": true, ".rb": true, ".c": true,
	".h": true, ".cpp": true, ".cs": true, ".sql": true, ".sh": true,
	".css": true, ".html": true, ".yaml": true, ".yml": true, ".json": true,
	".toml": true,
}

var typeRules = []typeRule{
	{func(base, _ string) bool { return strings.Contains(base, "prd") || strings.Contains(base, "requirements") }, models.DocTypePRD},
	{func(base, _ string) bool { return strings.Contains(base, "architecture") }, models.DocTypeArchitecture},
	{func(base, _ string) bool { return strings.Contains(base, "tech-spec") || strings.Contains(base, "tech_spec") }, models.DocTypeTechSpec},
	{func(base, _ string) bool { return strings.Contains(base, "game-design") }, models.DocTypeGameDesign},
	{func(base, _ string) bool { return strings.Contains(base, "brief") }, models.DocTypeBrief},
	{func(base, rel string) bool { return strings.Contains(base, "story") || strings.Contains(rel, "/stories/") }, models.DocTypeStory},
	{func(base, _ string) bool { return strings.Contains(base, "epic") }, models.DocTypeEpic},
	{func(base, _ string) bool { return sourceExtensions[path.Ext(base)] }, models.DocTypeSourceCode},
}

// InferDocumentType classifies an artifact, first by the workflow that
// produced it, then by filename heuristics.
func InferDocumentType(workflowName, relPath string) models.DocumentType {
	base := strings.ToLower(path.Base(relPath))
	rel := strings.ToLower(relPath)

	if typ, ok := workflowDocTypes[workflowName]; ok {
		// Doc-producing workflows can still touch code files as a side
		// effect; only markdown inherits the workflow's type.
		if path.Ext(base) == ".md" || path.Ext(base) == "" {
			return typ
		}
	}

	for _, rule := range typeRules {
		if rule.match(base, rel) {
			return rule.typ
		}
	}
	return models.DocTypeOther
}
