package ai

import "context"

// RuleContext carries the evaluation rule content injected into prompts.
type RuleContext struct {
	Scope     string
	Criteria  string
	Checklist []string
}

// ExemplarPair is one prior automated-vs-human disagreement shown to the
// model as a few-shot example.
type ExemplarPair struct {
	AutoPassed     bool
	AutoFeedback   string
	HumanApproved  bool
	HumanFeedback  string
	SubmitterNotes string
}

// Exemplars bundles retrieved guidance and example pairs. The zero value
// means "no exemplars" and is always safe to use.
type Exemplars struct {
	Guidance []string
	Examples []ExemplarPair
}

// VisionInput contains everything needed to judge one proof photo.
type VisionInput struct {
	ImageURL       string
	Category       string
	TaskIdentifier string
	Notes          string
	Rule           RuleContext
	Exemplars      Exemplars
}

// ChecklistVerdict is the model's judgement on a single checklist item.
type ChecklistVerdict struct {
	Item   string `json:"item"`
	Passed bool   `json:"passed"`
	Note   string `json:"note,omitempty"`
}

// VisionResult is the structured verdict returned by the vision evaluator.
type VisionResult struct {
	Passed     bool                   `json:"passed"`
	Feedback   string                 `json:"feedback"`
	Confidence float64                `json:"confidence"`
	Checklist  []ChecklistVerdict     `json:"checklist,omitempty"`
	Raw        map[string]interface{} `json:"raw,omitempty"`
}

// Evaluator describes a vision-capable model that can judge proof photos.
type Evaluator interface {
	Evaluate(ctx context.Context, input VisionInput) (VisionResult, error)
}

// FallbackFeedback is shown to the submitter when automated review fails.
const FallbackFeedback = "We couldn't check this photo automatically. A parent will take a look shortly."

// FallbackResult is the safe verdict used whenever the external model call
// or response parsing fails: the photo is not passed and carries zero
// confidence so the reviewer knows the automation did not run.
func FallbackResult() VisionResult {
	return VisionResult{
		Passed:     false,
		Feedback:   FallbackFeedback,
		Confidence: 0,
	}
}
