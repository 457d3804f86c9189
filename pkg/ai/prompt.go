package ai

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt composes the system instruction for a proof evaluation.
// Checklist items are injected verbatim and in order. The function is pure:
// identical inputs always yield the identical prompt.
func BuildSystemPrompt(rule RuleContext, exemplars Exemplars) string {
	builder := strings.Builder{}
	builder.WriteString("You are reviewing a photo a family member submitted as proof of a completed household task. ")
	builder.WriteString("Judge only what is visible in the photo against the task requirements below.\n")

	if rule.Scope != "" {
		builder.WriteString("\n## Task scope\n")
		builder.WriteString(rule.Scope)
		builder.WriteString("\n")
	}

	if rule.Criteria != "" {
		builder.WriteString("\n## Completion criteria\n")
		builder.WriteString(rule.Criteria)
		builder.WriteString("\n")
	}

	if len(rule.Checklist) > 0 {
		builder.WriteString("\n## Checklist\n")
		for i, item := range rule.Checklist {
			builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, item))
		}
	}

	if len(exemplars.Guidance) > 0 {
		builder.WriteString("\n## Guidance from previous reviews\n")
		for _, line := range exemplars.Guidance {
			builder.WriteString("- ")
			builder.WriteString(line)
			builder.WriteString("\n")
		}
	}

	if len(exemplars.Examples) > 0 {
		builder.WriteString("\n## Previous disagreements between automated and parent review\n")
		for i, example := range exemplars.Examples {
			builder.WriteString(fmt.Sprintf("Example %d: automated review said %s (%q); the parent %s (%q).",
				i+1, passFail(example.AutoPassed), example.AutoFeedback,
				approveReject(example.HumanApproved), example.HumanFeedback))
			if example.SubmitterNotes != "" {
				builder.WriteString(fmt.Sprintf(" Submitter note at the time: %q.", example.SubmitterNotes))
			}
			builder.WriteString("\n")
		}
	}

	builder.WriteString("\nRespond with a JSON object containing: passed (boolean), feedback (short, friendly, concrete), ")
	builder.WriteString("confidence (number between 0 and 1), and checklist (array of {item, passed, note} covering each checklist item, when a checklist is present).")

	return builder.String()
}

// BuildUserPrompt composes the per-submission instruction. Submitter notes
// are presented as context, never as evidence.
func BuildUserPrompt(input VisionInput) string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Task: %s / %s.\n", input.Category, input.TaskIdentifier))
	if input.Notes != "" {
		builder.WriteString("The submitter added this note, which is context only and not proof by itself: ")
		builder.WriteString(fmt.Sprintf("%q\n", input.Notes))
	}
	builder.WriteString("Review the attached photo and return your JSON verdict.")
	return builder.String()
}

func passFail(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}

func approveReject(approved bool) string {
	if approved {
		return "approved"
	}
	return "rejected"
}
