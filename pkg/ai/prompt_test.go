package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSystemPromptChecklistVerbatimInOrder(t *testing.T) {
	rule := RuleContext{
		Scope:     "Kitchen after dinner",
		Criteria:  "Kitchen is ready for breakfast",
		Checklist: []string{"dishes washed or in dishwasher", "counters wiped", "trash taken out if full"},
	}

	prompt := BuildSystemPrompt(rule, Exemplars{})
	first := strings.Index(prompt, "1. dishes washed or in dishwasher")
	second := strings.Index(prompt, "2. counters wiped")
	third := strings.Index(prompt, "3. trash taken out if full")
	require.Positive(t, first)
	require.Greater(t, second, first)
	require.Greater(t, third, second)
}

func TestBuildSystemPromptDeterministic(t *testing.T) {
	rule := RuleContext{Scope: "Bedroom", Checklist: []string{"bed made"}}
	exemplars := Exemplars{
		Guidance: []string{"do not pass photos taken in the dark"},
		Examples: []ExemplarPair{{AutoPassed: true, AutoFeedback: "looked fine", HumanApproved: false, HumanFeedback: "clothes under the bed"}},
	}

	require.Equal(t, BuildSystemPrompt(rule, exemplars), BuildSystemPrompt(rule, exemplars))
}

func TestBuildSystemPromptIncludesExemplars(t *testing.T) {
	exemplars := Exemplars{
		Guidance: []string{"be stricter about visible clutter"},
		Examples: []ExemplarPair{{
			AutoPassed:     true,
			AutoFeedback:   "room looks tidy",
			HumanApproved:  false,
			HumanFeedback:  "toys pushed behind the door",
			SubmitterNotes: "all done!",
		}},
	}

	prompt := BuildSystemPrompt(RuleContext{}, exemplars)
	require.Contains(t, prompt, "be stricter about visible clutter")
	require.Contains(t, prompt, `automated review said pass ("room looks tidy")`)
	require.Contains(t, prompt, `the parent rejected ("toys pushed behind the door")`)
	require.Contains(t, prompt, `"all done!"`)
}

func TestBuildUserPromptNotesAreContext(t *testing.T) {
	prompt := BuildUserPrompt(VisionInput{
		Category:       "daily",
		TaskIdentifier: "dishes",
		Notes:          "I also cleaned the sink",
	})
	require.Contains(t, prompt, "daily / dishes")
	require.Contains(t, prompt, "context only and not proof")
	require.Contains(t, prompt, `"I also cleaned the sink"`)

	withoutNotes := BuildUserPrompt(VisionInput{Category: "room", TaskIdentifier: "kitchen"})
	require.NotContains(t, withoutNotes, "context only")
}
