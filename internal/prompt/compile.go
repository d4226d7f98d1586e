// Package prompt turns a validated excuse request into the system and user
// instructions sent to the completion provider.
package prompt

import (
	"strings"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
)

// Compiled is the instruction pair for one generation call.
type Compiled struct {
	System string
	User   string
}

// GoWildReminder is appended to the reminders for the ridiculous tier only.
const GoWildReminder = goWildReminder

// Compile builds the prompt pair for req. It is deterministic: the same
// request always yields byte-identical strings.
func Compile(req excuse.Request) Compiled {
	return Compiled{System: systemPrompt, User: userPrompt(req)}
}

func userPrompt(req excuse.Request) string {
	var b strings.Builder

	b.WriteString("Generate 3 different excuses for this situation:\n\n")
	line(&b, "SCENARIO: ", ScenarioContext(req.Scenario))
	line(&b, "TELLING TO: ", RelationshipContext(req.Relationship))
	line(&b, "WHEN IT HAPPENED: ", TimingContext(req.Timing))
	if req.HasTransport() {
		line(&b, "TRANSPORTATION: ", string(req.Transport))
	}
	if req.PersonalContext != "" {
		line(&b, "PERSONAL CONTEXT: ", req.PersonalContext)
	}

	b.WriteString("\n")
	line(&b, "BELIEVABILITY LEVEL: ", string(req.BelievabilityLevel))
	b.WriteString(believabilityInstructions[req.BelievabilityLevel])
	b.WriteString("\n\n")

	line(&b, "TONE: ", ToneInstruction(req.Tone))
	b.WriteString("\n")

	b.WriteString(outputContract)
	b.WriteString("\n\n")

	b.WriteString(reminderHeader + "\n")
	b.WriteString(remindersBody + "\n")
	if req.BelievabilityLevel == excuse.Ridiculous {
		b.WriteString(goWildReminder + "\n")
	}
	b.WriteString(remindersClosing)

	return b.String()
}

func line(b *strings.Builder, label, value string) {
	b.WriteString(label)
	b.WriteString(value)
	b.WriteString("\n")
}

// ScenarioContext returns the human-readable phrase for s.
func ScenarioContext(s excuse.Scenario) string {
	if c, ok := scenarioContexts[s]; ok {
		return c
	}
	return "a general situation"
}

// RelationshipContext returns the phrase describing who hears the excuse.
func RelationshipContext(r excuse.Relationship) string {
	if c, ok := relationshipContexts[r]; ok {
		return c
	}
	return "someone"
}

// TimingContext returns the phrase describing when it happened.
func TimingContext(t excuse.Timing) string {
	if c, ok := timingContexts[t]; ok {
		return c
	}
	return "recently"
}

// ToneInstruction returns the tone sentence for t. Anything but formal is casual.
func ToneInstruction(t excuse.Tone) string {
	if t == excuse.ToneFormal {
		return formalTone
	}
	return casualTone
}
