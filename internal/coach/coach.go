// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coach

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fixed replies.
const (
	AskCategoryReply  = "Please specify muscle gain, cutting, or bulking."
	DietNotFoundReply = "Diet plan not found."
	NoRecoveryReply   = "Recovery plan not found."
	DescribePainReply = "Describe pain level clearly (mild / severe / sharp)."
	FallbackReply     = "Ask me about diet, recovery, or injuries."

	MildInjuryReply = "Mild Injury Advice:\n" +
		"• Reduce training intensity\n" +
		"• Ice 15–20 minutes\n" +
		"• Light mobility work\n" +
		"• Monitor for 48 hours"

	ModerateInjuryReply = "Moderate Injury Advice:\n" +
		"• Stop training the affected area\n" +
		"• Ice + compression\n" +
		"• Gentle range-of-motion only\n" +
		"• Rest 3–5 days"

	SevereInjuryReply = "Severe Injury Warning:\n" +
		"• Stop all training immediately\n" +
		"• Do NOT stretch or load\n" +
		"• Seek medical professional\n" +
		"• Possible tear or inflammation"
)

// Reply is the coach's answer to one message.
type Reply struct {
	Intent Intent `json:"intent"`
	Text   string `json:"reply"`
}

// Coach answers fitness questions from a knowledge base. It is safe for
// concurrent use.
type Coach struct {
	kb *Knowledge
}

// New creates a coach backed by kb.
func New(kb *Knowledge) *Coach {
	if kb == nil {
		kb = &Knowledge{}
	}
	return &Coach{kb: kb}
}

// Respond answers message.
func (c *Coach) Respond(message string) Reply {
	intent := DetectIntent(message)
	reply := Reply{Intent: intent}

	switch intent {
	case IntentDiet:
		reply.Text = c.diet(message)
	case IntentRecovery:
		reply.Text = c.recovery(message)
	case IntentInjury:
		reply.Text = injury(message)
	default:
		reply.Text = FallbackReply
	}
	return reply
}

func (c *Coach) diet(message string) string {
	category, level, ok := ExtractDiet(message)
	if !ok {
		return AskCategoryReply
	}
	plan, ok := c.kb.dietPlan(category, level)
	if !ok {
		return DietNotFoundReply
	}

	var title string
	if category == MuscleGain {
		title = titleCase(string(level)) + " Muscle Gain Diet:"
	} else {
		title = titleCase(string(category)) + " Diet:"
	}
	return title + "\n" + strings.Join(plan, "\n")
}

func (c *Coach) recovery(message string) string {
	key := ExtractRecoveryContext(message)
	plan, ok := c.kb.recoveryPlan(key)
	if !ok {
		return NoRecoveryReply
	}
	label := titleCase(strings.ReplaceAll(string(key), "_", " "))
	return "Recovery Advice (" + label + "):\n" + strings.Join(plan, "\n")
}

func injury(message string) string {
	switch DetectSeverity(message) {
	case SeverityMild:
		return MildInjuryReply
	case SeverityModerate:
		return ModerateInjuryReply
	case SeveritySevere:
		return SevereInjuryReply
	default:
		return DescribePainReply
	}
}

// titleCase upper-cases the first letter of each word. A Caser keeps state,
// so one is made per call.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
