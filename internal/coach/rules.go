// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coach

import "strings"

// =============================================================================
// INTENT
// =============================================================================

// Intent is the topic a message is about.
type Intent string

const (
	IntentDiet     Intent = "diet"
	IntentRecovery Intent = "recovery"
	IntentInjury   Intent = "injury"
	IntentUnknown  Intent = "unknown"
)

// DetectIntent classifies message by keyword. Diet wins over recovery, which
// wins over injury.
func DetectIntent(message string) Intent {
	msg := strings.ToLower(message)
	switch {
	case containsAny(msg, "diet", "meal", "food"):
		return IntentDiet
	case containsAny(msg, "recovery", "rest"):
		return IntentRecovery
	case containsAny(msg, "injury", "pain"):
		return IntentInjury
	default:
		return IntentUnknown
	}
}

// =============================================================================
// DIET
// =============================================================================

// DietCategory is the goal of a diet request.
type DietCategory string

const (
	MuscleGain DietCategory = "muscle_gain"
	Cutting    DietCategory = "cutting"
	Bulking    DietCategory = "bulking"
)

// Level is the training experience for muscle gain plans.
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

// ExtractDiet finds the diet category and, for muscle gain only, the level.
// ok is false when no category is mentioned.
func ExtractDiet(message string) (category DietCategory, level Level, ok bool) {
	msg := strings.ToLower(message)

	switch {
	case strings.Contains(msg, "muscle"):
		category = MuscleGain
	case containsAny(msg, "cut", "fat loss"):
		category = Cutting
	case strings.Contains(msg, "bulk"):
		category = Bulking
	default:
		return "", "", false
	}

	if category == MuscleGain {
		switch {
		case strings.Contains(msg, "advanced"):
			level = Advanced
		case strings.Contains(msg, "intermediate"):
			level = Intermediate
		default:
			level = Beginner
		}
	}
	return category, level, true
}

// =============================================================================
// RECOVERY
// =============================================================================

// RecoveryContext is what the recovery advice targets.
type RecoveryContext string

const (
	RecoveryLegs      RecoveryContext = "legs"
	RecoveryChest     RecoveryContext = "chest"
	RecoveryBack      RecoveryContext = "back"
	RecoveryShoulders RecoveryContext = "shoulders"
	RecoveryRestDay   RecoveryContext = "rest_day"
	RecoveryDOMS      RecoveryContext = "doms"
	GeneralRecovery   RecoveryContext = "general"
)

// ExtractRecoveryContext picks the first matching body part or situation.
func ExtractRecoveryContext(message string) RecoveryContext {
	msg := strings.ToLower(message)
	switch {
	case containsAny(msg, "leg", "squat"):
		return RecoveryLegs
	case containsAny(msg, "chest", "bench"):
		return RecoveryChest
	case containsAny(msg, "back", "deadlift"):
		return RecoveryBack
	case strings.Contains(msg, "shoulder"):
		return RecoveryShoulders
	case strings.Contains(msg, "rest day"):
		return RecoveryRestDay
	case containsAny(msg, "sore", "doms"):
		return RecoveryDOMS
	default:
		return GeneralRecovery
	}
}

// =============================================================================
// INJURY
// =============================================================================

// Severity is how bad a described pain is.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityUnknown  Severity = "unknown"
)

// DetectSeverity grades pain words, most severe first.
func DetectSeverity(message string) Severity {
	msg := strings.ToLower(message)
	switch {
	case containsAny(msg, "sharp", "swelling", "cannot move", "severe", "tear"):
		return SeveritySevere
	case containsAny(msg, "pain", "hurts", "aching", "hard to move"):
		return SeverityModerate
	case containsAny(msg, "sore", "soreness", "tight"):
		return SeverityMild
	default:
		return SeverityUnknown
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
