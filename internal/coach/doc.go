// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package coach is a rule-based fitness coach.
//
// A message is classified by keyword into diet, recovery or injury intent.
// Diet questions are answered from the knowledge base by goal (muscle gain,
// cutting, bulking) and, for muscle gain, experience level. Recovery
// questions are answered by body part. Injury questions get fixed advice by
// pain severity.
//
// The knowledge base is YAML; a default is embedded in the binary.
package coach
