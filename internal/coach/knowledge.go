// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coach

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

// Plan is an ordered list of advice lines.
type Plan struct {
	Plan []string `yaml:"plan"`
}

// DietKnowledge holds the diet plans. Muscle gain has one plan per level.
type DietKnowledge struct {
	MuscleGain map[string]Plan `yaml:"muscle_gain"`
	Cutting    *Plan           `yaml:"cutting"`
	Bulking    *Plan           `yaml:"bulking"`
}

// Knowledge is the coach's knowledge base.
type Knowledge struct {
	Diet     DietKnowledge   `yaml:"diet"`
	Recovery map[string]Plan `yaml:"recovery"`
}

// DefaultKnowledge returns the embedded knowledge base.
func DefaultKnowledge() (*Knowledge, error) {
	return ParseKnowledge(defaultKnowledge)
}

// LoadKnowledge reads a knowledge base from a YAML file.
func LoadKnowledge(path string) (*Knowledge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file: %w", err)
	}
	kb, err := ParseKnowledge(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return kb, nil
}

// ParseKnowledge decodes a YAML knowledge base.
func ParseKnowledge(data []byte) (*Knowledge, error) {
	var kb Knowledge
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge: %w", err)
	}
	return &kb, nil
}

// dietPlan returns the plan for category (and level, for muscle gain).
func (k *Knowledge) dietPlan(category DietCategory, level Level) ([]string, bool) {
	switch category {
	case MuscleGain:
		p, ok := k.Diet.MuscleGain[string(level)]
		return p.Plan, ok && len(p.Plan) > 0
	case Cutting:
		if k.Diet.Cutting == nil || len(k.Diet.Cutting.Plan) == 0 {
			return nil, false
		}
		return k.Diet.Cutting.Plan, true
	case Bulking:
		if k.Diet.Bulking == nil || len(k.Diet.Bulking.Plan) == 0 {
			return nil, false
		}
		return k.Diet.Bulking.Plan, true
	}
	return nil, false
}

// recoveryPlan returns the plan for context, falling back to the general plan.
func (k *Knowledge) recoveryPlan(ctx RecoveryContext) ([]string, bool) {
	if p, ok := k.Recovery[string(ctx)]; ok {
		return p.Plan, true
	}
	p, ok := k.Recovery[string(GeneralRecovery)]
	return p.Plan, ok
}
