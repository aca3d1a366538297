/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package rule loads and applies the rule file: an ordered list of
// predicate/action objects that set a flow record's trigger field.
// Grounded on original_source/gnat/src/pipeline/rule.rs.
package rule

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
)

// Action values. Anything else in a rule file makes Load fail, which
// is fatal to the stage.
const (
	ActionTrigger = "trigger"
	ActionIgnore  = "ignore"
)

// Rule is a predicate + action. Every field of the JSON schema gets an
// ordinary json tag; unlike the original Rust RuleJsonStructure, no
// field is silently skipped during deserialization (see DESIGN.md
// "Rule struct field-skip bug").
type Rule struct {
	Action       string  `json:"action"`
	Observe      string  `json:"observe,omitempty"`
	Proto        string  `json:"proto,omitempty"`
	SrcAddr      string  `json:"saddr,omitempty"`
	SrcPort      *uint16 `json:"sport,omitempty"`
	DstAddr      string  `json:"daddr,omitempty"`
	DstPort      *uint16 `json:"dport,omitempty"`
	AppID        string  `json:"appid,omitempty"`
	Orient       string  `json:"orient,omitempty"`
	Tag          string  `json:"tag,omitempty"`
	RiskSeverity *uint8  `json:"risk_severity,omitempty"`
	HBOSSeverity *uint8  `json:"hbos_severity,omitempty"`
}

// TriggerValue maps a rule's action to the flow.Trigger value it
// assigns.
func (r Rule) TriggerValue() (flow.Trigger, error) {
	switch r.Action {
	case ActionTrigger:
		return flow.TriggerSet, nil
	case ActionIgnore:
		return flow.TriggerIgnore, nil
	default:
		return 0, fmt.Errorf("rule: unknown action %q: want %q or %q", r.Action, ActionTrigger, ActionIgnore)
	}
}

// Load reads and validates a rule file: a JSON array of Rule objects,
// each with a recognized action.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file %q: %w", path, err)
	}

	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rule file %q: %w", path, err)
	}

	for i, r := range rules {
		if _, err := r.TriggerValue(); err != nil {
			return nil, fmt.Errorf("rule file %q, entry %d: %w", path, i, err)
		}
	}
	return rules, nil
}
