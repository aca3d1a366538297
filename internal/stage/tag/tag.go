/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package tag implements the tag stage: append a named tag to every
// record matching a rule's address/port/protocol/appid/orient terms,
// with set semantics (a tag already present is not duplicated).
// Grounded on original_source/gnat/src/pipeline/tag.rs.
package tag

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	"github.com/fidelis-farm/gnat-toolkit/internal/rule"
)

// Rule is one entry of the tag rule file: the tag to apply plus the
// optional match terms that gate it. Omitted terms are absent, not
// wildcards.
type Rule struct {
	Tag     string  `json:"tag"`
	Observe string  `json:"observe,omitempty"`
	Proto   string  `json:"proto,omitempty"`
	SrcAddr string  `json:"saddr,omitempty"`
	SrcPort *uint16 `json:"sport,omitempty"`
	DstAddr string  `json:"daddr,omitempty"`
	DstPort *uint16 `json:"dport,omitempty"`
	AppID   string  `json:"ndpi_appid,omitempty"`
	Orient  string  `json:"orient,omitempty"`
}

// Load reads a JSON array of Rule from path.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag rule file %q: %w", path, err)
	}
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse tag rule file %q: %w", path, err)
	}
	for i, r := range rules {
		if r.Tag == "" {
			return nil, fmt.Errorf("tag rule file %q, entry %d: \"tag\" is required", path, i)
		}
	}
	return rules, nil
}

// compiled pairs a tag rule with its compiled match predicate.
type compiled struct {
	tag       string
	predicate *rule.Predicate
}

func compile(rules []Rule) ([]compiled, error) {
	out := make([]compiled, 0, len(rules))
	for i, r := range rules {
		var terms []string
		if r.Observe != "" {
			terms = append(terms, fmt.Sprintf("hasPrefix(Observe, %s)", strconv.Quote(r.Observe)))
		}
		if r.Proto != "" {
			terms = append(terms, fmt.Sprintf("Proto == %s", strconv.Quote(r.Proto)))
		}
		if r.SrcAddr != "" {
			terms = append(terms, fmt.Sprintf("hasPrefix(SrcAddr, %s)", strconv.Quote(r.SrcAddr)))
		}
		if r.SrcPort != nil {
			terms = append(terms, fmt.Sprintf("SrcPort == %d", *r.SrcPort))
		}
		if r.DstAddr != "" {
			terms = append(terms, fmt.Sprintf("hasPrefix(DstAddr, %s)", strconv.Quote(r.DstAddr)))
		}
		if r.DstPort != nil {
			terms = append(terms, fmt.Sprintf("DstPort == %d", *r.DstPort))
		}
		if r.AppID != "" {
			terms = append(terms, fmt.Sprintf("hasPrefix(AppID, %s)", strconv.Quote(r.AppID)))
		}
		if r.Orient != "" {
			terms = append(terms, fmt.Sprintf("hasPrefix(Orient, %s)", strconv.Quote(r.Orient)))
		}

		source := "true"
		if len(terms) > 0 {
			source = strings.Join(terms, " && ")
		}
		predicate, err := rule.CompileExpr(source)
		if err != nil {
			return nil, fmt.Errorf("tag rule %d: %w", i, err)
		}
		out = append(out, compiled{tag: r.Tag, predicate: predicate})
	}
	return out, nil
}

// hasTag reports whether tags already contains value.
func hasTag(tags []string, value string) bool {
	for _, t := range tags {
		if t == value {
			return true
		}
	}
	return false
}

// Apply mutates records in place, appending each matching rule's tag
// once per record.
func Apply(records []flow.Record, rules []Rule) error {
	compiledRules, err := compile(rules)
	if err != nil {
		return err
	}
	for i := range records {
		for _, c := range compiledRules {
			if hasTag(records[i].Tag, c.tag) {
				continue
			}
			matched, err := c.predicate.Matches(records[i])
			if err != nil {
				return fmt.Errorf("evaluate tag rule for %q: %w", c.tag, err)
			}
			if matched {
				records[i].Tag = append(records[i].Tag, c.tag)
			}
		}
	}
	return nil
}

// Stage implements pipeline.Stage: merge a batch's records, tag them,
// write one combined Parquet file, and delete the consumed inputs.
type Stage struct {
	id    pipeline.Identity
	rules []Rule
}

// New loads the tag rule file named by the "tag" option.
func New(id pipeline.Identity, options map[string]string) (*Stage, error) {
	path, ok := options["tag"]
	if !ok || path == "" {
		return nil, fmt.Errorf("required option \"tag\" (tag rule file path) is missing")
	}
	rules, err := Load(path)
	if err != nil {
		return nil, err
	}
	id.DeleteFiles = true
	return &Stage{id: id, rules: rules}, nil
}

func (s *Stage) Identity() pipeline.Identity { return s.id }

func (s *Stage) DetectVersion(path string) (int, error) {
	return flow.DetectFileVersion(path)
}

func (s *Stage) Process(batch []string, version int) error {
	records, err := flow.ReadFiles(batch)
	if err != nil {
		return err
	}
	if err := Apply(records, s.rules); err != nil {
		return err
	}
	data, err := flow.WriteBytes(records)
	if err != nil {
		return fmt.Errorf("encode tagged batch: %w", err)
	}
	return pipeline.WriteOutputs(s.id, data)
}
