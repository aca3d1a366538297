/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package rule

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
)

// env is the expr evaluation environment: one field per predicate term,
// populated from a flow.Record before each evaluation.
type env struct {
	Observe      string
	Proto        string
	SrcAddr      string
	SrcPort      uint16
	DstAddr      string
	DstPort      uint16
	AppID        string
	Orient       string
	Tag          []string
	RiskSeverity uint8
	HBOSSeverity uint8
}

func envFromRecord(r flow.Record) env {
	return env{
		Observe:      r.Observe,
		Proto:        r.Proto,
		SrcAddr:      r.SrcAddr,
		SrcPort:      r.SrcPort,
		DstAddr:      r.DstAddr,
		DstPort:      r.DstPort,
		AppID:        r.NDPIAppID,
		Orient:       r.Orient,
		Tag:          r.Tag,
		RiskSeverity: r.NDPIRiskSeverity,
		HBOSSeverity: r.HBOSSeverity,
	}
}

// Predicate is a compiled, reusable boolean expression, evaluated once
// per record.
type Predicate struct {
	program *vm.Program
}

// CompileExpr compiles an arbitrary boolean expr-lang expression
// against the term-evaluation environment used by env/envFromRecord,
// for callers (the tag and stream stages' filter fields) that need a
// raw predicate rather than a trigger-rule's fixed AND-of-terms shape.
// "*" matches every record.
func CompileExpr(source string) (*Predicate, error) {
	if source == "*" {
		source = "true"
	}
	program, err := expr.Compile(source,
		expr.Env(env{}),
		expr.AsBool(),
		expr.Function("hasPrefix", func(params ...any) (any, error) {
			return strings.HasPrefix(params[0].(string), params[1].(string)), nil
		}),
		expr.Function("contains", func(params ...any) (any, error) {
			list, _ := params[0].([]string)
			value, _ := params[1].(string)
			for _, v := range list {
				if v == value {
					return true, nil
				}
			}
			return false, nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", source, err)
	}
	return &Predicate{program: program}, nil
}

// Matches evaluates the compiled predicate against one record.
func (p *Predicate) Matches(r flow.Record) (bool, error) {
	out, err := expr.Run(p.program, envFromRecord(r))
	if err != nil {
		return false, fmt.Errorf("evaluate rule predicate: %w", err)
	}
	matched, _ := out.(bool)
	return matched, nil
}
