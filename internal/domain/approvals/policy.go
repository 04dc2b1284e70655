// Package approvals routes leave requests through role-based approval
// chains. Which chain applies is decided by CEL conditions evaluated over
// the request.
package approvals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/cel-go/cel"

	"pms/internal/core/apperror"
	"pms/internal/domain/leaves"
)

// Rule maps a CEL condition to the approver roles it requires. The first
// matching rule wins.
//
// Conditions see three variables: days (double), advance_notice_days (int),
// is_half_day (bool).
type Rule struct {
	Name      string   `json:"name"`
	Condition string   `json:"condition"`
	Roles     []string `json:"roles"`
}

// DefaultRules is the chain configuration the original workflow shipped
// with: long leaves escalate to admin, short-notice ones stop at the
// manager, everything else needs a single manager sign-off.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:      "long_leave",
			Condition: `days >= 5.0 && !is_half_day`,
			Roles:     []string{"manager", "admin"},
		},
		{
			Name:      "short_notice",
			Condition: `advance_notice_days < 3`,
			Roles:     []string{"manager"},
		},
		{
			Name:      "default",
			Condition: `true`,
			Roles:     []string{"manager"},
		},
	}
}

type compiledRule struct {
	rule    Rule
	program cel.Program
}

// CELPolicy implements leaves.Policy with compiled CEL conditions.
type CELPolicy struct {
	rules []compiledRule
	now   func() time.Time
}

var _ leaves.Policy = (*CELPolicy)(nil)

// NewCELPolicy compiles the rule conditions. Compilation errors surface at
// startup, not per-request.
func NewCELPolicy(rules []Rule) (*CELPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("days", cel.DoubleType),
		cel.Variable("advance_notice_days", cel.IntType),
		cel.Variable("is_half_day", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}

	p := &CELPolicy{now: time.Now}
	for _, rule := range rules {
		ast, issues := env.Compile(rule.Condition)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile rule %q: %w", rule.Name, issues.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("rule %q: condition must evaluate to bool, got %v", rule.Name, ast.OutputType())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule %q: %w", rule.Name, err)
		}
		p.rules = append(p.rules, compiledRule{rule: rule, program: program})
	}
	return p, nil
}

// Steps returns the approval chain for the request, from the first rule
// whose condition holds.
func (p *CELPolicy) Steps(ctx context.Context, req *leaves.LeaveRequest) ([]leaves.ApprovalStep, error) {
	days, _ := req.Days.Float64()
	notice := int64(req.StartsOn.Sub(p.now().UTC()).Hours() / 24)
	if notice < 0 {
		notice = 0
	}

	input := map[string]any{
		"days":                days,
		"advance_notice_days": notice,
		"is_half_day":         req.IsHalfDay,
	}

	for _, cr := range p.rules {
		out, _, err := cr.program.ContextEval(ctx, input)
		if err != nil {
			return nil, apperror.NewInternal(err).WithDetail("rule", cr.rule.Name)
		}
		matched, ok := out.Value().(bool)
		if !ok {
			return nil, apperror.NewInternal(fmt.Errorf("rule %q returned non-bool", cr.rule.Name))
		}
		if !matched {
			continue
		}
		steps := make([]leaves.ApprovalStep, 0, len(cr.rule.Roles))
		for _, role := range cr.rule.Roles {
			steps = append(steps, leaves.ApprovalStep{Role: role})
		}
		return steps, nil
	}

	// No rule matched; require a manager rather than auto-approving.
	return []leaves.ApprovalStep{{Role: "manager"}}, nil
}
