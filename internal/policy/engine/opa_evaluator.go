package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"budget-control-plane/internal/permission"
)

const allowQuery = "data.budget.rbac.allow"

// DefaultPolicy grants a permission when the role holds it or holds ALL.
const DefaultPolicy = `package budget.rbac

default allow := false

allow if {
	input.granted[_] == input.permission
}

allow if {
	input.granted[_] == "ALL"
}
`

// OPAEvaluator decides permission checks with an OPA Rego policy exposing data.budget.rbac.allow.
type OPAEvaluator struct {
	compiler *ast.Compiler
}

// NewOPAEvaluator compiles policy once. An empty policy selects DefaultPolicy.
func NewOPAEvaluator(policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = DefaultPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"rbac.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile authz policy: %w", err)
	}
	return &OPAEvaluator{compiler: compiler}, nil
}

// Allow evaluates the policy with input {permission, granted}. A policy that yields no boolean
// is an error, never an implicit grant.
func (e *OPAEvaluator) Allow(ctx context.Context, granted permission.Set, p permission.Permission) (bool, error) {
	grantedList := make([]interface{}, 0, len(granted))
	for _, g := range granted.Strings() {
		grantedList = append(grantedList, g)
	}
	input := map[string]interface{}{
		"permission": string(p),
		"granted":    grantedList,
	}
	q := rego.New(
		rego.Query(allowQuery),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval authz policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("authz policy returned no result")
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("authz policy returned %T, want bool", rs[0].Expressions[0].Value)
	}
	return allowed, nil
}

// HealthCheck evaluates a fixed request against the compiled policy. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	_, err := e.Allow(ctx, permission.NewSet(permission.ViewDashboard), permission.ViewDashboard)
	return err
}
