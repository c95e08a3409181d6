package engine

import (
	"context"
	"strings"
	"testing"

	"budget-control-plane/internal/permission"
)

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	e, err := NewOPAEvaluator("")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestEvaluators_Agree(t *testing.T) {
	opa, err := NewOPAEvaluator("")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	evaluators := map[string]Evaluator{"native": NewNativeEvaluator(), "opa": opa}
	testCases := []struct {
		name    string
		granted permission.Set
		perm    permission.Permission
		want    bool
	}{
		{"direct grant", permission.NewSet(permission.ViewDashboard, permission.ViewReport), permission.ViewReport, true},
		{"missing", permission.NewSet(permission.ViewDashboard), permission.ManageRoles, false},
		{"empty set", permission.NewSet(), permission.ViewDashboard, false},
		{"nil set", nil, permission.ViewDashboard, false},
		{"all covers", permission.NewSet(permission.All), permission.ManageBudget, true},
		{"all covers later identifiers", permission.NewSet(permission.All), permission.Permission("EXPORT_LEDGER"), true},
	}
	for name, e := range evaluators {
		for _, tc := range testCases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				got, err := e.Allow(context.Background(), tc.granted, tc.perm)
				if err != nil {
					t.Fatalf("Allow: %v", err)
				}
				if got != tc.want {
					t.Errorf("Allow(%v, %q) = %v, want %v", tc.granted.Strings(), tc.perm, got, tc.want)
				}
			})
		}
	}
}

func TestOPAEvaluator_CustomPolicy(t *testing.T) {
	// Only dashboard access, regardless of grants.
	policy := `package budget.rbac

default allow := false

allow if {
	input.permission == "VIEW_DASHBOARD"
}
`
	e, err := NewOPAEvaluator(policy)
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	ctx := context.Background()
	if ok, _ := e.Allow(ctx, permission.NewSet(), permission.ViewDashboard); !ok {
		t.Error("custom policy should allow VIEW_DASHBOARD")
	}
	if ok, _ := e.Allow(ctx, permission.NewSet(permission.All), permission.ManageRoles); ok {
		t.Error("custom policy should deny MANAGE_ROLES even for ALL")
	}
}

func TestOPAEvaluator_InvalidPolicy(t *testing.T) {
	_, err := NewOPAEvaluator("package budget.rbac\n\nallow if {")
	if err == nil {
		t.Fatal("NewOPAEvaluator should reject a policy that does not compile")
	}
	if !strings.Contains(err.Error(), "compile authz policy") {
		t.Errorf("err = %v, want compile prefix", err)
	}
}

func TestOPAEvaluator_NonBooleanResult(t *testing.T) {
	e, err := NewOPAEvaluator("package budget.rbac\n\nallow := \"yes\"\n")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	if _, err := e.Allow(context.Background(), permission.NewSet(), permission.ViewDashboard); err == nil {
		t.Error("Allow should fail when the policy yields a non-boolean")
	}
}
