// Package rbac answers "does user U hold permission P in organization O" and carries the error
// taxonomy shared by the role, membership and organization services.
package rbac

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/policy/engine"
	"budget-control-plane/internal/store"
)

const instrumentationName = "budget-control-plane/internal/platform/rbac"

// DecisionKey identifies one cached decision. Generation is the organization's cache generation
// read before the decision was computed.
type DecisionKey struct {
	OrgID      string
	Generation int64
	UserID     string
	Permission permission.Permission
}

// DecisionCache stores allow/deny decisions per organization generation. Invalidate moves the
// organization to a new generation so earlier entries are never read again.
type DecisionCache interface {
	Generation(ctx context.Context, orgID string) (int64, error)
	Get(ctx context.Context, key DecisionKey) (allowed, found bool, err error)
	Set(ctx context.Context, key DecisionKey, allowed bool) error
	Invalidate(ctx context.Context, orgID string) error
}

// Checker resolves membership and role through the store and asks the evaluator for the decision.
type Checker struct {
	store     store.Store
	evaluator engine.Evaluator
	cache     DecisionCache
	tracer    trace.Tracer
	decisions metric.Int64Counter
}

// Option configures a Checker.
type Option func(*Checker)

// WithCache enables the decision cache for HasPermission and RequirePermission.
func WithCache(c DecisionCache) Option {
	return func(ch *Checker) { ch.cache = c }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(ch *Checker) { ch.tracer = tp.Tracer(instrumentationName) }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(ch *Checker) { ch.decisions = newDecisionCounter(mp) }
}

// NewChecker returns a Checker over s. A nil evaluator selects engine.NativeEvaluator.
func NewChecker(s store.Store, evaluator engine.Evaluator, opts ...Option) *Checker {
	if evaluator == nil {
		evaluator = engine.NewNativeEvaluator()
	}
	c := &Checker{
		store:     s,
		evaluator: evaluator,
		tracer:    otel.Tracer(instrumentationName),
		decisions: newDecisionCounter(otel.GetMeterProvider()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newDecisionCounter(mp metric.MeterProvider) metric.Int64Counter {
	counter, err := mp.Meter(instrumentationName).Int64Counter(
		"rbac.decisions",
		metric.WithDescription("Authorization decisions by permission and result."),
	)
	if err != nil {
		log.Printf("rbac: create decision counter: %v", err)
	}
	return counter
}

// HasPermission reports whether userID holds p in orgID. A user without a membership gets
// (false, nil). Errors are returned only for storage failures and identifiers outside the catalog.
func (c *Checker) HasPermission(ctx context.Context, userID, orgID string, p permission.Permission) (bool, error) {
	if !p.Valid() {
		return false, &ValidationError{Field: "permission", Reason: (&permission.UnknownPermissionError{Value: string(p)}).Error()}
	}
	if userID == "" || orgID == "" {
		return false, nil
	}
	ctx, span := c.tracer.Start(ctx, "rbac.HasPermission", trace.WithAttributes(
		attribute.String("rbac.org_id", orgID),
		attribute.String("rbac.permission", string(p)),
	))
	defer span.End()

	key, cached := c.lookup(ctx, userID, orgID, p)
	if cached != nil {
		span.SetAttributes(attribute.Bool("rbac.cache_hit", true), attribute.Bool("rbac.allowed", *cached))
		c.record(ctx, p, *cached)
		return *cached, nil
	}

	var allowed bool
	err := c.store.View(ctx, func(ctx context.Context, r store.Repos) error {
		var err error
		allowed, err = c.decide(ctx, r, userID, orgID, p)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "decision failed")
		return false, err
	}
	if c.cache != nil && key != nil {
		if err := c.cache.Set(ctx, *key, allowed); err != nil {
			log.Printf("rbac: cache set: %v", err)
		}
	}
	span.SetAttributes(attribute.Bool("rbac.allowed", allowed))
	c.record(ctx, p, allowed)
	return allowed, nil
}

// RequirePermission is HasPermission as a guard: it returns *ForbiddenError when the user lacks p.
func (c *Checker) RequirePermission(ctx context.Context, userID, orgID string, p permission.Permission) error {
	ok, err := c.HasPermission(ctx, userID, orgID, p)
	if err != nil {
		return err
	}
	if !ok {
		return &ForbiddenError{UserID: userID, OrgID: orgID, Permission: p}
	}
	return nil
}

// Authorize checks p inside an open unit of work, bypassing the cache, so the decision reflects
// the same snapshot the caller is about to mutate.
func (c *Checker) Authorize(ctx context.Context, r store.Repos, userID, orgID string, p permission.Permission) error {
	if !p.Valid() {
		return &ValidationError{Field: "permission", Reason: (&permission.UnknownPermissionError{Value: string(p)}).Error()}
	}
	ok, err := c.decide(ctx, r, userID, orgID, p)
	if err != nil {
		return err
	}
	c.record(ctx, p, ok)
	if !ok {
		return &ForbiddenError{UserID: userID, OrgID: orgID, Permission: p}
	}
	return nil
}

// EffectivePermissions lists what userID may do in orgID in catalog order, with ALL expanded
// against the current catalog. Non-members get an empty list.
func (c *Checker) EffectivePermissions(ctx context.Context, userID, orgID string) ([]permission.Permission, error) {
	out := []permission.Permission{}
	err := c.store.View(ctx, func(ctx context.Context, r store.Repos) error {
		granted, err := c.granted(ctx, r, userID, orgID)
		if err != nil || granted == nil {
			return err
		}
		for _, p := range permission.Concrete() {
			ok, err := c.evaluator.Allow(ctx, granted, p)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Invalidate drops cached decisions for orgID. Call after a role or membership change commits.
func (c *Checker) Invalidate(ctx context.Context, orgID string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx, orgID); err != nil {
		log.Printf("rbac: cache invalidate org %s: %v", orgID, err)
	}
}

// HealthCheck reports whether the evaluator can decide requests.
func (c *Checker) HealthCheck(ctx context.Context) error {
	return c.evaluator.HealthCheck(ctx)
}

func (c *Checker) decide(ctx context.Context, r store.Repos, userID, orgID string, p permission.Permission) (bool, error) {
	granted, err := c.granted(ctx, r, userID, orgID)
	if err != nil || granted == nil {
		return false, err
	}
	return c.evaluator.Allow(ctx, granted, p)
}

// granted returns the permission set of the user's role in orgID, or nil when the user has no
// membership there.
func (c *Checker) granted(ctx context.Context, r store.Repos, userID, orgID string) (permission.Set, error) {
	m, err := r.Memberships.GetMembershipByUserAndOrg(ctx, userID, orgID)
	if err != nil || m == nil {
		return nil, err
	}
	role, err := r.Roles.GetByID(ctx, m.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil || role.OrgID != orgID {
		log.Printf("rbac: membership %s references role %s outside org %s", m.ID, m.RoleID, orgID)
		return nil, nil
	}
	if role.Permissions == nil {
		return permission.NewSet(), nil
	}
	return role.Permissions, nil
}

// lookup returns the key to cache under and, on a hit, the cached decision.
func (c *Checker) lookup(ctx context.Context, userID, orgID string, p permission.Permission) (*DecisionKey, *bool) {
	if c.cache == nil {
		return nil, nil
	}
	gen, err := c.cache.Generation(ctx, orgID)
	if err != nil {
		log.Printf("rbac: cache generation: %v", err)
		return nil, nil
	}
	key := DecisionKey{OrgID: orgID, Generation: gen, UserID: userID, Permission: p}
	allowed, found, err := c.cache.Get(ctx, key)
	if err != nil {
		log.Printf("rbac: cache get: %v", err)
		return &key, nil
	}
	if !found {
		return &key, nil
	}
	return &key, &allowed
}

func (c *Checker) record(ctx context.Context, p permission.Permission, allowed bool) {
	if c.decisions == nil {
		return
	}
	c.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("permission", string(p)),
		attribute.Bool("allowed", allowed),
	))
}
