package queryplanner

import (
	"context"
	"sync"
)

// PlanKey identifies one cached Plan: the schema version it was built
// against (a Plan built from an older version must never be reused once
// the schema is recompiled) plus a signature of the query that produced
// it.
type PlanKey struct {
	SchemaVersion string
	QuerySignature string
}

// PlanCache memoizes compiled Plans so the planner does not re-walk the
// catalog and re-render SQL for the same query shape on every request
// (A4, "caches compiled GraphQL->SQL plans and hot schema lookups").
// Safe for concurrent use.
type PlanCache struct {
	mu    sync.RWMutex
	plans map[PlanKey]*Plan
}

// NewPlanCache returns an empty PlanCache.
func NewPlanCache() *PlanCache {
	return &PlanCache{plans: make(map[PlanKey]*Plan)}
}

// Get returns the cached Plan for key, if present.
func (c *PlanCache) Get(key PlanKey) (*Plan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.plans[key]
	return p, ok
}

// Prime stores plan under key, overwriting any previous entry.
func (c *PlanCache) Prime(key PlanKey, plan *Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[key] = plan
}

// EvictVersion drops every cached Plan built against schemaVersion, called
// after a schema is recompiled so stale plans referencing dropped columns
// or renamed tables are never served again.
func (c *PlanCache) EvictVersion(schemaVersion string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.plans {
		if key.SchemaVersion == schemaVersion {
			delete(c.plans, key)
		}
	}
}

type planCacheCtxKey struct{}

// WithPlanCache attaches cache to ctx so a request-scoped resolver can
// reach the process-wide PlanCache without threading it through every
// function signature.
func WithPlanCache(ctx context.Context, cache *PlanCache) context.Context {
	return context.WithValue(ctx, planCacheCtxKey{}, cache)
}

// PlanCacheFrom retrieves the PlanCache attached by WithPlanCache, or nil
// if none was attached.
func PlanCacheFrom(ctx context.Context) *PlanCache {
	c, _ := ctx.Value(planCacheCtxKey{}).(*PlanCache)
	return c
}
