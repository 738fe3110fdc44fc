package kernel

import (
	"context"
	"sync"
)

// TenantSource indica qué señal determinó el tenant del request
type TenantSource string

const (
	TenantSourceDefault TenantSource = "DEFAULT"
	TenantSourceHost    TenantSource = "HOST"
	TenantSourceToken   TenantSource = "TOKEN"
)

// TenantResolution es el tenant resuelto junto con su origen
type TenantResolution struct {
	Tenant TenantID     `json:"tenant_id"`
	Source TenantSource `json:"source"`
}

// TenantCell is the ambient tenant slot of a single request. It lives inside the
// request's context.Context, never in a package variable, so two requests can only
// share a cell if one hands its context to the other.
//
// A nil *TenantCell is valid and always reports absence.
type TenantCell struct {
	mu         sync.RWMutex
	resolution TenantResolution
	set        bool
}

// Set stores the tenant, replacing any previous value.
func (c *TenantCell) Set(tenant TenantID, source TenantSource) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.resolution = TenantResolution{Tenant: tenant, Source: source}
	c.set = !tenant.IsEmpty()
	c.mu.Unlock()
}

// Get returns the current tenant. ok is false when nothing was set or the cell was cleared.
func (c *TenantCell) Get() (TenantResolution, bool) {
	if c == nil {
		return TenantResolution{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolution, c.set
}

// Clear empties the cell. Scope calls it on every exit path of a request.
func (c *TenantCell) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.resolution = TenantResolution{}
	c.set = false
	c.mu.Unlock()
}

// WithTenantCell derives a context carrying a fresh, empty cell.
func WithTenantCell(ctx context.Context) (context.Context, *TenantCell) {
	cell := &TenantCell{}
	return context.WithValue(ctx, TenantCellKey, cell), cell
}

// TenantCellFrom returns the cell carried by ctx, or nil.
func TenantCellFrom(ctx context.Context) *TenantCell {
	if ctx == nil {
		return nil
	}
	cell, _ := ctx.Value(TenantCellKey).(*TenantCell)
	return cell
}

// TenantFromContext returns the ambient tenant. It never panics; callers that need
// a tenant must fail explicitly when ok is false.
func TenantFromContext(ctx context.Context) (TenantID, bool) {
	r, ok := TenantCellFrom(ctx).Get()
	return r.Tenant, ok
}

// ResolutionFromContext returns the ambient tenant together with its source.
func ResolutionFromContext(ctx context.Context) (TenantResolution, bool) {
	return TenantCellFrom(ctx).Get()
}

// WithTenant derives a context with a new cell already holding tenant.
// Used by non-HTTP entrypoints such as jobs and tests.
func WithTenant(ctx context.Context, tenant TenantID, source TenantSource) context.Context {
	ctx, cell := WithTenantCell(ctx)
	cell.Set(tenant, source)
	return ctx
}

// DetachTenant snapshots the ambient tenant of ctx into a new background context with
// its own cell. Work spawned from a request uses it so it keeps the tenant after the
// request's cell is cleared, without sharing the cell or the request's cancellation.
func DetachTenant(ctx context.Context) context.Context {
	detached, cell := WithTenantCell(context.Background())
	if r, ok := ResolutionFromContext(ctx); ok {
		cell.Set(r.Tenant, r.Source)
	}
	return detached
}
