package service

// ProviderContext is the resolved caller identity. It is built once by the
// auth middleware and passed explicitly into every adapter and operation call;
// nothing below the handler layer reads ambient request state.
type ProviderContext struct {
	ProviderID uint64
	UID        string
	TenantID   *uint64
}

// BlockScope is the provider's blocking scope: the tenant id when the provider
// belongs to a tenant, otherwise a negative pseudo-tenant derived from the
// provider id so tenant-less providers still get a disjoint scope.
func (pc ProviderContext) BlockScope() int64 {
	if pc.TenantID != nil {
		return int64(*pc.TenantID)
	}
	return -int64(pc.ProviderID)
}
