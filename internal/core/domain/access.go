package domain

// Deny reasons returned by the access gate
const (
	DenyRejected  = "rejected"
	DenyDeleted   = "deleted"
	DenyPending   = "pending"
	DenyForbidden = "forbidden"
	DenyUnknown   = "role lookup failed"
)

// Decision is the outcome of an access-gate evaluation
type Decision struct {
	Allow         bool
	RedirectLogin bool
	Reason        string
}

// Allowed is the positive decision
func Allowed() Decision {
	return Decision{Allow: true}
}

// Redirect sends an unauthenticated caller to login
func Redirect() Decision {
	return Decision{RedirectLogin: true}
}

// Denied refuses access with a reason
func Denied(reason string) Decision {
	return Decision{Reason: reason}
}

// Decide evaluates the access gate for a protected route.
//
// Rules, in order:
//  1. no identity: redirect to login
//  2. rejected or deleted: deny regardless of role
//  3. admin/superadmin: allow, skipping the remaining checks
//  4. pending without allowPending: deny
//  5. role not in requiredRoles: deny
//
// Pending members in the deletion queue are still approved for access
// purposes until the deletion is confirmed.
func Decide(hasIdentity bool, m *Membership, requiredRoles []Role, allowPending bool) Decision {
	if !hasIdentity {
		return Redirect()
	}

	// A failed role lookup denies. The original behavior here granted
	// superadmin access on lookup errors; that must never happen.
	if m == nil {
		return Denied(DenyUnknown)
	}

	switch m.ApprovalStatus {
	case StatusRejected:
		return Denied(DenyRejected)
	case StatusDeleted:
		return Denied(DenyDeleted)
	}

	if m.Role.IsAdmin() {
		return Allowed()
	}

	if m.ApprovalStatus == StatusPending && !allowPending {
		return Denied(DenyPending)
	}

	if len(requiredRoles) > 0 && !roleIn(m.Role, requiredRoles) {
		return Denied(DenyForbidden)
	}

	return Allowed()
}

func roleIn(role Role, roles []Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
