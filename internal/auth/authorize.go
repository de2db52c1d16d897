package auth

import "github.com/graylock-sec/graylock/internal/models"

// Capability is a named permission tier checked by Authorize.
// Only the admin tier exists today.
type Capability string

const CapabilityAdmin Capability = "admin"

// Reason classifies why a decision allowed or denied.
// Reasons are for logging only and must never reach a client.
type Reason string

const (
	ReasonOK               Reason = "ok"
	ReasonNoSession        Reason = "no_session"
	ReasonInsufficientRole Reason = "insufficient_role"
)

// Decision is the outcome of an authorization check
type Decision struct {
	Allow  bool
	Reason Reason
}

// Authorize decides whether the given session may exercise the
// capability. Pure function: no I/O, deterministic, computed fresh on
// every request so role changes apply immediately.
func Authorize(sess *Session, cap Capability) Decision {
	if sess == nil {
		return Decision{Allow: false, Reason: ReasonNoSession}
	}

	switch cap {
	case CapabilityAdmin:
		// Exact enum match only
		if sess.Role == models.RoleAdmin || sess.Role == models.RoleSuperAdmin {
			return Decision{Allow: true, Reason: ReasonOK}
		}
	}

	return Decision{Allow: false, Reason: ReasonInsufficientRole}
}
