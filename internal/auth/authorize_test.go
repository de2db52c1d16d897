package auth

import (
	"testing"

	"github.com/graylock-sec/graylock/internal/models"
)

func TestAuthorize_AdminCapability(t *testing.T) {
	tests := []struct {
		name       string
		session    *Session
		wantAllow  bool
		wantReason Reason
	}{
		{
			name:       "nil session denied",
			session:    nil,
			wantAllow:  false,
			wantReason: ReasonNoSession,
		},
		{
			name:       "plain user denied",
			session:    &Session{UserID: "u1", Role: models.RoleUser},
			wantAllow:  false,
			wantReason: ReasonInsufficientRole,
		},
		{
			name:       "admin allowed",
			session:    &Session{UserID: "u2", Role: models.RoleAdmin},
			wantAllow:  true,
			wantReason: ReasonOK,
		},
		{
			name:       "super admin allowed",
			session:    &Session{UserID: "u3", Role: models.RoleSuperAdmin},
			wantAllow:  true,
			wantReason: ReasonOK,
		},
		{
			name:       "unknown role string denied",
			session:    &Session{UserID: "u4", Role: models.Role("admin")},
			wantAllow:  false,
			wantReason: ReasonInsufficientRole,
		},
		{
			name:       "role with surrounding noise denied",
			session:    &Session{UserID: "u5", Role: models.Role("ADMINISTRATOR")},
			wantAllow:  false,
			wantReason: ReasonInsufficientRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.session, CapabilityAdmin)
			if got.Allow != tt.wantAllow {
				t.Errorf("Authorize() allow = %v, want %v", got.Allow, tt.wantAllow)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Authorize() reason = %v, want %v", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestAuthorize_UnknownCapability(t *testing.T) {
	sess := &Session{UserID: "u1", Role: models.RoleSuperAdmin}
	got := Authorize(sess, Capability("billing"))
	if got.Allow {
		t.Error("Authorize() allowed an unmodeled capability")
	}
}

func TestAuthorize_IsDeterministic(t *testing.T) {
	sess := &Session{UserID: "u1", Role: models.RoleAdmin}
	first := Authorize(sess, CapabilityAdmin)
	for i := 0; i < 100; i++ {
		if got := Authorize(sess, CapabilityAdmin); got != first {
			t.Fatalf("Authorize() not deterministic: %+v vs %+v", got, first)
		}
	}
}
