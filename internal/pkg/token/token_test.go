package token

import (
	"errors"
	"testing"
	"time"

	"github.com/famlink/family-api/internal/core/domain"
)

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("secret")

	raw, err := codec.Issue("acc_1", "fam_1", domain.RoleChild, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := codec.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.AccountID != "acc_1" || claims.FamilyID != "fam_1" || claims.Role != domain.RoleChild {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("expected expiry claim")
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 59*time.Minute || remaining > time.Hour {
		t.Fatalf("unexpected ttl remaining: %v", remaining)
	}
}

func TestCodec_WrongSecret(t *testing.T) {
	raw, err := NewCodec("secret").Issue("acc_1", "fam_1", domain.RoleChild, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewCodec("other").Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCodec_Expired(t *testing.T) {
	codec := NewCodec("secret")
	raw, err := codec.Issue("acc_1", "fam_1", domain.RoleParent, -time.Second)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := codec.Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	codec := NewCodec("secret")

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := codec.Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", raw, err)
		}
	}
}

func TestCodec_PresetLifetimes(t *testing.T) {
	codec := NewCodec("secret")

	access, err := codec.IssueAccess("acc_1", "fam_1", domain.RoleChild)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	refresh, err := codec.IssueRefresh("acc_1", "fam_1", domain.RoleChild)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	ac, err := codec.Verify(access)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	rc, err := codec.Verify(refresh)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}

	if d := time.Until(ac.ExpiresAt.Time); d > AccessTTL || d < AccessTTL-time.Minute {
		t.Fatalf("access ttl out of range: %v", d)
	}
	if d := time.Until(rc.ExpiresAt.Time); d > RefreshTTL || d < RefreshTTL-time.Minute {
		t.Fatalf("refresh ttl out of range: %v", d)
	}
}
