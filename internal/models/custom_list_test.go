package models

import (
	"strings"
	"testing"
	"time"
)

func TestCustomList(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		tests := []struct {
			name string
			want string
		}{
			{"alice", ""},
			{"", msgBlank},
			{"two words", msgInvalid},
			{"a/b", msgInvalid},
			{strings.Repeat("x", MaxListNameLength+1), "is too long"},
		}

		for _, tt := range tests {
			err := NewCustomList(tt.name).Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("%q: expected valid, got %v", tt.name, err)
				}
				continue
			}

			verrs, ok := err.(ValidationErrors)
			if !ok || !strings.HasPrefix(verrs["name"], tt.want) {
				t.Errorf("%q: expected name %q, got %v", tt.name, tt.want, err)
			}
		}
	})

	t.Run("OwnedBy", func(t *testing.T) {
		list := NewCustomList("alice")
		if !list.OwnedBy(UserInfo{CID: "alice"}) {
			t.Error("alice should own her list")
		}
		if list.OwnedBy(UserInfo{CID: "bob"}) || NewCustomList("").OwnedBy(UserInfo{}) {
			t.Error("only the matching cid owns a list")
		}
	})

	t.Run("ValidateEntry", func(t *testing.T) {
		if err := ValidateEntry("abc123"); err != nil {
			t.Errorf("expected valid hash, got %v", err)
		}
		if err := ValidateEntry(" "); err == nil {
			t.Error("expected a blank hash to fail")
		}
	})
}

func TestSession(t *testing.T) {
	s := NewSession(UserInfo{CID: "alice", Nick: "Alice"}, "digest", time.Hour)

	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid session, got %v", err)
	}
	if s.Expired(s.CreatedAt()) || !s.Expired(s.CreatedAt().Add(time.Hour)) {
		t.Errorf("expected expiry exactly one hour after creation, got %v", s.ExpiresAt())
	}

	err := NewSession(UserInfo{}, "", time.Hour).Validate()
	verrs, ok := err.(ValidationErrors)
	if !ok || verrs["cid"] != msgBlank || verrs["token_digest"] != msgBlank {
		t.Errorf("unexpected errors %v", err)
	}
}
