package credentials

import (
	"strings"
	"testing"

	"github.com/contactshub/server/internal/platform/errors"
)

func TestHashIsSalted(t *testing.T) {
	t.Parallel()

	first, err := Hash("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := Hash("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct hashes for the same password")
	}
	if strings.Contains(first, "s3cret") {
		t.Fatal("hash must not contain the plaintext password")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	t.Parallel()

	if _, err := Hash(""); errors.CodeOf(err) != errors.CodeUserPasswordEmpty {
		t.Fatalf("expected %s, got %v", errors.CodeUserPasswordEmpty, err)
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	hash, err := Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{name: "match", password: "correct horse", hash: hash, want: true},
		{name: "mismatch", password: "battery staple", hash: hash, want: false},
		{name: "empty password", password: "", hash: hash, want: false},
		{name: "empty hash", password: "correct horse", hash: "", want: false},
		{name: "malformed hash fails closed", password: "correct horse", hash: "not-a-bcrypt-hash", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Verify(tc.password, tc.hash); got != tc.want {
				t.Fatalf("Verify(%q, %q) = %v, want %v", tc.password, tc.hash, got, tc.want)
			}
		})
	}
}
