package utils

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordCost(t *testing.T) {
	cases := map[string]int{
		"":    bcrypt.DefaultCost,
		"abc": bcrypt.DefaultCost,
		"3":   bcrypt.DefaultCost,
		"32":  bcrypt.DefaultCost,
		"4":   4,
		"12":  12,
	}
	for env, want := range cases {
		t.Setenv("BCRYPT_COST", env)
		if got := PasswordCost(); got != want {
			t.Fatalf("BCRYPT_COST=%q: cost %d, want %d", env, got, want)
		}
	}
}

func TestHashAndComparePassword(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4")
	hashed, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ComparePassword(string(hashed), "s3cret-pass"); err != nil {
		t.Fatalf("matching password rejected: %v", err)
	}
	if err := ComparePassword(string(hashed), "wrong"); !errors.Is(err, ErrorUnauthorized) {
		t.Fatalf("mismatch should be unauthorized, got %v", err)
	}
	if PasswordNeedsRehash(string(hashed)) {
		t.Fatalf("hash at the configured cost must not need a rehash")
	}

	t.Setenv("BCRYPT_COST", "5")
	if !PasswordNeedsRehash(string(hashed)) {
		t.Fatalf("cost change must trigger a rehash")
	}
	if PasswordNeedsRehash("not-a-hash") {
		t.Fatalf("unparseable hashes are left alone")
	}

	if _, err := HashPassword(strings.Repeat("x", 73)); !errors.Is(err, ErrorInvalid) {
		t.Fatalf("passwords over 72 bytes must be invalid, got %v", err)
	}
}
