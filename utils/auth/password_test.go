package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("password stored in plaintext")
	}

	if err := VerifyPassword(hash, "correct horse battery"); err != nil {
		t.Errorf("VerifyPassword rejected the right password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong password"); err != ErrPasswordMismatch {
		t.Errorf("VerifyPassword(wrong) = %v, want ErrPasswordMismatch", err)
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	if _, err := HashPassword("short"); err != ErrPasswordTooShort {
		t.Errorf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestGenerateTempPassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		pw, err := GenerateTempPassword()
		if err != nil {
			t.Fatalf("GenerateTempPassword failed: %v", err)
		}
		if len(pw) != tempPasswordLength {
			t.Fatalf("len = %d, want %d", len(pw), tempPasswordLength)
		}
		if !IsPasswordValid(pw) {
			t.Fatalf("generated password %q fails the minimum-length policy", pw)
		}
		for _, r := range pw {
			if !strings.ContainsRune(tempPasswordCharset, r) {
				t.Fatalf("character %q outside the charset", r)
			}
		}
		// Lookalikes are deliberately excluded.
		if strings.ContainsAny(pw, "0O1lI") {
			t.Fatalf("password %q contains a lookalike character", pw)
		}
		if seen[pw] {
			t.Fatalf("duplicate password generated: %q", pw)
		}
		seen[pw] = true
	}
}
