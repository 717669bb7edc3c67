package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hash == "" {
		t.Error("expected non-empty hash")
	}
	if hash == "secret-password" {
		t.Error("hash should not equal plaintext password")
	}
}

func TestHashPassword_DifferentHashes(t *testing.T) {
	hash1, err := HashPassword("secret-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hash2, err := HashPassword("secret-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hash1 == hash2 {
		t.Error("same password should produce different hashes due to salt")
	}
}

func TestComparePassword_Correct(t *testing.T) {
	hash, err := HashPassword("secret-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if err := ComparePassword(hash, "secret-password"); err != nil {
		t.Errorf("expected correct password to match, got error: %v", err)
	}
}

func TestComparePassword_Incorrect(t *testing.T) {
	hash, err := HashPassword("secret-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	err = ComparePassword(hash, "wrong-password")
	if err == nil {
		t.Fatal("expected error for incorrect password")
	}
	if !IsPasswordMismatch(err) {
		t.Errorf("expected mismatch classification, got: %v", err)
	}
}

func TestComparePassword_CorruptHash(t *testing.T) {
	err := ComparePassword("not-a-valid-bcrypt-hash", "secret-password")
	if err == nil {
		t.Fatal("expected error for invalid hash format")
	}
	if IsPasswordMismatch(err) {
		t.Error("corrupt hash should not classify as a plain mismatch")
	}
}
