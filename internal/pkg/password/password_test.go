package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash == "correct horse battery staple" {
		t.Error("hash must not equal the plaintext password")
	}
	if !Verify("correct horse battery staple", hash) {
		t.Error("Verify() should accept the original password")
	}
	if Verify("wrong password", hash) {
		t.Error("Verify() should reject a wrong password")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("some-refresh-token")
	b := HashToken("some-refresh-token")
	c := HashToken("another-token")

	if a != b {
		t.Error("HashToken() should be deterministic")
	}
	if a == c {
		t.Error("HashToken() should differ for different inputs")
	}
	if len(a) != 64 {
		t.Errorf("HashToken() length = %d, want 64 hex chars", len(a))
	}
}

func TestValidate(t *testing.T) {
	if Validate("short") {
		t.Error("Validate() should reject passwords under 8 characters")
	}
	if !Validate("12345678") {
		t.Error("Validate() should accept an 8-character password")
	}
}

func TestGenerateTemp(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 20; i++ {
		pw, err := GenerateTemp()
		if err != nil {
			t.Fatalf("GenerateTemp() error = %v", err)
		}

		if len(pw) != 9 {
			t.Errorf("GenerateTemp() length = %d, want 9", len(pw))
		}
		if !strings.HasSuffix(pw, "!") {
			t.Errorf("GenerateTemp() = %q, want trailing '!'", pw)
		}
		for _, c := range pw[:len(pw)-1] {
			isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
			if !isAlnum {
				t.Errorf("GenerateTemp() = %q, contains non-alphanumeric %q", pw, c)
			}
		}
		seen[pw] = true
	}

	if len(seen) < 2 {
		t.Error("GenerateTemp() should not repeat constantly")
	}
}
