package possession

import (
	"strings"
	"testing"
)

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("  "); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestIssueValidateRoundTrip(t *testing.T) {
	issuer, err := NewIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	token := issuer.Issue("donor-1")
	if !Validate(token, token) {
		t.Fatal("issued token failed to validate against itself")
	}
	if Validate("some-other-string", token) {
		t.Fatal("arbitrary string validated")
	}
	if Validate("", token) {
		t.Fatal("empty presented token validated")
	}
	if Validate(token, "") {
		t.Fatal("validated against empty stored token")
	}
}

func TestIssueUniquePerCall(t *testing.T) {
	issuer, err := NewIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	a := issuer.Issue("donor-1")
	b := issuer.Issue("donor-1")
	if a == b {
		t.Fatal("two tokens for the same donor collided")
	}
}

func TestIssueBoundToDonor(t *testing.T) {
	issuer, err := NewIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	token := issuer.Issue("donor-1")
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		t.Fatalf("token %q missing nonce.signature shape", token)
	}
	if issuer.sign("donor-2", parts[0]) == parts[1] {
		t.Fatal("signature does not depend on donor identity")
	}
}
