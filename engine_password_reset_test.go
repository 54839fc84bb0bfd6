package campusgate

import (
	"context"
	"errors"
	"testing"
)

// resetToken issues a code through the resend path (which does not require
// the account to be absent) and confirms it.
func resetToken(t *testing.T, engine *Engine, sender *mockEmailSender, email string) string {
	t.Helper()

	ctx := context.Background()
	if err := engine.ResendVerification(ctx, email); err != nil {
		t.Fatalf("ResendVerification failed: %v", err)
	}
	token, err := engine.ConfirmVerification(ctx, email, sender.lastCode(email))
	if err != nil {
		t.Fatalf("ConfirmVerification failed: %v", err)
	}
	return token
}

func TestResetPassword(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine, identity, sender := newTestEngine(t, rdb)
	identity.existing["alice@sfu.ca"] = true
	ctx := context.Background()

	token := resetToken(t, engine, sender, "alice@sfu.ca")

	if err := engine.ResetPassword(ctx, "alice@sfu.ca", token, "N3w!Password"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if identity.passwords["alice@sfu.ca"] != "N3w!Password" {
		t.Fatal("identity provider did not receive the new password")
	}
	if mr.Exists("alice@sfu.ca-emailVerifiedToken") {
		t.Fatal("hand-off token must be burned after successful reset")
	}
}

func TestResetPasswordUnknownAccount(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine, identity, sender := newTestEngine(t, rdb)
	ctx := context.Background()

	token := resetToken(t, engine, sender, "ghost@sfu.ca")

	err := engine.ResetPassword(ctx, "ghost@sfu.ca", token, "N3w!Password")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if len(identity.resets) != 0 {
		t.Fatalf("no reset should reach the provider, got %v", identity.resets)
	}
}

func TestResetPasswordWrongToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine, identity, sender := newTestEngine(t, rdb)
	identity.existing["alice@sfu.ca"] = true
	ctx := context.Background()

	resetToken(t, engine, sender, "alice@sfu.ca")

	if err := engine.ResetPassword(ctx, "alice@sfu.ca", "bogus", "N3w!Password"); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("expected ErrTokenMismatch, got %v", err)
	}
	if !mr.Exists("alice@sfu.ca-emailVerifiedToken") {
		t.Fatal("a mismatched attempt must not consume the stored token")
	}
}

func TestResetPasswordUpstreamFailurePreservesToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine, identity, sender := newTestEngine(t, rdb)
	identity.existing["alice@sfu.ca"] = true
	ctx := context.Background()

	token := resetToken(t, engine, sender, "alice@sfu.ca")

	identity.resetErr = errors.New("provider outage")
	if err := engine.ResetPassword(ctx, "alice@sfu.ca", token, "N3w!Password"); !errors.Is(err, ErrIdentityUnavailable) {
		t.Fatalf("expected ErrIdentityUnavailable, got %v", err)
	}
	if !mr.Exists("alice@sfu.ca-emailVerifiedToken") {
		t.Fatal("token must survive an upstream reset failure")
	}

	identity.resetErr = nil
	if err := engine.ResetPassword(ctx, "alice@sfu.ca", token, "N3w!Password"); err != nil {
		t.Fatalf("retry after outage failed: %v", err)
	}
}

func TestResetPasswordPolicy(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine, identity, sender := newTestEngine(t, rdb)
	identity.existing["alice@sfu.ca"] = true

	token := resetToken(t, engine, sender, "alice@sfu.ca")

	if err := engine.ResetPassword(context.Background(), "alice@sfu.ca", token, "alllowercase1!"); !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}
}
