package utils

import (
	"testing"
	"time"
)

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore()

	if store.Contains("missing") {
		t.Fatal("empty store must not contain anything")
	}

	store.Add("jti-1", time.Now().Add(time.Hour))
	if !store.Contains("jti-1") {
		t.Fatal("expected jti-1 to be revoked")
	}

	// Entries past their expiry disappear on read.
	store.Add("jti-2", time.Now().Add(-time.Second))
	if store.Contains("jti-2") {
		t.Fatal("expired revocation must not count")
	}
}

func TestRevokeAndCheck(t *testing.T) {
	store := NewMemoryTokenStore()
	SetTokenStore(store)

	RevokeToken("jti-x", time.Now().Add(time.Hour))
	if !IsTokenRevoked("jti-x") {
		t.Fatal("expected jti-x revoked")
	}
	if IsTokenRevoked("jti-y") {
		t.Fatal("jti-y was never revoked")
	}
	if IsTokenRevoked("") {
		t.Fatal("empty id must never read as revoked")
	}
}
