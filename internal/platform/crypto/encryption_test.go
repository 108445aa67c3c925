package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	svc, err := New(hex.EncodeToString(bytes.Repeat([]byte{7}, 32)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	plain := []byte(`{"id":"e1"}`)
	sealed, err := svc.Seal(plain)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, plain) {
		t.Fatalf("expected sealed output to hide plaintext")
	}
	opened, err := svc.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, plain) {
		t.Fatalf("expected %q, got %q", plain, opened)
	}
}

func TestPassthroughWithoutKey(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if svc.Configured() {
		t.Fatalf("expected unconfigured service")
	}
	sealed, _ := svc.Seal([]byte("plain"))
	if string(sealed) != "plain" {
		t.Fatalf("expected passthrough, got %q", sealed)
	}
}

func TestRejectsBadKeyAndTamperedData(t *testing.T) {
	if _, err := New("short"); err == nil {
		t.Fatalf("expected error for short key")
	}
	svc, err := New("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("raw 32-byte key: %v", err)
	}
	if _, err := svc.Open([]byte{1, 2}); err != ErrCiphertextTooShort {
		t.Fatalf("expected ErrCiphertextTooShort, got %v", err)
	}
	sealed, _ := svc.Seal([]byte("payload"))
	sealed[len(sealed)-1] ^= 0xff
	if _, err := svc.Open(sealed); err == nil {
		t.Fatalf("expected authentication failure")
	}
}
