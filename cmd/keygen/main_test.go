package main

import (
	"encoding/hex"
	"testing"
)

func TestGenerateRandomHex(t *testing.T) {
	v, err := generateRandomHex(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v) != 64 {
		t.Fatalf("expected len 64 got %d", len(v))
	}
	if _, err := hex.DecodeString(v); err != nil {
		t.Fatalf("not valid hex: %v", err)
	}

	v2, err := generateRandomHex(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == v2 {
		t.Fatal("expected distinct keys")
	}
}
