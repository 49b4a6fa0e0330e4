package util

import "testing"

func TestFingerprint(t *testing.T) {
	got := Fingerprint("sk-secret")
	if got != Fingerprint("sk-secret") {
		t.Fatalf("expected stable fingerprint, got %s", got)
	}
	if len(got) != 12 {
		t.Fatalf("expected 12 characters, got %d", len(got))
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("fingerprint contains non-hex character: %c", ch)
		}
	}
	if Fingerprint("") != "" {
		t.Fatalf("expected empty fingerprint for empty secret")
	}
}

func TestContentHash(t *testing.T) {
	if got := ContentHash([]byte("abc")); got != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("unexpected hash %s", got)
	}
}
