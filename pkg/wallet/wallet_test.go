package wallet

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestFromBase58_RoundTrip(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	w, err := FromBase58("test", key.String())
	if err != nil {
		t.Fatalf("FromBase58 failed: %v", err)
	}
	if w.Address() != key.PublicKey().String() {
		t.Errorf("expected address %s, got %s", key.PublicKey().String(), w.Address())
	}

	msg := []byte("sign me")
	sig, err := w.Sign(msg)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !ed25519.Verify(w.PublicKeyBytes(), msg, sig) {
		t.Error("signature did not verify against the wallet public key")
	}
}

func TestFromBase58_RejectsGarbage(t *testing.T) {
	if _, err := FromBase58("test", "not-base58-0OIl"); err == nil {
		t.Error("expected error for non-base58 input")
	}
	// Valid base58 but wrong length
	if _, err := FromBase58("test", "3mJr7AoUXx2Wqd"); err == nil {
		t.Error("expected error for short key")
	}
}

func TestFromMnemonic(t *testing.T) {
	const mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	w, err := FromMnemonic("test", mnemonic)
	if err != nil {
		t.Fatalf("FromMnemonic failed: %v", err)
	}

	// Same phrase must derive the same key.
	w2, err := FromMnemonic("test", mnemonic)
	if err != nil {
		t.Fatalf("FromMnemonic failed on second derivation: %v", err)
	}
	if w.Address() != w2.Address() {
		t.Errorf("mnemonic derivation is not deterministic: %s vs %s", w.Address(), w2.Address())
	}

	msg := []byte("hello")
	sig, err := w.Sign(msg)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !ed25519.Verify(w.PublicKeyBytes(), msg, sig) {
		t.Error("signature did not verify")
	}
}

func TestFromMnemonic_RejectsInvalidPhrase(t *testing.T) {
	if _, err := FromMnemonic("test", "definitely not a valid seed phrase words words"); err == nil {
		t.Error("expected error for invalid mnemonic")
	}
}

func TestLoadFile(t *testing.T) {
	key1, _ := solana.NewRandomPrivateKey()
	key2, _ := solana.NewRandomPrivateKey()

	path := filepath.Join(t.TempDir(), "accounts.txt")
	content := strings.Join([]string{
		"# main account",
		key1.String(),
		"",
		"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		key2.String(),
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write credentials file: %v", err)
	}

	wallets, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(wallets) != 3 {
		t.Fatalf("expected 3 wallets, got %d", len(wallets))
	}
	if wallets[0].Address() != key1.PublicKey().String() {
		t.Errorf("first wallet address mismatch")
	}
	if wallets[0].Name != "wallet-1" || wallets[2].Name != "wallet-3" {
		t.Errorf("unexpected wallet names: %s, %s", wallets[0].Name, wallets[2].Name)
	}
}

func TestLoadFile_MalformedLineNamesLineNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.txt")
	if err := os.WriteFile(path, []byte("# comment\nbadkey\n"), 0o600); err != nil {
		t.Fatalf("failed to write credentials file: %v", err)
	}

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected error for malformed key")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected error to name line 2, got: %v", err)
	}
}

func TestLoadFile_EmptyFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.txt")
	if err := os.WriteFile(path, []byte("# only comments\n\n"), 0o600); err != nil {
		t.Fatalf("failed to write credentials file: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for credentials file without entries")
	}
}
