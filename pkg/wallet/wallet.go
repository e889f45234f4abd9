// Package wallet loads and wraps the ed25519 signing keys the bot acts for.
package wallet

import (
	"bufio"
	"crypto/ed25519"
	"fmt"
	"os"
	"strings"

	"github.com/cosmos/go-bip39"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Wallet holds a single account's signing key.
type Wallet struct {
	Name string
	key  solana.PrivateKey
}

// FromBase58 builds a Wallet from a base58-encoded 64-byte ed25519 private key.
func FromBase58(name, encoded string) (*Wallet, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid key length: expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	key, err := solana.PrivateKeyFromBase58(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Wallet{Name: name, key: key}, nil
}

// FromMnemonic builds a Wallet from a BIP-39 mnemonic. The first 32 bytes of
// the derived seed become the ed25519 seed, matching the common Solana
// keypair-from-phrase convention.
func FromMnemonic(name, mnemonic string) (*Wallet, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	key := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
	return &Wallet{Name: name, key: solana.PrivateKey(key)}, nil
}

// Address returns the base58 public key.
func (w *Wallet) Address() string {
	return w.key.PublicKey().String()
}

// PublicKey returns the account public key.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.key.PublicKey()
}

// PublicKeyBytes returns the raw 32-byte public key.
func (w *Wallet) PublicKeyBytes() []byte {
	return w.key.PublicKey().Bytes()
}

// PrivateKey exposes the signing key for transaction signing.
func (w *Wallet) PrivateKey() solana.PrivateKey {
	return w.key
}

// Sign signs an arbitrary message with the wallet key.
func (w *Wallet) Sign(msg []byte) ([]byte, error) {
	sig, err := w.key.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return sig[:], nil
}

// LoadFile reads a credentials file with one entry per line. An entry is
// either a base58 private key or a BIP-39 mnemonic. Blank lines and lines
// starting with '#' are skipped.
func LoadFile(path string) ([]*Wallet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials file: %w", err)
	}
	defer file.Close()

	var wallets []*Wallet
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name := fmt.Sprintf("wallet-%d", len(wallets)+1)
		var w *Wallet
		if strings.Contains(line, " ") {
			w, err = FromMnemonic(name, line)
		} else {
			w, err = FromBase58(name, line)
		}
		if err != nil {
			return nil, fmt.Errorf("credentials file line %d: %w", lineNo, err)
		}
		wallets = append(wallets, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	if len(wallets) == 0 {
		return nil, fmt.Errorf("no wallets found in %s", path)
	}
	return wallets, nil
}
