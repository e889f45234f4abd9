package chain

import (
	"encoding/base64"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/require"
)

// unsignedTransfer builds an unsigned transfer the way the Odyssey API hands
// transactions back: serialized and base64-encoded, signature slots empty.
func unsignedTransfer(t *testing.T, payer solana.PrivateKey) string {
	t.Helper()
	to, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, payer.PublicKey(), to.PublicKey()).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestDecodeAndSign(t *testing.T) {
	payer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	tx, err := DecodeAndSign(unsignedTransfer(t, payer), payer)
	require.NoError(t, err)
	require.NoError(t, tx.VerifySignatures())
}

func TestDecodeAndSign_RejectsBadBase64(t *testing.T) {
	payer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	_, err = DecodeAndSign("not base64!!!", payer)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
}

func TestDecodeAndSign_RejectsGarbageBytes(t *testing.T) {
	payer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	encoded := base64.StdEncoding.EncodeToString([]byte("definitely not a transaction"))
	_, err = DecodeAndSign(encoded, payer)
	require.Error(t, err)
}

func TestDecodeAndSign_WrongKey(t *testing.T) {
	payer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	other, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	_, err = DecodeAndSign(unsignedTransfer(t, payer), other)
	require.Error(t, err, "signing with a key the transaction does not expect must fail")
}

func TestNew_DefaultsOnInvalidLimits(t *testing.T) {
	c := New("https://devnet.sonic.game", 0, 0)
	require.NotNil(t, c)
	require.Equal(t, 3, c.maxAttempts)
}
