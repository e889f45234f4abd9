// Package chain signs and submits Odyssey-issued transactions to the Sonic
// RPC endpoint. The API hands back fully built, unsigned transactions as
// base64 strings; this package decodes them, signs with the wallet key,
// submits with a bounded flat-delay retry, and polls for confirmation.
package chain

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/solstice-labs/odyssey-bot/internal/metrics"
)

// Client wraps the Sonic RPC endpoint with a client-side rate limiter.
type Client struct {
	rpc            *rpc.Client
	logger         *zap.Logger
	maxAttempts    int
	retryDelay     time.Duration
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

// New creates a rate-limited RPC client for the given endpoint.
func New(rpcURL string, requestsPerSecond, burst int, opts ...Option) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	if burst <= 0 {
		burst = 5
	}
	s := applyOptions(opts)
	return &Client{
		rpc: rpc.NewWithCustomRPCClient(rpc.NewWithLimiter(
			rpcURL,
			rate.Every(time.Second/time.Duration(requestsPerSecond)),
			burst,
		)),
		logger:         s.logger,
		maxAttempts:    s.maxAttempts,
		retryDelay:     s.retryDelay,
		confirmTimeout: s.confirmTimeout,
		pollInterval:   s.pollInterval,
	}
}

// Balance returns the account balance in lamports.
func (c *Client) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	out, err := c.rpc.GetBalance(ctx, addr, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return out.Value, nil
}

// SignAndSend decodes a base64-encoded transaction, signs it with the given
// key, submits it, and waits for confirmation. Submission is retried up to
// the configured attempt count with a flat delay.
func (c *Client) SignAndSend(ctx context.Context, encodedTx string, key solana.PrivateKey) (solana.Signature, error) {
	tx, err := DecodeAndSign(encodedTx, key)
	if err != nil {
		return solana.Signature{}, err
	}

	opts := rpc.TransactionOpts{
		Encoding:            solana.EncodingBase64,
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentFinalized,
	}

	var sig solana.Signature
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		sig, lastErr = c.rpc.SendTransactionWithOpts(ctx, tx, opts)
		if lastErr == nil {
			break
		}
		c.logger.Warn("transaction submission failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
			zap.Error(lastErr))
		metrics.TxRetriesTotal.Inc()
		if attempt == c.maxAttempts {
			metrics.TransactionsSent.WithLabelValues("failed").Inc()
			return solana.Signature{}, fmt.Errorf("failed to send transaction after %d attempts: %w", c.maxAttempts, lastErr)
		}
		select {
		case <-ctx.Done():
			return solana.Signature{}, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}

	if err := c.waitForConfirmation(ctx, sig); err != nil {
		metrics.TransactionsSent.WithLabelValues("unconfirmed").Inc()
		return sig, err
	}

	metrics.TransactionsSent.WithLabelValues("confirmed").Inc()
	c.logger.Debug("transaction confirmed", zap.String("signature", sig.String()))
	return sig, nil
}

// DecodeAndSign decodes a base64 wire transaction and signs it with key.
func DecodeAndSign(encodedTx string, key solana.PrivateKey) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encodedTx)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize transaction: %w", err)
	}

	_, err = tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if key.PublicKey().Equals(pub) {
			return &key
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}

// waitForConfirmation polls signature status until the transaction reaches
// at least confirmed commitment or the confirm timeout elapses.
func (c *Client) waitForConfirmation(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation timed out for %s: %w", sig.String(), ctx.Err())
		case <-ticker.C:
			out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				c.logger.Debug("signature status poll failed", zap.Error(err))
				continue
			}
			if len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on chain: %v", sig.String(), status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}
	}
}
