// Package odyssey implements a typed client for the Sonic Odyssey rewards API.
//
// Every endpoint wraps its payload in a {code, status, message, data}
// envelope; non-success responses become *APIError so callers can classify
// the failure (see errors.go).
package odyssey

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	pathChallenge    = "/auth/sonic/challenge"
	pathAuthorize    = "/auth/sonic/authorize"
	pathRewardsInfo  = "/user/rewards/info"
	pathCheckInTx    = "/user/check-in/transaction"
	pathCheckIn      = "/user/check-in"
	pathDailyTxState = "/user/transactions/state/daily"
	pathClaimStage   = "/user/transactions/rewards/claim"
	pathBoxBuildTx   = "/user/rewards/mystery-box/build-tx"
	pathBoxOpen      = "/user/rewards/mystery-box/open"
)

// tokenExpirySlack forces a re-login slightly before the JWT actually expires.
const tokenExpirySlack = time.Minute

// Signer is the part of a wallet the login handshake needs.
type Signer interface {
	Address() string
	PublicKeyBytes() []byte
	Sign(msg []byte) ([]byte, error)
}

// Client is a typed Odyssey API client bound to one session token at a time.
// The bot runs wallets strictly sequentially, so a single Client is reused
// and re-logged-in per wallet.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	userAgent  string
	origin     string

	token       string
	tokenExpiry time.Time
}

// NewClient creates an Odyssey API client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	s := applyOptions(opts)
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: s.httpClient,
		logger:     s.logger,
		userAgent:  s.userAgent,
		origin:     s.origin,
	}
}

// Login performs the challenge/response handshake and stores the session
// token for subsequent calls.
func (c *Client) Login(ctx context.Context, signer Signer) error {
	challenge, err := c.Challenge(ctx, signer.Address())
	if err != nil {
		return fmt.Errorf("challenge request failed: %w", err)
	}

	sig, err := signer.Sign([]byte(challenge))
	if err != nil {
		return fmt.Errorf("failed to sign challenge: %w", err)
	}

	req := &AuthRequest{
		Address:        signer.Address(),
		AddressEncoded: base64.StdEncoding.EncodeToString(signer.PublicKeyBytes()),
		Signature:      base64.StdEncoding.EncodeToString(sig),
	}
	token, err := c.Authorize(ctx, req)
	if err != nil {
		return fmt.Errorf("authorize request failed: %w", err)
	}

	c.token = token
	c.tokenExpiry = tokenExpiry(token)
	c.logger.Debug("session established",
		zap.String("address", signer.Address()),
		zap.Time("token_expiry", c.tokenExpiry))
	return nil
}

// TokenValid reports whether the stored session token exists and has not
// reached its expiry window.
func (c *Client) TokenValid() bool {
	if c.token == "" {
		return false
	}
	if c.tokenExpiry.IsZero() {
		return true
	}
	return time.Now().Before(c.tokenExpiry.Add(-tokenExpirySlack))
}

// Challenge fetches the login challenge string for a wallet address.
func (c *Client) Challenge(ctx context.Context, address string) (string, error) {
	query := url.Values{"wallet": {address}}
	var challenge string
	if err := c.do(ctx, http.MethodGet, pathChallenge+"?"+query.Encode(), nil, &challenge); err != nil {
		return "", err
	}
	return challenge, nil
}

// Authorize exchanges a signed challenge for a bearer token.
func (c *Client) Authorize(ctx context.Context, req *AuthRequest) (string, error) {
	var data authData
	if err := c.do(ctx, http.MethodPost, pathAuthorize, req, &data); err != nil {
		return "", err
	}
	if data.Token == "" {
		return "", fmt.Errorf("authorize response missing token")
	}
	return data.Token, nil
}

// RewardsInfo fetches the user profile (ring balance, unopened boxes,
// wallet balance in lamports).
func (c *Client) RewardsInfo(ctx context.Context) (*RewardsInfo, error) {
	var info RewardsInfo
	if err := c.do(ctx, http.MethodGet, pathRewardsInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CheckInTransaction fetches the base64-encoded unsigned check-in
// transaction. Returns KindAlreadyDone when today's check-in happened.
func (c *Client) CheckInTransaction(ctx context.Context) (string, error) {
	var data txData
	if err := c.do(ctx, http.MethodGet, pathCheckInTx, nil, &data); err != nil {
		return "", err
	}
	if data.Hash == "" {
		return "", fmt.Errorf("check-in transaction response missing hash")
	}
	return data.Hash, nil
}

// CheckIn reports a submitted check-in transaction signature.
func (c *Client) CheckIn(ctx context.Context, txHash string) (*CheckInResult, error) {
	var result CheckInResult
	if err := c.do(ctx, http.MethodPost, pathCheckIn, txData{Hash: txHash}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DailyTxState fetches today's transaction-milestone progress.
func (c *Client) DailyTxState(ctx context.Context) (*DailyTxState, error) {
	var state DailyTxState
	if err := c.do(ctx, http.MethodGet, pathDailyTxState, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// ClaimStageReward claims one milestone stage (1..3).
func (c *Client) ClaimStageReward(ctx context.Context, stage int) (*ClaimResult, error) {
	body := struct {
		Stage int `json:"stage"`
	}{Stage: stage}
	var result ClaimResult
	if err := c.do(ctx, http.MethodPost, pathClaimStage, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BuildBoxTransaction fetches the base64-encoded unsigned mystery-box
// transaction. Returns KindNotReady when no boxes are available.
func (c *Client) BuildBoxTransaction(ctx context.Context) (string, error) {
	var data txData
	if err := c.do(ctx, http.MethodGet, pathBoxBuildTx, nil, &data); err != nil {
		return "", err
	}
	if data.Hash == "" {
		return "", fmt.Errorf("box transaction response missing hash")
	}
	return data.Hash, nil
}

// OpenBox reports a submitted box transaction signature and returns the win.
func (c *Client) OpenBox(ctx context.Context, txHash string) (*BoxResult, error) {
	var result BoxResult
	if err := c.do(ctx, http.MethodPost, pathBoxOpen, txData{Hash: txHash}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do executes a single API call and decodes the envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
		req.Header.Set("Referer", c.origin+"/")
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode response (http %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || env.Status == "fail" {
		apiErr := &APIError{
			HTTPStatus: resp.StatusCode,
			Code:       env.Code,
			Status:     env.Status,
			Message:    env.Message,
		}
		c.logger.Debug("api call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("http_status", resp.StatusCode),
			zap.String("kind", apiErr.Kind().String()),
			zap.String("message", env.Message))
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature. The bot
// only needs the expiry to decide when to re-login; the server validates.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
