// Package bot orchestrates the per-wallet reward workflow: login, profile,
// daily check-in, milestone claims, and mystery-box opening. Wallets run
// strictly sequentially; every step's failure is classified so completed
// actions and unmet preconditions are skipped instead of retried.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/solstice-labs/odyssey-bot/internal/metrics"
	"github.com/solstice-labs/odyssey-bot/pkg/config"
	"github.com/solstice-labs/odyssey-bot/pkg/history"
	"github.com/solstice-labs/odyssey-bot/pkg/odyssey"
	"github.com/solstice-labs/odyssey-bot/pkg/wallet"
)

// Action names used in logs, metrics and history records.
const (
	ActionLogin      = "login"
	ActionProfile    = "profile"
	ActionCheckIn    = "check-in"
	ActionMilestones = "milestone-claim"
	ActionBoxes      = "box-open"
)

// API is the slice of the Odyssey client the workflow needs.
type API interface {
	Login(ctx context.Context, signer odyssey.Signer) error
	TokenValid() bool
	RewardsInfo(ctx context.Context) (*odyssey.RewardsInfo, error)
	CheckInTransaction(ctx context.Context) (string, error)
	CheckIn(ctx context.Context, txHash string) (*odyssey.CheckInResult, error)
	DailyTxState(ctx context.Context) (*odyssey.DailyTxState, error)
	ClaimStageReward(ctx context.Context, stage int) (*odyssey.ClaimResult, error)
	BuildBoxTransaction(ctx context.Context) (string, error)
	OpenBox(ctx context.Context, txHash string) (*odyssey.BoxResult, error)
}

// Submitter signs and submits API-built transactions.
type Submitter interface {
	SignAndSend(ctx context.Context, encodedTx string, key solana.PrivateKey) (solana.Signature, error)
	Balance(ctx context.Context, addr solana.PublicKey) (uint64, error)
}

// Recorder persists action outcomes. May be nil when history is disabled.
type Recorder interface {
	Append(r *history.Record) error
	Recent(wallet string, limit int) ([]*history.Record, error)
}

// Engine runs the reward workflow for a set of wallets.
type Engine struct {
	api       API
	submitter Submitter
	store     Recorder
	wallets   []*wallet.Wallet
	logger    *zap.Logger

	maxRetries  int
	retryDelay  time.Duration
	actionDelay time.Duration

	// loggedIn is the address the client's current token belongs to.
	loggedIn string
}

// NewEngine creates a workflow engine.
func NewEngine(cfg config.BotConfig, api API, submitter Submitter, store Recorder, wallets []*wallet.Wallet, logger *zap.Logger) *Engine {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Engine{
		api:         api,
		submitter:   submitter,
		store:       store,
		wallets:     wallets,
		logger:      logger,
		maxRetries:  maxRetries,
		retryDelay:  cfg.RetryDelay,
		actionDelay: cfg.ActionDelay,
	}
}

// Wallets returns the wallets the engine operates on.
func (e *Engine) Wallets() []*wallet.Wallet {
	return e.wallets
}

// Recent returns the latest recorded outcomes for a wallet.
func (e *Engine) Recent(w *wallet.Wallet, limit int) ([]*history.Record, error) {
	if e.store == nil {
		return nil, nil
	}
	return e.store.Recent(w.Address(), limit)
}

// RunAll runs the full workflow for every wallet in order. A wallet failure
// is logged and counted but does not stop the remaining wallets.
func (e *Engine) RunAll(ctx context.Context) error {
	var failed int
	for _, w := range e.wallets {
		if err := e.RunWallet(ctx, w); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.logger.Error("wallet run failed",
				zap.String("wallet", w.Address()),
				zap.Error(err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d wallet runs failed", failed, len(e.wallets))
	}
	return nil
}

// RunWallet runs the full workflow for one wallet: login, profile, check-in,
// milestone claims, box opening.
func (e *Engine) RunWallet(ctx context.Context, w *wallet.Wallet) error {
	runID := uuid.NewString()
	start := time.Now()
	logger := e.logger.With(
		zap.String("wallet", w.Address()),
		zap.String("run_id", runID))
	logger.Info("starting wallet run")

	if err := e.ensureLogin(ctx, w, runID); err != nil {
		return err
	}
	if _, err := e.profile(ctx, w, runID); err != nil {
		return err
	}
	if err := e.checkIn(ctx, w, runID); err != nil {
		return err
	}
	if err := e.claimMilestones(ctx, w, runID); err != nil {
		return err
	}
	if err := e.openBoxes(ctx, w, runID); err != nil {
		return err
	}

	metrics.RunDuration.Observe(time.Since(start).Seconds())
	logger.Info("wallet run finished", zap.Duration("duration", time.Since(start)))
	return nil
}

// RunAction runs a single workflow step for one wallet (interactive mode).
func (e *Engine) RunAction(ctx context.Context, w *wallet.Wallet, action string) error {
	runID := uuid.NewString()
	if err := e.ensureLogin(ctx, w, runID); err != nil {
		return err
	}
	switch action {
	case ActionProfile:
		_, err := e.profile(ctx, w, runID)
		return err
	case ActionCheckIn:
		return e.checkIn(ctx, w, runID)
	case ActionMilestones:
		return e.claimMilestones(ctx, w, runID)
	case ActionBoxes:
		return e.openBoxes(ctx, w, runID)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

// Profile fetches and returns the wallet profile (interactive mode).
func (e *Engine) Profile(ctx context.Context, w *wallet.Wallet) (*odyssey.RewardsInfo, error) {
	runID := uuid.NewString()
	if err := e.ensureLogin(ctx, w, runID); err != nil {
		return nil, err
	}
	return e.profile(ctx, w, runID)
}

func (e *Engine) ensureLogin(ctx context.Context, w *wallet.Wallet, runID string) error {
	if e.loggedIn == w.Address() && e.api.TokenValid() {
		return nil
	}
	e.loggedIn = ""
	err := e.withRetry(ctx, ActionLogin, func() error {
		return e.api.Login(ctx, w)
	})
	if err != nil {
		e.record(runID, w, ActionLogin, "", history.OutcomeFailed, err.Error())
		return fmt.Errorf("login failed for %s: %w", w.Address(), err)
	}
	e.loggedIn = w.Address()
	e.logger.Info("logged in", zap.String("wallet", w.Address()))
	return nil
}

func (e *Engine) profile(ctx context.Context, w *wallet.Wallet, runID string) (*odyssey.RewardsInfo, error) {
	var info *odyssey.RewardsInfo
	err := e.authRetry(ctx, w, func() error {
		return e.withRetry(ctx, ActionProfile, func() error {
			var err error
			info, err = e.api.RewardsInfo(ctx)
			return err
		})
	})
	if err != nil {
		e.record(runID, w, ActionProfile, "", history.OutcomeFailed, err.Error())
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	// The gauge tracks the on-chain balance; the API's wallet_balance can lag.
	if balance, err := e.submitter.Balance(ctx, w.PublicKey()); err == nil {
		metrics.WalletBalance.WithLabelValues(w.Address()).Set(float64(balance))
	} else {
		e.logger.Debug("balance lookup failed", zap.String("wallet", w.Address()), zap.Error(err))
	}

	e.logger.Info("profile",
		zap.String("wallet", w.Address()),
		zap.String("balance_sol", lamportsToSOL(info.WalletBalance)),
		zap.Int64("rings", info.Ring),
		zap.Int64("unopened_boxes", info.RingMonitor))
	return info, nil
}

// checkIn performs the daily check-in: fetch the unsigned transaction, sign
// and submit it, then report the signature back.
func (e *Engine) checkIn(ctx context.Context, w *wallet.Wallet, runID string) error {
	var encodedTx string
	err := e.authRetry(ctx, w, func() error {
		return e.withRetry(ctx, ActionCheckIn, func() error {
			var err error
			encodedTx, err = e.api.CheckInTransaction(ctx)
			return err
		})
	})
	if odyssey.IsAlreadyDone(err) {
		e.logger.Info("already checked in today", zap.String("wallet", w.Address()))
		e.skip(runID, w, ActionCheckIn, err)
		return nil
	}
	if err != nil {
		return e.fail(runID, w, ActionCheckIn, "", err)
	}

	sig, err := e.submitter.SignAndSend(ctx, encodedTx, w.PrivateKey())
	if err != nil {
		return e.fail(runID, w, ActionCheckIn, "", err)
	}

	var result *odyssey.CheckInResult
	err = e.withRetry(ctx, ActionCheckIn, func() error {
		var err error
		result, err = e.api.CheckIn(ctx, sig.String())
		return err
	})
	if odyssey.IsAlreadyDone(err) {
		e.skip(runID, w, ActionCheckIn, err)
		return nil
	}
	if err != nil {
		return e.fail(runID, w, ActionCheckIn, sig.String(), err)
	}

	e.logger.Info("checked in",
		zap.String("wallet", w.Address()),
		zap.String("tx", sig.String()),
		zap.Int("accumulative_days", result.AccumulativeDays))
	e.ok(runID, w, ActionCheckIn, sig.String(), fmt.Sprintf("day %d", result.AccumulativeDays))
	return nil
}

// claimMilestones claims every unclaimed daily transaction milestone stage
// whose threshold has been reached. Stages are ascending, so the first
// unreached stage ends the pass.
func (e *Engine) claimMilestones(ctx context.Context, w *wallet.Wallet, runID string) error {
	var state *odyssey.DailyTxState
	err := e.authRetry(ctx, w, func() error {
		return e.withRetry(ctx, ActionMilestones, func() error {
			var err error
			state, err = e.api.DailyTxState(ctx)
			return err
		})
	})
	if err != nil {
		return e.fail(runID, w, ActionMilestones, "", err)
	}

	e.logger.Info("daily transaction state",
		zap.String("wallet", w.Address()),
		zap.Int("total_transactions", state.TotalTransactions))

	for i, stage := range state.Stages() {
		stageNo := i + 1
		if stage.Claimed {
			continue
		}
		if state.TotalTransactions < stage.Quantity {
			e.logger.Info("milestone not reached",
				zap.String("wallet", w.Address()),
				zap.Int("stage", stageNo),
				zap.Int("required", stage.Quantity),
				zap.Int("have", state.TotalTransactions))
			e.skipDetail(runID, w, ActionMilestones, fmt.Sprintf("stage %d not reached (%d/%d)", stageNo, state.TotalTransactions, stage.Quantity))
			break
		}

		err := e.withRetry(ctx, ActionMilestones, func() error {
			_, err := e.api.ClaimStageReward(ctx, stageNo)
			return err
		})
		switch {
		case odyssey.IsAlreadyDone(err):
			e.skip(runID, w, ActionMilestones, err)
			continue
		case odyssey.IsNotReady(err):
			e.skip(runID, w, ActionMilestones, err)
			return nil
		case err != nil:
			return e.fail(runID, w, ActionMilestones, "", err)
		}

		metrics.RingsWon.WithLabelValues("milestone").Add(float64(stage.Rewards))
		e.logger.Info("milestone claimed",
			zap.String("wallet", w.Address()),
			zap.Int("stage", stageNo),
			zap.Int("rewards", stage.Rewards))
		e.ok(runID, w, ActionMilestones, "", fmt.Sprintf("stage %d", stageNo))

		if err := e.pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

// openBoxes opens every available mystery box: build transaction, sign and
// submit, report the signature.
func (e *Engine) openBoxes(ctx context.Context, w *wallet.Wallet, runID string) error {
	var info *odyssey.RewardsInfo
	err := e.authRetry(ctx, w, func() error {
		return e.withRetry(ctx, ActionBoxes, func() error {
			var err error
			info, err = e.api.RewardsInfo(ctx)
			return err
		})
	})
	if err != nil {
		return e.fail(runID, w, ActionBoxes, "", err)
	}
	if info.RingMonitor <= 0 {
		e.logger.Info("no boxes to open", zap.String("wallet", w.Address()))
		e.skipDetail(runID, w, ActionBoxes, "no boxes available")
		return nil
	}

	for n := int64(0); n < info.RingMonitor; n++ {
		var encodedTx string
		err := e.withRetry(ctx, ActionBoxes, func() error {
			var err error
			encodedTx, err = e.api.BuildBoxTransaction(ctx)
			return err
		})
		if odyssey.IsNotReady(err) || odyssey.IsAlreadyDone(err) {
			e.skip(runID, w, ActionBoxes, err)
			return nil
		}
		if err != nil {
			return e.fail(runID, w, ActionBoxes, "", err)
		}

		sig, err := e.submitter.SignAndSend(ctx, encodedTx, w.PrivateKey())
		if err != nil {
			return e.fail(runID, w, ActionBoxes, "", err)
		}

		var result *odyssey.BoxResult
		err = e.withRetry(ctx, ActionBoxes, func() error {
			var err error
			result, err = e.api.OpenBox(ctx, sig.String())
			return err
		})
		if err != nil {
			return e.fail(runID, w, ActionBoxes, sig.String(), err)
		}

		metrics.RingsWon.WithLabelValues("box").Add(float64(result.Amount))
		e.logger.Info("box opened",
			zap.String("wallet", w.Address()),
			zap.String("tx", sig.String()),
			zap.Int("rings", result.Amount))
		e.ok(runID, w, ActionBoxes, sig.String(), fmt.Sprintf("won %d rings", result.Amount))

		if err := e.pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

// withRetry runs fn up to maxRetries times with a flat delay. Only transient
// failures are retried; classified failures return immediately so the caller
// can branch on them.
func (e *Engine) withRetry(ctx context.Context, action string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		err = fn()
		if err == nil || !odyssey.IsRetryable(err) {
			return err
		}
		e.logger.Warn("transient failure",
			zap.String("action", action),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.maxRetries),
			zap.Error(err))
		if attempt < e.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.retryDelay):
			}
		}
	}
	return err
}

// authRetry re-authenticates once and reruns fn when the session expired.
func (e *Engine) authRetry(ctx context.Context, w *wallet.Wallet, fn func() error) error {
	err := fn()
	if !odyssey.IsUnauthorized(err) {
		return err
	}
	e.logger.Info("session expired, re-authenticating", zap.String("wallet", w.Address()))
	e.loggedIn = ""
	if lerr := e.ensureLogin(ctx, w, uuid.NewString()); lerr != nil {
		return lerr
	}
	return fn()
}

func (e *Engine) pause(ctx context.Context) error {
	if e.actionDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(e.actionDelay):
		return nil
	}
}

func (e *Engine) ok(runID string, w *wallet.Wallet, action, txHash, detail string) {
	metrics.ActionsTotal.WithLabelValues(action, history.OutcomeOK).Inc()
	e.record(runID, w, action, txHash, history.OutcomeOK, detail)
}

func (e *Engine) skip(runID string, w *wallet.Wallet, action string, err error) {
	e.skipDetail(runID, w, action, err.Error())
}

func (e *Engine) skipDetail(runID string, w *wallet.Wallet, action, detail string) {
	metrics.ActionsTotal.WithLabelValues(action, history.OutcomeSkipped).Inc()
	e.record(runID, w, action, "", history.OutcomeSkipped, detail)
}

func (e *Engine) fail(runID string, w *wallet.Wallet, action, txHash string, err error) error {
	metrics.ActionsTotal.WithLabelValues(action, history.OutcomeFailed).Inc()
	metrics.ErrorsTotal.WithLabelValues(action, odyssey.KindOf(err).String()).Inc()
	e.record(runID, w, action, txHash, history.OutcomeFailed, err.Error())
	return fmt.Errorf("%s failed: %w", action, err)
}

func (e *Engine) record(runID string, w *wallet.Wallet, action, txHash, outcome, detail string) {
	if e.store == nil {
		return
	}
	err := e.store.Append(&history.Record{
		RunID:   runID,
		Wallet:  w.Address(),
		Action:  action,
		TxHash:  txHash,
		Outcome: outcome,
		Detail:  detail,
	})
	if err != nil {
		e.logger.Warn("failed to record action", zap.Error(err))
	}
}

func lamportsToSOL(lamports int64) string {
	return decimal.New(lamports, -9).String()
}
