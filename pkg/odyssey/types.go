package odyssey

import "encoding/json"

// envelope is the response wrapper shared by every Odyssey endpoint.
type envelope struct {
	Code    int             `json:"code"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// AuthRequest is the challenge/response login payload.
type AuthRequest struct {
	Address        string `json:"address"`
	AddressEncoded string `json:"address_encoded"`
	Signature      string `json:"signature"`
}

type authData struct {
	Token string `json:"token"`
}

// RewardsInfo is the user profile returned by /user/rewards/info.
type RewardsInfo struct {
	WalletBalance int64 `json:"wallet_balance"`
	Ring          int64 `json:"ring"`
	RingMonitor   int64 `json:"ring_monitor"`
}

// txData carries a base64-encoded unsigned transaction or a submitted hash.
type txData struct {
	Hash string `json:"hash"`
}

// CheckInResult is returned after reporting a check-in transaction.
type CheckInResult struct {
	AccumulativeDays int `json:"accumulative_days"`
}

// StageInfo describes one milestone stage of the daily transaction rewards.
type StageInfo struct {
	Claimed  bool `json:"claimed"`
	Rewards  int  `json:"rewards"`
	Quantity int  `json:"quantity"`
}

// DailyTxState is the milestone progress returned by
// /user/transactions/state/daily.
type DailyTxState struct {
	TotalTransactions int `json:"total_transactions"`
	StageInfo         struct {
		Stage1 StageInfo `json:"stage_1"`
		Stage2 StageInfo `json:"stage_2"`
		Stage3 StageInfo `json:"stage_3"`
	} `json:"stage_info"`
}

// Stages returns the stage info in claim order.
func (s *DailyTxState) Stages() []StageInfo {
	return []StageInfo{s.StageInfo.Stage1, s.StageInfo.Stage2, s.StageInfo.Stage3}
}

// ClaimResult is returned by a milestone stage claim.
type ClaimResult struct {
	Stage   int  `json:"stage"`
	Claimed bool `json:"claimed"`
}

// BoxResult is returned after opening a mystery box.
type BoxResult struct {
	Amount  int  `json:"amount"`
	Success bool `json:"success"`
}
