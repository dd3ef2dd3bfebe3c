package entity

import "time"

// BalanceSnapshot captures account state right after a mutation.
// String fields avoid precision issues when rendered in UI layers.
type BalanceSnapshot struct {
	Timestamp      time.Time `json:"ts"`
	Balance        string    `json:"balance"`
	PortfolioValue string    `json:"portfolio_value,omitempty"`
	ProfitOrLoss   string    `json:"profit_or_loss,omitempty"`
}

// BalanceSnapshotRecord bundles a snapshot with the log index it originated from.
type BalanceSnapshotRecord struct {
	Index    uint64
	Snapshot BalanceSnapshot
}
