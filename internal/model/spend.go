package model

import "time"

// SpendStep names a transaction's position in a run.
type SpendStep string

var (
	// StepFirst spends the funding output found on the node.
	StepFirst SpendStep = "first"
	// StepSecond spends output 0 of StepFirst.
	StepSecond SpendStep = "second"
	// StepSweep spends one of several independent funding outputs.
	StepSweep SpendStep = "sweep"
)

// SpendRecord describes a built transaction and, once known, its broadcast result.
type SpendRecord struct {
	Step            SpendStep `json:"step"`
	TxID            string    `json:"txid"`
	BroadcastTxID   string    `json:"broadcast_txid,omitempty"`
	FundingOutPoint string    `json:"funding_outpoint"`
	FundingValue    uint64    `json:"funding_value"`
	OutputValue     uint64    `json:"output_value"`
	Fee             uint64    `json:"fee"`
	Hex             string    `json:"hex"`
	CreatedAt       time.Time `json:"created_at"`
}
