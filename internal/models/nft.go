package models

import "time"

// Operation names a user-initiated contract interaction.
type Operation string

const (
	OperationMint     Operation = "mint"
	OperationTransfer Operation = "transfer"
	OperationLease    Operation = "lease"
	OperationInfo     Operation = "info"
	OperationOwns     Operation = "owns"
)

// OperationRequest carries the validated, typed arguments of one submission.
// Only the fields used by Operation are set.
type OperationRequest struct {
	Operation         Operation `json:"operation"`
	NFTID             uint64    `json:"nft_id,omitempty"`
	Recipient         string    `json:"recipient,omitempty"`
	Lessee            string    `json:"lessee,omitempty"`
	Owner             string    `json:"owner,omitempty"`
	Tier              uint64    `json:"tier"`
	Metadata          string    `json:"metadata,omitempty"`
	RoyaltyPercentage uint64    `json:"royalty_percentage"`
	LeaseDuration     uint64    `json:"lease_duration,omitempty"`
}

// NFTInfo is the read model assembled from the contract's getters.
type NFTInfo struct {
	NFTID         uint64 `json:"nft_id"`
	CurrentHolder string `json:"current_holder"`
	Tier          uint64 `json:"tier"`
	Metadata      string `json:"metadata"`
}

// NFTActivity records a contract call the wallet reported as submitted.
type NFTActivity struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        *string   `gorm:"index;type:varchar(255)" json:"user_id,omitempty"`
	SessionID     string    `gorm:"uniqueIndex;not null" json:"session_id"`
	Operation     Operation `gorm:"index;not null" json:"operation"`
	FunctionName  string    `gorm:"not null" json:"function_name"`
	Arguments     JSON      `gorm:"type:text" json:"arguments"`
	TransactionID string    `gorm:"index;not null" json:"transaction_id"`
	ChainID       uint      `gorm:"not null" json:"chain_id"`
	CreatedAt     time.Time `json:"created_at"`
}
