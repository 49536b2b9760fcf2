package models

import (
	"time"

	"github.com/rxtech-lab/starpass-mcp/internal/clarity"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSucceeded TransactionStatus = "succeeded"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// AppDetails is shown by the wallet in its consent prompt.
type AppDetails struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// ContractCall is a built, ready-to-sign contract function invocation.
type ContractCall struct {
	Operation       Operation       `json:"operation"`
	ContractAddress string          `json:"contract_address"`
	ContractName    string          `json:"contract_name"`
	FunctionName    string          `json:"function_name"`
	FunctionArgs    []clarity.Value `json:"function_args"`
	AppDetails      AppDetails      `json:"app_details"`
	// Network is the descriptor the wallet signs for; it is not persisted
	// with the call, sessions reference it through ChainID.
	Network Chain `json:"-"`
}

// ContractID returns the fully qualified contract identifier.
func (c ContractCall) ContractID() string {
	return c.ContractAddress + "." + c.ContractName
}

// TransactionSession tracks one contract call awaiting wallet consent.
type TransactionSession struct {
	ID     string  `gorm:"primaryKey" json:"id"`
	UserID *string `gorm:"index;type:varchar(255)" json:"user_id,omitempty"`

	// Call is what the wallet is asked to sign.
	Call ContractCall `gorm:"serializer:json" json:"call"`

	TransactionStatus TransactionStatus `gorm:"default:pending" json:"status"`
	TransactionID     string            `json:"transaction_id,omitempty"`
	RawTransaction    string            `gorm:"type:text" json:"raw_transaction,omitempty"`
	FailureReason     string            `gorm:"type:text" json:"failure_reason,omitempty"`

	ChainID uint  `gorm:"not null" json:"chain_id"`
	Chain   Chain `gorm:"foreignKey:ChainID;references:ID" json:"chain,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsResolved reports whether the session reached a terminal status.
func (s TransactionSession) IsResolved() bool {
	return s.TransactionStatus != TransactionStatusPending
}
