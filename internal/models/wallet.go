package models

import "time"

type WalletSessionStatus string

const (
	WalletSessionStatusPending   WalletSessionStatus = "pending"
	WalletSessionStatusSignedIn  WalletSessionStatus = "signed_in"
	WalletSessionStatusSignedOut WalletSessionStatus = "signed_out"
)

// WalletSession is a user's connection to their wallet, from sign-in
// initiation to sign-out.
type WalletSession struct {
	ID        string              `gorm:"primaryKey" json:"id"`
	Address   *string             `gorm:"index;type:varchar(64)" json:"address,omitempty"`
	Status    WalletSessionStatus `gorm:"default:pending" json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}
