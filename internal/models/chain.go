package models

import (
	"time"

	"gorm.io/gorm"
)

// Chain is a Stacks network descriptor. Sessions reference it so the wallet
// knows which network to sign for.
type Chain struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	NetworkID string         `gorm:"column:network_id;not null" json:"network_id"` // mainnet or testnet
	APIURL    string         `gorm:"column:api_url;not null" json:"api_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsMainnet reports whether the chain is Stacks mainnet.
func (c Chain) IsMainnet() bool {
	return c.NetworkID == "mainnet"
}
