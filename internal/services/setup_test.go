package services

import (
	"testing"

	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	aliceAddress = "SPTQAXBNENTQAXBNENTQAXBNENTQAXBNF8JV03X"
	bobAddress   = "SPG400000000000000000000000000000KNH68K"

	// matches the address pattern but has no valid c32check payload
	unencodableAddress = "SPAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use in-memory SQLite database for testing
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to in-memory database")

	// every pooled connection would otherwise get its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Chain{},
		&models.TransactionSession{},
		&models.WalletSession{},
		&models.NFTActivity{},
	)
	require.NoError(t, err, "Failed to run migrations")

	// Enable debug mode to see SQL queries during test
	if testing.Verbose() {
		db = db.Debug()
	}

	return db
}

func createTestChain(t *testing.T, db *gorm.DB) models.Chain {
	chain := models.Chain{
		Name:      "stacks-testnet",
		NetworkID: "testnet",
		APIURL:    "https://api.testnet.hiro.so",
	}
	require.NoError(t, db.Create(&chain).Error)
	return chain
}
