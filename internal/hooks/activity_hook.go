package hooks

import (
	"fmt"

	"github.com/rxtech-lab/starpass-mcp/internal/constants"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// parameter names of each write function, in declaration order
var functionParameters = map[string][]string{
	constants.FunctionMintNFT:     {"recipient", "tier", "metadata", "royalty-percentage"},
	constants.FunctionTransferNFT: {"nft-id", "recipient"},
	constants.FunctionLeaseNFT:    {"nft-id", "lessee", "lease-duration"},
}

type ActivityHook struct {
	db *gorm.DB
}

// CanHandle implements Hook.
func (a *ActivityHook) CanHandle(op models.Operation) bool {
	return op == models.OperationMint ||
		op == models.OperationTransfer ||
		op == models.OperationLease
}

// OnTransactionConfirmed implements Hook.
func (a *ActivityHook) OnTransactionConfirmed(op models.Operation, transactionID string, session models.TransactionSession) error {
	activity := models.NFTActivity{
		UserID:        session.UserID,
		SessionID:     session.ID,
		Operation:     op,
		FunctionName:  session.Call.FunctionName,
		Arguments:     namedArguments(session.Call),
		TransactionID: transactionID,
		ChainID:       session.ChainID,
	}

	// a session is recorded once even if the hook runs again
	err := a.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoNothing: true,
	}).Create(&activity).Error
	if err != nil {
		return fmt.Errorf("failed to record nft activity: %w", err)
	}
	return nil
}

func namedArguments(call models.ContractCall) models.JSON {
	names := functionParameters[call.FunctionName]
	args := make(models.JSON, len(call.FunctionArgs))
	for i, arg := range call.FunctionArgs {
		name := fmt.Sprintf("arg%d", i)
		if i < len(names) {
			name = names[i]
		}
		args[name] = arg.String()
	}
	return args
}

func NewActivityHook(db *gorm.DB) services.Hook {
	return &ActivityHook{
		db: db,
	}
}
