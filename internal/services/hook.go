package services

import "github.com/rxtech-lab/starpass-mcp/internal/models"

// Hook is used to perform actions when the wallet reports a contract call as submitted
type Hook interface {
	// CanHandle is used to check if the hook can handle the operation
	CanHandle(op models.Operation) bool
	// OnTransactionConfirmed is called once per succeeded session
	OnTransactionConfirmed(op models.Operation, transactionID string, session models.TransactionSession) error
}
