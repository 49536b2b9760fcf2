package services

import (
	"fmt"

	"github.com/rxtech-lab/starpass-mcp/internal/models"
)

type HookService interface {
	AddHook(hook Hook) error
	OnTransactionConfirmed(op models.Operation, transactionID string, session models.TransactionSession) error
}

type hookService struct {
	hooks []Hook
}

func NewHookService() HookService {
	return &hookService{
		hooks: []Hook{},
	}
}

func (h *hookService) AddHook(hook Hook) error {
	if hook == nil {
		return fmt.Errorf("hook is nil")
	}
	h.hooks = append(h.hooks, hook)
	return nil
}

func (h *hookService) OnTransactionConfirmed(op models.Operation, transactionID string, session models.TransactionSession) error {
	for _, hook := range h.hooks {
		if hook.CanHandle(op) {
			if err := hook.OnTransactionConfirmed(op, transactionID, session); err != nil {
				return err
			}
		}
	}
	return nil
}
