package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"gorm.io/gorm"
)

const DefaultSessionTTL = 30 * time.Minute

type TransactionService interface {
	CreateTransactionSession(req CreateTransactionSessionRequest) (string, error)
	GetTransactionSession(sessionID string) (*models.TransactionSession, error)
	CompleteTransactionSession(sessionID, transactionID, rawTransaction string) (*models.TransactionSession, error)
	FailTransactionSession(sessionID, reason string) (*models.TransactionSession, error)
	ListTransactionSessionsByUser(userID string) ([]models.TransactionSession, error)
}

type transactionService struct {
	db  *gorm.DB
	ttl time.Duration
}

type CreateTransactionSessionRequest struct {
	Call    models.ContractCall `json:"call"`
	ChainID uint                `json:"chain_id"`
	UserID  *string             `json:"user_id,omitempty"`
}

func NewTransactionService(db *gorm.DB, ttl time.Duration) TransactionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &transactionService{db: db, ttl: ttl}
}

func (s *transactionService) CreateTransactionSession(req CreateTransactionSessionRequest) (string, error) {
	sessionID := uuid.New().String()
	now := time.Now()

	session := &models.TransactionSession{
		ID:                sessionID,
		UserID:            req.UserID,
		Call:              req.Call,
		TransactionStatus: models.TransactionStatusPending,
		ChainID:           req.ChainID,
		CreatedAt:         now,
		UpdatedAt:         now,
		ExpiresAt:         now.Add(s.ttl),
	}

	if err := s.db.Create(session).Error; err != nil {
		return "", err
	}
	return sessionID, nil
}

// GetTransactionSession returns the session with its chain. A pending session
// past its expiry is reported as ErrSessionExpired.
func (s *transactionService) GetTransactionSession(sessionID string) (*models.TransactionSession, error) {
	var session models.TransactionSession
	err := s.db.Where("id = ?", sessionID).Preload("Chain").First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}

	if !session.IsResolved() && time.Now().After(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// CompleteTransactionSession marks a pending session as succeeded.
func (s *transactionService) CompleteTransactionSession(sessionID, transactionID, rawTransaction string) (*models.TransactionSession, error) {
	return s.resolve(sessionID, map[string]interface{}{
		"transaction_status": models.TransactionStatusSucceeded,
		"transaction_id":     transactionID,
		"raw_transaction":    rawTransaction,
	})
}

// FailTransactionSession marks a pending session as failed with reason.
func (s *transactionService) FailTransactionSession(sessionID, reason string) (*models.TransactionSession, error) {
	return s.resolve(sessionID, map[string]interface{}{
		"transaction_status": models.TransactionStatusFailed,
		"failure_reason":     reason,
	})
}

// resolve moves a session out of pending. The status condition in the update
// makes the transition happen at most once even across processes.
func (s *transactionService) resolve(sessionID string, updates map[string]interface{}) (*models.TransactionSession, error) {
	updates["updated_at"] = time.Now()
	result := s.db.Model(&models.TransactionSession{}).
		Where("id = ? AND transaction_status = ?", sessionID, models.TransactionStatusPending).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	var session models.TransactionSession
	if err := s.db.Preload("Chain").First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	if result.RowsAffected == 0 {
		return &session, ErrSessionResolved
	}
	return &session, nil
}

// ListTransactionSessionsByUser returns all transaction sessions for a specific user
func (s *transactionService) ListTransactionSessionsByUser(userID string) ([]models.TransactionSession, error) {
	var sessions []models.TransactionSession
	err := s.db.Preload("Chain").Where("user_id = ?", userID).Order("created_at desc").Find(&sessions).Error
	return sessions, err
}
