package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"github.com/rxtech-lab/starpass-mcp/internal/utils"
	"gorm.io/gorm"
)

var ErrNotSignedIn = errors.New("wallet session is not signed in")

// WalletService manages the user's wallet connection: a sign-in is initiated
// here, completed by the wallet with the user's address, and ends on sign-out.
type WalletService interface {
	InitiateSignIn() (*models.WalletSession, string, error)
	IsSignInPending(sessionID string) (bool, error)
	HandlePendingSignIn(sessionID, address string) (string, error)
	LoadUser(sessionID string) (*models.WalletSession, error)
	SignOut(sessionID string) error
}

type WalletServiceConfig struct {
	BaseURL    string
	ServerPort int
	SessionTTL time.Duration
}

type walletService struct {
	db         *gorm.DB
	validation ValidationService
	issuer     *utils.SessionTokenIssuer
	cfg        WalletServiceConfig
}

func NewWalletService(db *gorm.DB, validation ValidationService, issuer *utils.SessionTokenIssuer, cfg WalletServiceConfig) WalletService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	return &walletService{db: db, validation: validation, issuer: issuer, cfg: cfg}
}

// InitiateSignIn creates a pending wallet session and returns the page the
// user opens to connect their wallet.
func (s *walletService) InitiateSignIn() (*models.WalletSession, string, error) {
	now := time.Now()
	session := &models.WalletSession{
		ID:        uuid.New().String(),
		Status:    models.WalletSessionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create wallet session: %w", err)
	}

	url, err := utils.GetWalletSignInUrl(s.cfg.BaseURL, s.cfg.ServerPort, session.ID)
	if err != nil {
		return nil, "", err
	}
	return session, url, nil
}

func (s *walletService) IsSignInPending(sessionID string) (bool, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return false, err
	}
	return session.Status == models.WalletSessionStatusPending, nil
}

// HandlePendingSignIn completes a pending sign-in with the address the wallet
// connected and returns a session token for it.
func (s *walletService) HandlePendingSignIn(sessionID, address string) (string, error) {
	if err := s.validation.ValidateAddress("address", address); err != nil {
		return "", err
	}

	session, err := s.get(sessionID)
	if err != nil {
		return "", err
	}
	if session.Status != models.WalletSessionStatusPending {
		return "", ErrSessionResolved
	}

	now := time.Now()
	result := s.db.Model(&models.WalletSession{}).
		Where("id = ? AND status = ?", sessionID, models.WalletSessionStatusPending).
		Updates(map[string]interface{}{
			"address":    address,
			"status":     models.WalletSessionStatusSignedIn,
			"updated_at": now,
			"expires_at": now.Add(s.cfg.SessionTTL),
		})
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", ErrSessionResolved
	}

	return s.issuer.Issue(sessionID, address)
}

// LoadUser returns the signed-in wallet session.
func (s *walletService) LoadUser(sessionID string) (*models.WalletSession, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.WalletSessionStatusSignedIn {
		return nil, ErrNotSignedIn
	}
	return session, nil
}

func (s *walletService) SignOut(sessionID string) error {
	result := s.db.Model(&models.WalletSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":     models.WalletSessionStatusSignedOut,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

func (s *walletService) get(sessionID string) (*models.WalletSession, error) {
	var session models.WalletSession
	if err := s.db.Where("id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	if session.Status != models.WalletSessionStatusSignedOut && time.Now().After(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	return &session, nil
}
