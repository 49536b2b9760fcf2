package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rxtech-lab/starpass-mcp/internal/metrics"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"gorm.io/gorm"
)

// NFTService is the entry point for user actions: writes are validated,
// built and handed to the wallet; reads go straight to the contract.
type NFTService interface {
	Submit(ctx context.Context, op models.Operation, fields map[string]string) (*Submission, error)
	Info(ctx context.Context, fields map[string]string) (*models.NFTInfo, error)
	Owns(ctx context.Context, fields map[string]string) (bool, error)
	Total(ctx context.Context) (uint64, error)
	ListActivity(userID *string, limit int) ([]models.NFTActivity, error)
}

type nftService struct {
	db           *gorm.DB
	validation   ValidationService
	contractCall ContractCallService
	dispatch     DispatchService
	query        QueryService
	metrics      *metrics.Metrics
}

func NewNFTService(db *gorm.DB, validation ValidationService, contractCall ContractCallService, dispatch DispatchService, query QueryService, m *metrics.Metrics) NFTService {
	return &nftService{
		db:           db,
		validation:   validation,
		contractCall: contractCall,
		dispatch:     dispatch,
		query:        query,
		metrics:      m,
	}
}

// Submit runs mint, transfer or lease. Invalid input never reaches the wallet.
func (s *nftService) Submit(ctx context.Context, op models.Operation, fields map[string]string) (*Submission, error) {
	req, err := s.validate(op, fields)
	if err != nil {
		return nil, err
	}
	call, err := s.contractCall.Build(req)
	if err != nil {
		return nil, err
	}
	return s.dispatch.Submit(ctx, call)
}

func (s *nftService) Info(ctx context.Context, fields map[string]string) (*models.NFTInfo, error) {
	req, err := s.validate(models.OperationInfo, fields)
	if err != nil {
		return nil, err
	}
	return s.query.GetNFTInfo(ctx, req.NFTID)
}

func (s *nftService) Owns(ctx context.Context, fields map[string]string) (bool, error) {
	req, err := s.validate(models.OperationOwns, fields)
	if err != nil {
		return false, err
	}
	return s.query.OwnsNFT(ctx, req.Owner, req.NFTID)
}

func (s *nftService) Total(ctx context.Context) (uint64, error) {
	return s.query.TotalNFTs(ctx)
}

// ListActivity returns the newest activity first, optionally for one user.
func (s *nftService) ListActivity(userID *string, limit int) ([]models.NFTActivity, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var activities []models.NFTActivity
	query := s.db.Order("created_at desc").Limit(limit)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if err := query.Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to list nft activity: %w", err)
	}
	return activities, nil
}

func (s *nftService) validate(op models.Operation, fields map[string]string) (models.OperationRequest, error) {
	req, err := s.validation.Validate(op, fields)
	var verr *ValidationError
	if errors.As(err, &verr) {
		s.metrics.ValidationFailure(string(op))
	}
	return req, err
}
