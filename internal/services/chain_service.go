package services

import (
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"gorm.io/gorm"
)

// ChainService handles the registry of Stacks networks sessions refer to
type ChainService interface {
	EnsureChain(networkID, apiURL string) (*models.Chain, error)
	GetChain(id uint) (*models.Chain, error)
	ListChains() ([]models.Chain, error)
}

type chainService struct {
	db *gorm.DB
}

// NewChainService creates a new ChainService
func NewChainService(db *gorm.DB) ChainService {
	return &chainService{db: db}
}

// EnsureChain returns the chain for networkID, creating it or updating its
// API URL as needed
func (s *chainService) EnsureChain(networkID, apiURL string) (*models.Chain, error) {
	var chain models.Chain
	err := s.db.Where(models.Chain{Name: "stacks-" + networkID}).
		Attrs(models.Chain{NetworkID: networkID, APIURL: apiURL}).
		FirstOrCreate(&chain).Error
	if err != nil {
		return nil, err
	}

	if chain.APIURL != apiURL {
		if err := s.db.Model(&chain).Update("api_url", apiURL).Error; err != nil {
			return nil, err
		}
		chain.APIURL = apiURL
	}
	return &chain, nil
}

// GetChain returns a chain by ID
func (s *chainService) GetChain(id uint) (*models.Chain, error) {
	var chain models.Chain
	if err := s.db.First(&chain, id).Error; err != nil {
		return nil, err
	}
	return &chain, nil
}

// ListChains returns all chains
func (s *chainService) ListChains() ([]models.Chain, error) {
	var chains []models.Chain
	err := s.db.Find(&chains).Error
	return chains, err
}
