package services

import (
	"context"
	"time"

	"github.com/rxtech-lab/starpass-mcp/internal/clarity"
	"github.com/rxtech-lab/starpass-mcp/internal/clarity/unwrap"
	"github.com/rxtech-lab/starpass-mcp/internal/constants"
	"github.com/rxtech-lab/starpass-mcp/internal/metrics"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"github.com/rxtech-lab/starpass-mcp/internal/stacks"
	"golang.org/x/sync/errgroup"
)

// ReadOnlyCaller evaluates a read-only contract function.
type ReadOnlyCaller interface {
	CallReadOnly(ctx context.Context, call stacks.ReadOnlyCall) (clarity.Value, error)
}

// QueryService reads NFT state from the contract. Results are never cached.
type QueryService interface {
	GetNFTInfo(ctx context.Context, nftID uint64) (*models.NFTInfo, error)
	TotalNFTs(ctx context.Context) (uint64, error)
	OwnsNFT(ctx context.Context, owner string, nftID uint64) (bool, error)
}

type queryService struct {
	caller          ReadOnlyCaller
	contractAddress string
	contractName    string
	metrics         *metrics.Metrics
}

func NewQueryService(caller ReadOnlyCaller, contractAddress, contractName string, m *metrics.Metrics) QueryService {
	return &queryService{
		caller:          caller,
		contractAddress: contractAddress,
		contractName:    contractName,
		metrics:         m,
	}
}

func (s *queryService) call(ctx context.Context, function string, args ...clarity.Value) (clarity.Value, error) {
	start := time.Now()
	v, err := s.caller.CallReadOnly(ctx, stacks.ReadOnlyCall{
		ContractAddress: s.contractAddress,
		ContractName:    s.contractName,
		FunctionName:    function,
		FunctionArgs:    args,
	})
	s.metrics.ReadOnlyCall(function, start, err)
	return v, err
}

// GetNFTInfo fetches holder, tier and metadata concurrently. Any failed call
// fails the whole query.
func (s *queryService) GetNFTInfo(ctx context.Context, nftID uint64) (*models.NFTInfo, error) {
	var (
		holder   string
		tier     uint64
		metadata string
	)
	id := clarity.UInt(nftID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		holder, err = unwrap.Principal(s.call(gctx, constants.FunctionGetCurrentHolder, id))
		return wrapQueryError(constants.FunctionGetCurrentHolder, err)
	})
	g.Go(func() error {
		var err error
		tier, err = unwrap.LimitedUInt64(s.call(gctx, constants.FunctionGetTier, id), constants.MaxTier)
		return wrapQueryError(constants.FunctionGetTier, err)
	})
	g.Go(func() error {
		var err error
		metadata, err = unwrap.String(s.call(gctx, constants.FunctionGetMetadata, id))
		return wrapQueryError(constants.FunctionGetMetadata, err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.NFTInfo{
		NFTID:         nftID,
		CurrentHolder: holder,
		Tier:          tier,
		Metadata:      metadata,
	}, nil
}

func (s *queryService) TotalNFTs(ctx context.Context) (uint64, error) {
	total, err := unwrap.UInt64(s.call(ctx, constants.FunctionGetTotalNFTs))
	if err != nil {
		return 0, wrapQueryError(constants.FunctionGetTotalNFTs, err)
	}
	return total, nil
}

func (s *queryService) OwnsNFT(ctx context.Context, owner string, nftID uint64) (bool, error) {
	owns, err := unwrap.Bool(s.call(ctx, constants.FunctionOwnsNFT, clarity.StandardPrincipal(owner), clarity.UInt(nftID)))
	if err != nil {
		return false, wrapQueryError(constants.FunctionOwnsNFT, err)
	}
	return owns, nil
}

func wrapQueryError(function string, err error) error {
	if err == nil {
		return nil
	}
	return &QueryError{Function: function, Err: err}
}
