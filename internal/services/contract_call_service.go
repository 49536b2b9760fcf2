package services

import (
	"fmt"

	"github.com/rxtech-lab/starpass-mcp/internal/clarity"
	"github.com/rxtech-lab/starpass-mcp/internal/constants"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
)

// ContractTarget identifies the deployed contract and the network it lives on.
type ContractTarget struct {
	ContractAddress string
	ContractName    string
	Network         models.Chain
	AppDetails      models.AppDetails
}

// ContractCallService turns validated requests into contract calls.
type ContractCallService interface {
	Build(req models.OperationRequest) (models.ContractCall, error)
	Target() ContractTarget
}

type contractCallService struct {
	target ContractTarget
}

func NewContractCallService(target ContractTarget) ContractCallService {
	return &contractCallService{target: target}
}

func (s *contractCallService) Target() ContractTarget {
	return s.target
}

// Build maps the request onto the contract function's parameter list.
func (s *contractCallService) Build(req models.OperationRequest) (models.ContractCall, error) {
	var (
		function string
		args     []clarity.Value
	)
	switch req.Operation {
	case models.OperationMint:
		function = constants.FunctionMintNFT
		args = []clarity.Value{
			clarity.StandardPrincipal(req.Recipient),
			clarity.UInt(req.Tier),
			clarity.StringASCII(req.Metadata),
			clarity.UInt(req.RoyaltyPercentage),
		}
	case models.OperationTransfer:
		function = constants.FunctionTransferNFT
		args = []clarity.Value{
			clarity.UInt(req.NFTID),
			clarity.StandardPrincipal(req.Recipient),
		}
	case models.OperationLease:
		function = constants.FunctionLeaseNFT
		args = []clarity.Value{
			clarity.UInt(req.NFTID),
			clarity.StandardPrincipal(req.Lessee),
			clarity.UInt(req.LeaseDuration),
		}
	default:
		return models.ContractCall{}, fmt.Errorf("%w: %s", ErrOperationNotBuildable, req.Operation)
	}

	// every argument must encode before a session exists
	for i, arg := range args {
		if _, err := arg.Serialize(); err != nil {
			return models.ContractCall{}, &DispatchError{
				Operation: req.Operation,
				Err:       fmt.Errorf("argument %d of %s cannot be encoded: %w", i, function, err),
			}
		}
	}

	return models.ContractCall{
		Operation:       req.Operation,
		ContractAddress: s.target.ContractAddress,
		ContractName:    s.target.ContractName,
		FunctionName:    function,
		FunctionArgs:    args,
		AppDetails:      s.target.AppDetails,
		Network:         s.target.Network,
	}, nil
}
