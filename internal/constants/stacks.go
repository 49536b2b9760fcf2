package constants

// Default contract the service talks to.
const (
	DefaultContractAddress = "SP000000000000000000002Q6VF78"
	DefaultContractName    = "starpass-nft"
)

// Default application details shown in the wallet consent prompt.
const (
	DefaultAppName     = "Starpass NFT"
	DefaultAppIconPath = "/app-icon.png"
)

// Stacks networks.
const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"

	DefaultMainnetAPIURL = "https://api.hiro.so"
	DefaultTestnetAPIURL = "https://api.testnet.hiro.so"
)

// Contract function names.
const (
	FunctionMintNFT          = "mint-nft"
	FunctionTransferNFT      = "transfer-nft"
	FunctionLeaseNFT         = "lease-nft"
	FunctionGetCurrentHolder = "get-current-holder"
	FunctionGetTier          = "get-tier"
	FunctionGetMetadata      = "get-metadata"
	FunctionGetTotalNFTs     = "get-total-nfts"
	FunctionOwnsNFT          = "owns-nft"
)

// Field limits enforced before any contract call.
const (
	MaxTier              = 10
	MaxRoyaltyPercentage = 100
	MinNFTID             = 1
	MinLeaseDuration     = 1
)
