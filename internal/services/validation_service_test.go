package services

import (
	"strings"
	"testing"

	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMintFields() map[string]string {
	return map[string]string{
		FieldRecipient:         aliceAddress,
		FieldTier:              "3",
		FieldMetadata:          "ipfs://starpass/3",
		FieldRoyaltyPercentage: "5",
	}
}

func TestValidateMint(t *testing.T) {
	service := NewValidationService()

	t.Run("valid request", func(t *testing.T) {
		req, err := service.Validate(models.OperationMint, validMintFields())
		require.NoError(t, err)
		assert.Equal(t, models.OperationRequest{
			Operation:         models.OperationMint,
			Recipient:         aliceAddress,
			Tier:              3,
			Metadata:          "ipfs://starpass/3",
			RoyaltyPercentage: 5,
		}, req)
	})

	tests := []struct {
		name   string
		field  string
		value  string
		reason string
	}{
		{name: "tier lower bound", field: FieldTier, value: "0"},
		{name: "tier upper bound", field: FieldTier, value: "10"},
		{name: "tier above range", field: FieldTier, value: "11", reason: "must be between 0 and 10"},
		{name: "negative tier", field: FieldTier, value: "-1", reason: "must be a whole number"},
		{name: "tier with sign", field: FieldTier, value: "+1", reason: "must be a whole number"},
		{name: "tier with whitespace", field: FieldTier, value: " 1", reason: "must be a whole number"},
		{name: "tier with decimals", field: FieldTier, value: "1.0", reason: "must be a whole number"},
		{name: "royalty upper bound", field: FieldRoyaltyPercentage, value: "100"},
		{name: "royalty above range", field: FieldRoyaltyPercentage, value: "101", reason: "must be between 0 and 100"},
		{name: "royalty with separator", field: FieldRoyaltyPercentage, value: "1,0", reason: "must be a whole number"},
		{name: "huge royalty", field: FieldRoyaltyPercentage, value: "184467440737095516160", reason: "is too large"},
		{name: "bad recipient", field: FieldRecipient, value: "bad-address", reason: addressReason},
		{name: "lowercase recipient", field: FieldRecipient, value: strings.ToLower(aliceAddress), reason: addressReason},
		{name: "testnet recipient", field: FieldRecipient, value: "ST000000000000000000002AMW42H", reason: addressReason},
		{name: "missing metadata", field: FieldMetadata, value: "", reason: "is required"},
		{name: "non-ascii metadata", field: FieldMetadata, value: "ipfs://ünicode", reason: "must contain printable ASCII characters only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validMintFields()
			fields[tt.field] = tt.value

			_, err := service.Validate(models.OperationMint, fields)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, tt.reason, verr.Fields[0].Reason)
		})
	}
}

func TestValidateAggregatesInFieldOrder(t *testing.T) {
	service := NewValidationService()

	_, err := service.Validate(models.OperationMint, map[string]string{
		FieldRoyaltyPercentage: "500",
		FieldTier:              "abc",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, models.OperationMint, verr.Operation)
	assert.Equal(t, []FieldError{
		{Field: FieldRecipient, Reason: "is required"},
		{Field: FieldTier, Reason: "must be a whole number"},
		{Field: FieldMetadata, Reason: "is required"},
		{Field: FieldRoyaltyPercentage, Reason: "must be between 0 and 100"},
	}, verr.Fields)
	assert.Contains(t, err.Error(), "recipient: is required")
}

func TestValidateTransferLeaseInfo(t *testing.T) {
	service := NewValidationService()

	t.Run("transfer", func(t *testing.T) {
		req, err := service.Validate(models.OperationTransfer, map[string]string{
			FieldNFTID:     "5",
			FieldRecipient: bobAddress,
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(5), req.NFTID)
		assert.Equal(t, bobAddress, req.Recipient)
	})

	t.Run("transfer rejects nft id zero", func(t *testing.T) {
		_, err := service.Validate(models.OperationTransfer, map[string]string{
			FieldNFTID:     "0",
			FieldRecipient: bobAddress,
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		reason, ok := verr.Field(FieldNFTID)
		assert.True(t, ok)
		assert.Equal(t, "must be at least 1", reason)
	})

	t.Run("lease", func(t *testing.T) {
		req, err := service.Validate(models.OperationLease, map[string]string{
			FieldNFTID:         "2",
			FieldLessee:        bobAddress,
			FieldLeaseDuration: "144",
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), req.NFTID)
		assert.Equal(t, bobAddress, req.Lessee)
		assert.Equal(t, uint64(144), req.LeaseDuration)
	})

	t.Run("lease rejects zero duration", func(t *testing.T) {
		_, err := service.Validate(models.OperationLease, map[string]string{
			FieldNFTID:         "2",
			FieldLessee:        bobAddress,
			FieldLeaseDuration: "0",
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []FieldError{{Field: FieldLeaseDuration, Reason: "must be at least 1"}}, verr.Fields)
	})

	t.Run("info requires nft id", func(t *testing.T) {
		_, err := service.Validate(models.OperationInfo, map[string]string{})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []FieldError{{Field: FieldNFTID, Reason: "is required"}}, verr.Fields)
	})

	t.Run("owns", func(t *testing.T) {
		req, err := service.Validate(models.OperationOwns, map[string]string{
			FieldOwner: aliceAddress,
			FieldNFTID: "9",
		})
		require.NoError(t, err)
		assert.Equal(t, aliceAddress, req.Owner)
		assert.Equal(t, uint64(9), req.NFTID)
	})

	t.Run("unknown operation", func(t *testing.T) {
		_, err := service.Validate(models.Operation("burn"), map[string]string{})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "operation", verr.Fields[0].Field)
	})
}

func TestValidateAddress(t *testing.T) {
	service := NewValidationService()

	assert.NoError(t, service.ValidateAddress("address", aliceAddress))

	err := service.ValidateAddress("address", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields[0].Reason)
	assert.Equal(t, "invalid input: address: is required", err.Error())

	assert.Error(t, service.ValidateAddress("address", "SP123"))

	err = service.ValidateAddress("address", unencodableAddress)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, checksumReason, verr.Fields[0].Reason)
}

func TestValidateRejectsPatternOnlyAddresses(t *testing.T) {
	service := NewValidationService()

	tests := []struct {
		name   string
		op     models.Operation
		field  string
		fields map[string]string
	}{
		{
			name:  "mint recipient",
			op:    models.OperationMint,
			field: FieldRecipient,
			fields: func() map[string]string {
				f := validMintFields()
				f[FieldRecipient] = unencodableAddress
				return f
			}(),
		},
		{
			name:   "transfer recipient",
			op:     models.OperationTransfer,
			field:  FieldRecipient,
			fields: map[string]string{FieldNFTID: "1", FieldRecipient: unencodableAddress},
		},
		{
			name:   "lease lessee",
			op:     models.OperationLease,
			field:  FieldLessee,
			fields: map[string]string{FieldNFTID: "1", FieldLessee: unencodableAddress, FieldLeaseDuration: "10"},
		},
		{
			name:   "owns owner",
			op:     models.OperationOwns,
			field:  FieldOwner,
			fields: map[string]string{FieldOwner: unencodableAddress, FieldNFTID: "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Validate(tt.op, tt.fields)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, checksumReason, verr.Fields[0].Reason)
		})
	}
}
