package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/starpass-mcp/internal/clarity"
	"github.com/rxtech-lab/starpass-mcp/internal/constants"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
)

// Input field names accepted by Validate.
const (
	FieldNFTID             = "nftId"
	FieldRecipient         = "recipient"
	FieldLessee            = "lessee"
	FieldOwner             = "owner"
	FieldTier              = "tier"
	FieldMetadata          = "metadata"
	FieldRoyaltyPercentage = "royaltyPercentage"
	FieldLeaseDuration     = "leaseDuration"
)

var stacksAddressRegex = regexp.MustCompile(`^SP[A-Z0-9]{37}$`)

const (
	addressReason  = "must be a Stacks address (SP followed by 37 uppercase letters or digits)"
	checksumReason = "is not a valid c32check address"
)

type fieldKind int

const (
	kindAddress fieldKind = iota
	kindUint
	kindText
)

type fieldRule struct {
	name string
	kind fieldKind
	// rangeTag is the validator tag applied to parsed numbers.
	rangeTag string
	// textTag is the validator tag applied to text fields.
	textTag string
}

var (
	nftIDRule = fieldRule{name: FieldNFTID, kind: kindUint, rangeTag: fmt.Sprintf("gte=%d", constants.MinNFTID)}

	operationRules = map[models.Operation][]fieldRule{
		models.OperationMint: {
			{name: FieldRecipient, kind: kindAddress},
			{name: FieldTier, kind: kindUint, rangeTag: fmt.Sprintf("lte=%d", constants.MaxTier)},
			{name: FieldMetadata, kind: kindText, textTag: "printascii"},
			{name: FieldRoyaltyPercentage, kind: kindUint, rangeTag: fmt.Sprintf("lte=%d", constants.MaxRoyaltyPercentage)},
		},
		models.OperationTransfer: {
			nftIDRule,
			{name: FieldRecipient, kind: kindAddress},
		},
		models.OperationLease: {
			nftIDRule,
			{name: FieldLessee, kind: kindAddress},
			{name: FieldLeaseDuration, kind: kindUint, rangeTag: fmt.Sprintf("gte=%d", constants.MinLeaseDuration)},
		},
		models.OperationInfo: {
			nftIDRule,
		},
		models.OperationOwns: {
			{name: FieldOwner, kind: kindAddress},
			nftIDRule,
		},
	}
)

// ValidationService checks raw user input against the rules of an operation.
type ValidationService interface {
	Validate(op models.Operation, fields map[string]string) (models.OperationRequest, error)
	ValidateAddress(field, address string) error
}

type validationService struct {
	validator *validator.Validate
}

func NewValidationService() ValidationService {
	v := validator.New()
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("stx_addr", validateStacksAddress)
	_ = v.RegisterValidation("c32check", validateC32Check)
	return &validationService{validator: v}
}

func validateStacksAddress(fl validator.FieldLevel) bool {
	return stacksAddressRegex.MatchString(fl.Field().String())
}

// validateC32Check rejects addresses that match the pattern but cannot be
// encoded as a principal.
func validateC32Check(fl validator.FieldLevel) bool {
	_, _, err := clarity.DecodeAddress(fl.Field().String())
	return err == nil
}

// Validate returns the typed request, or a *ValidationError naming every failing
// field. Required checks run for all fields before any format or range check,
// and each field reports at most one reason.
func (s *validationService) Validate(op models.Operation, fields map[string]string) (models.OperationRequest, error) {
	rules, ok := operationRules[op]
	if !ok {
		return models.OperationRequest{}, &ValidationError{
			Operation: op,
			Fields:    []FieldError{{Field: "operation", Reason: fmt.Sprintf("unknown operation %q", op)}},
		}
	}

	failed := make(map[string]string, len(rules))
	for _, rule := range rules {
		if err := s.validator.Var(fields[rule.name], "required"); err != nil {
			failed[rule.name] = "is required"
		}
	}

	req := models.OperationRequest{Operation: op}
	for _, rule := range rules {
		if _, ok := failed[rule.name]; ok {
			continue
		}
		if reason := s.checkField(rule, fields[rule.name], &req); reason != "" {
			failed[rule.name] = reason
		}
	}

	if len(failed) == 0 {
		return req, nil
	}
	verr := &ValidationError{Operation: op}
	for _, rule := range rules {
		if reason, ok := failed[rule.name]; ok {
			verr.Fields = append(verr.Fields, FieldError{Field: rule.name, Reason: reason})
		}
	}
	return models.OperationRequest{}, verr
}

// ValidateAddress checks a single address outside of an operation.
func (s *validationService) ValidateAddress(field, address string) error {
	reason := ""
	if err := s.validator.Var(address, "required"); err != nil {
		reason = "is required"
	} else if err := s.validator.Var(address, "stx_addr"); err != nil {
		reason = addressReason
	} else if err := s.validator.Var(address, "c32check"); err != nil {
		reason = checksumReason
	}
	if reason == "" {
		return nil
	}
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

func (s *validationService) checkField(rule fieldRule, raw string, req *models.OperationRequest) string {
	switch rule.kind {
	case kindAddress:
		if err := s.validator.Var(raw, "stx_addr"); err != nil {
			return addressReason
		}
		if err := s.validator.Var(raw, "c32check"); err != nil {
			return checksumReason
		}
		setAddress(req, rule.name, raw)
	case kindText:
		if err := s.validator.Var(raw, rule.textTag); err != nil {
			return "must contain printable ASCII characters only"
		}
		req.Metadata = raw
	case kindUint:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return "is too large"
			}
			return "must be a whole number"
		}
		if err := s.validator.Var(n, rule.rangeTag); err != nil {
			return rangeReason(rule.rangeTag)
		}
		setUint(req, rule.name, n)
	}
	return ""
}

func rangeReason(tag string) string {
	var bound int
	if _, err := fmt.Sscanf(tag, "gte=%d", &bound); err == nil {
		return fmt.Sprintf("must be at least %d", bound)
	}
	if _, err := fmt.Sscanf(tag, "lte=%d", &bound); err == nil {
		return fmt.Sprintf("must be between 0 and %d", bound)
	}
	return "is out of range"
}

func setAddress(req *models.OperationRequest, field, value string) {
	switch field {
	case FieldRecipient:
		req.Recipient = value
	case FieldLessee:
		req.Lessee = value
	case FieldOwner:
		req.Owner = value
	}
}

func setUint(req *models.OperationRequest, field string, value uint64) {
	switch field {
	case FieldNFTID:
		req.NFTID = value
	case FieldTier:
		req.Tier = value
	case FieldRoyaltyPercentage:
		req.RoyaltyPercentage = value
	case FieldLeaseDuration:
		req.LeaseDuration = value
	}
}
