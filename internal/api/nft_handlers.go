package api

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/starpass-mcp/internal/api/middleware"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
	"github.com/rxtech-lab/starpass-mcp/internal/utils"
)

var validate = validator.New()

// SubmissionResponse is returned with 202 once the wallet has been asked to
// sign.
type SubmissionResponse struct {
	SessionID string           `json:"session_id"`
	URL       string           `json:"url"`
	Operation models.Operation `json:"operation"`
}

// handleSubmit accepts the operation's fields keyed by their names (nftId,
// recipient, lessee, tier, metadata, royaltyPercentage, leaseDuration).
// Values may be JSON strings or numbers.
func (s *APIServer) handleSubmit(op models.Operation) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body map[string]utils.TextArg
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		fields := make(map[string]string, len(body))
		for name, value := range body {
			fields[name] = string(value)
		}

		submission, err := s.nftService.Submit(c.UserContext(), op, fields)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(SubmissionResponse{
			SessionID: submission.SessionID,
			URL:       submission.URL,
			Operation: submission.Operation,
		})
	}
}

func (s *APIServer) handleGetNFTInfo(c *fiber.Ctx) error {
	info, err := s.nftService.Info(c.UserContext(), map[string]string{
		services.FieldNFTID: c.Params("id"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(info)
}

func (s *APIServer) handleTotalNFTs(c *fiber.Ctx) error {
	total, err := s.nftService.Total(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": total})
}

func (s *APIServer) handleOwnsNFT(c *fiber.Ctx) error {
	owner := c.Params("address")
	owns, err := s.nftService.Owns(c.UserContext(), map[string]string{
		services.FieldOwner: owner,
		services.FieldNFTID: c.Params("id"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"nft_id": c.Params("id"),
		"owner":  owner,
		"owns":   owns,
	})
}

// handleListActivity lists recorded activity. mine=true restricts it to the
// signed-in user.
func (s *APIServer) handleListActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	var userID *string
	if mine, _ := strconv.ParseBool(c.Query("mine")); mine {
		user := middleware.GetAuthenticatedUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Sign in with a wallet to list your own activity",
			})
		}
		userID = &user.Sub
	}

	activities, err := s.nftService.ListActivity(userID, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"activities": activities})
}
