package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/starpass-mcp/internal/api/middleware"
	"github.com/rxtech-lab/starpass-mcp/internal/assets"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
)

type SignInRequest struct {
	Address string `json:"address" validate:"required"`
}

// handleInitiateSignIn starts a wallet sign-in and returns the page the user
// connects their wallet on
func (s *APIServer) handleInitiateSignIn(c *fiber.Ctx) error {
	session, url, err := s.walletService.InitiateSignIn()
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": session.ID,
		"url":        url,
		"expires_at": session.ExpiresAt,
	})
}

func (s *APIServer) handleWalletPage(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	pending, err := s.walletService.IsSignInPending(sessionID)
	if err != nil {
		log.Printf("Error getting wallet session %s: %v", sessionID, err)
		return s.renderErrorPage(c, fiber.StatusNotFound, "Sign-in Not Found",
			"The sign-in session could not be found or has expired. Start a new sign-in.")
	}
	if !pending {
		return s.renderErrorPage(c, fiber.StatusConflict, "Already Signed In",
			"This sign-in session has already been completed.")
	}

	return s.renderPage(c, fiber.StatusOK, "wallet", assets.WalletHTML, map[string]interface{}{
		"SessionID": sessionID,
		"AppName":   s.appDetails.Name,
		"AppIcon":   s.appDetails.Icon,
	})
}

// handlePendingSignIn completes the sign-in with the address the wallet
// connected and hands out the session token
func (s *APIServer) handlePendingSignIn(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	var body SignInRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	token, err := s.walletService.HandlePendingSignIn(sessionID, body.Address)
	if err != nil {
		return writeError(c, err)
	}
	log.Printf("Wallet session %s signed in", sessionID)
	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"address":    body.Address,
		"token":      token,
	})
}

func (s *APIServer) handleLoadUser(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	pending, err := s.walletService.IsSignInPending(sessionID)
	if err != nil {
		return writeError(c, err)
	}
	if pending {
		return c.JSON(fiber.Map{
			"session_id": sessionID,
			"status":     models.WalletSessionStatusPending,
		})
	}

	session, err := s.walletService.LoadUser(sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(session)
}

// handleSignOut ends the caller's own wallet session
func (s *APIServer) handleSignOut(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	user := middleware.GetAuthenticatedUser(c)
	if user == nil || user.SessionID != sessionID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Token does not belong to this wallet session",
		})
	}

	if err := s.walletService.SignOut(sessionID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
