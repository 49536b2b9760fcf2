package api

import (
	"bytes"
	"errors"
	"html/template"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/starpass-mcp/internal/assets"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
)

// Outcome statuses the wallet page reports.
const (
	OutcomeSuccess   = "success"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// TransactionOutcomeRequest is what the wallet reports once the user signed
// or rejected the contract call.
type TransactionOutcomeRequest struct {
	Status string `json:"status" validate:"required,oneof=success cancelled failed"`
	TxID   string `json:"txId" validate:"required_if=Status success"`
	TxRaw  string `json:"txRaw"`
	Error  string `json:"error"`
}

// TransactionSessionResponse carries everything the wallet needs to show the
// consent prompt.
type TransactionSessionResponse struct {
	SessionID       string            `json:"session_id"`
	Status          string            `json:"status"`
	Operation       models.Operation  `json:"operation"`
	Network         string            `json:"network"`
	APIURL          string            `json:"api_url"`
	ContractAddress string            `json:"contract_address"`
	ContractName    string            `json:"contract_name"`
	FunctionName    string            `json:"function_name"`
	FunctionArgs    []string          `json:"function_args"`
	FunctionArgsHex []string          `json:"function_args_hex"`
	AppDetails      models.AppDetails `json:"app_details"`
	TransactionID   string            `json:"transaction_id,omitempty"`
	FailureReason   string            `json:"failure_reason,omitempty"`
	ExpiresAt       time.Time         `json:"expires_at"`
}

type ErrorPageData struct {
	Title      string
	Message    string
	StatusCode int
}

// renderErrorPage renders the error HTML template with the provided data
func (s *APIServer) renderErrorPage(c *fiber.Ctx, statusCode int, title, message string) error {
	data := ErrorPageData{
		Title:      title,
		Message:    message,
		StatusCode: statusCode,
	}
	return s.renderPage(c, statusCode, "error", assets.ErrorHTML, data)
}

func (s *APIServer) renderPage(c *fiber.Ctx, statusCode int, name string, page []byte, data any) error {
	tmpl, err := template.New(name).Parse(string(page))
	if err != nil {
		log.Printf("Error parsing %s template: %v", name, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error parsing template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Printf("Error rendering %s template: %v", name, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error rendering template")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(statusCode).Send(buf.Bytes())
}

// handleTransactionPage serves the consent page the wallet signs from
func (s *APIServer) handleTransactionPage(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	session, err := s.txService.GetTransactionSession(sessionID)
	if err != nil {
		log.Printf("Error getting session %s: %v", sessionID, err)
		if errors.Is(err, services.ErrSessionExpired) {
			return s.renderErrorPage(c, fiber.StatusGone, "Session Expired",
				"This transaction session has expired. Ask the assistant to create a new one.")
		}
		return s.renderErrorPage(c, fiber.StatusNotFound, "Session Not Found",
			"The requested transaction session could not be found. The URL may be incorrect.")
	}

	if session.IsResolved() {
		return s.renderErrorPage(c, fiber.StatusConflict, "Transaction Already Submitted",
			"This transaction session has already been completed. No further action is required.")
	}

	args := make([]string, 0, len(session.Call.FunctionArgs))
	for _, arg := range session.Call.FunctionArgs {
		args = append(args, arg.String())
	}

	data := map[string]interface{}{
		"SessionID":    session.ID,
		"AppName":      s.appName(session.Call.AppDetails),
		"AppIcon":      s.appIcon(session.Call.AppDetails),
		"Operation":    string(session.Call.Operation),
		"Network":      session.Chain.NetworkID,
		"ContractID":   session.Call.ContractID(),
		"FunctionName": session.Call.FunctionName,
		"Arguments":    args,
		"ExpiresAt":    session.ExpiresAt.Format(time.RFC1123),
	}
	return s.renderPage(c, fiber.StatusOK, "consent", assets.ConsentHTML, data)
}

// handleTransactionAPI returns the contract call of a session
func (s *APIServer) handleTransactionAPI(c *fiber.Ctx) error {
	session, err := s.txService.GetTransactionSession(c.Params("session_id"))
	if err != nil {
		return writeError(c, err)
	}

	response := TransactionSessionResponse{
		SessionID:       session.ID,
		Status:          string(session.TransactionStatus),
		Operation:       session.Call.Operation,
		Network:         session.Chain.NetworkID,
		APIURL:          session.Chain.APIURL,
		ContractAddress: session.Call.ContractAddress,
		ContractName:    session.Call.ContractName,
		FunctionName:    session.Call.FunctionName,
		FunctionArgs:    make([]string, 0, len(session.Call.FunctionArgs)),
		FunctionArgsHex: make([]string, 0, len(session.Call.FunctionArgs)),
		AppDetails: models.AppDetails{
			Name: s.appName(session.Call.AppDetails),
			Icon: s.appIcon(session.Call.AppDetails),
		},
		TransactionID: session.TransactionID,
		FailureReason: session.FailureReason,
		ExpiresAt:     session.ExpiresAt,
	}
	for _, arg := range session.Call.FunctionArgs {
		encoded, err := arg.Hex()
		if err != nil {
			return writeError(c, err)
		}
		response.FunctionArgs = append(response.FunctionArgs, arg.String())
		response.FunctionArgsHex = append(response.FunctionArgsHex, encoded)
	}
	return c.JSON(response)
}

// handleTransactionOutcome records the wallet's report and resolves the
// session exactly once
func (s *APIServer) handleTransactionOutcome(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	var body TransactionOutcomeRequest
	if err := c.BodyParser(&body); err != nil {
		log.Printf("Error parsing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var (
		session *models.TransactionSession
		err     error
	)
	if body.Status == OutcomeSuccess {
		session, err = s.dispatchService.Resolve(sessionID, services.TransactionOutcome{
			TransactionID:  body.TxID,
			RawTransaction: body.TxRaw,
		})
	} else {
		reason := body.Error
		if reason == "" && body.Status == OutcomeCancelled {
			reason = "cancelled by user"
		}
		session, err = s.dispatchService.Reject(sessionID, reason)
	}
	if err != nil {
		log.Printf("Error resolving session %s: %v", sessionID, err)
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"session_id": session.ID,
		"status":     session.TransactionStatus,
		"txId":       session.TransactionID,
	})
}

func (s *APIServer) appName(details models.AppDetails) string {
	if details.Name != "" {
		return details.Name
	}
	return s.appDetails.Name
}

func (s *APIServer) appIcon(details models.AppDetails) string {
	if details.Icon != "" {
		return details.Icon
	}
	return s.appDetails.Icon
}
