package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rxtech-lab/starpass-mcp/internal/metrics"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"github.com/rxtech-lab/starpass-mcp/internal/utils"
)

// TransactionOutcome is what the wallet reports after broadcasting a call.
type TransactionOutcome struct {
	TransactionID  string `json:"tx_id"`
	RawTransaction string `json:"tx_raw,omitempty"`
}

// Submission is a pending contract call awaiting the wallet. It resolves
// exactly once, with an outcome or a *DispatchError.
type Submission struct {
	SessionID string
	// URL is the consent page the user opens to sign the call.
	URL       string
	Operation models.Operation

	done    chan struct{}
	once    sync.Once
	timer   *time.Timer
	outcome TransactionOutcome
	err     error
}

func newSubmission(sessionID, url string, op models.Operation) *Submission {
	return &Submission{
		SessionID: sessionID,
		URL:       url,
		Operation: op,
		done:      make(chan struct{}),
	}
}

// Done is closed once the submission is resolved.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the wallet resolves the submission or ctx ends. Ending
// ctx does not withdraw the consent request.
func (s *Submission) Wait(ctx context.Context) (TransactionOutcome, error) {
	select {
	case <-s.done:
		return s.outcome, s.err
	case <-ctx.Done():
		return TransactionOutcome{}, ctx.Err()
	}
}

func (s *Submission) resolve(outcome TransactionOutcome, err error) bool {
	resolved := false
	s.once.Do(func() {
		if s.timer != nil {
			s.timer.Stop()
		}
		s.outcome = outcome
		s.err = err
		close(s.done)
		resolved = true
	})
	return resolved
}

// DispatchService hands contract calls to the user's wallet and tracks their
// resolution. Nothing is retried.
type DispatchService interface {
	Submit(ctx context.Context, call models.ContractCall) (*Submission, error)
	Resolve(sessionID string, outcome TransactionOutcome) (*models.TransactionSession, error)
	Reject(sessionID, reason string) (*models.TransactionSession, error)
	Pending(sessionID string) (*Submission, bool)
}

type DispatchServiceConfig struct {
	BaseURL    string
	ServerPort int
	SessionTTL time.Duration
}

type dispatchService struct {
	txService   TransactionService
	hookService HookService
	metrics     *metrics.Metrics
	cfg         DispatchServiceConfig

	mu      sync.Mutex
	pending map[string]*Submission
}

func NewDispatchService(txService TransactionService, hookService HookService, m *metrics.Metrics, cfg DispatchServiceConfig) DispatchService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	return &dispatchService{
		txService:   txService,
		hookService: hookService,
		metrics:     m,
		cfg:         cfg,
		pending:     make(map[string]*Submission),
	}
}

// Submit persists a pending session for call and returns its future. The
// signed-in user in ctx, if any, owns the session.
func (s *dispatchService) Submit(ctx context.Context, call models.ContractCall) (*Submission, error) {
	var userID *string
	if user, err := utils.GetAuthenticatedUser(ctx); err == nil {
		userID = &user.Sub
	}

	sessionID, err := s.txService.CreateTransactionSession(CreateTransactionSessionRequest{
		Call:    call,
		ChainID: call.Network.ID,
		UserID:  userID,
	})
	if err != nil {
		s.metrics.Submission(string(call.Operation), "failed")
		return nil, &DispatchError{Operation: call.Operation, Err: fmt.Errorf("failed to create transaction session: %w", err)}
	}

	url, err := utils.GetTransactionSessionUrl(s.cfg.BaseURL, s.cfg.ServerPort, sessionID)
	if err != nil {
		if _, failErr := s.txService.FailTransactionSession(sessionID, err.Error()); failErr != nil {
			log.Printf("dispatch: failed to mark session %s as failed: %v", sessionID, failErr)
		}
		s.metrics.Submission(string(call.Operation), "failed")
		return nil, &DispatchError{Operation: call.Operation, SessionID: sessionID, Err: fmt.Errorf("failed to build consent url: %w", err)}
	}

	sub := newSubmission(sessionID, url, call.Operation)
	s.mu.Lock()
	s.pending[sessionID] = sub
	sub.timer = time.AfterFunc(s.cfg.SessionTTL, func() { s.expire(sessionID) })
	s.mu.Unlock()

	s.metrics.Submission(string(call.Operation), "dispatched")
	log.Printf("dispatch: %s %s awaiting wallet in session %s", call.Operation, call.FunctionName, sessionID)
	return sub, nil
}

// Resolve records the wallet's success report for a pending session.
func (s *dispatchService) Resolve(sessionID string, outcome TransactionOutcome) (*models.TransactionSession, error) {
	if outcome.TransactionID == "" {
		return nil, errors.New("transaction id is required")
	}
	if _, err := s.txService.GetTransactionSession(sessionID); err != nil {
		if errors.Is(err, ErrSessionExpired) {
			s.expire(sessionID)
		}
		return nil, err
	}

	session, err := s.txService.CompleteTransactionSession(sessionID, outcome.TransactionID, outcome.RawTransaction)
	if err != nil {
		return session, err
	}

	if err := s.hookService.OnTransactionConfirmed(session.Call.Operation, outcome.TransactionID, *session); err != nil {
		log.Printf("dispatch: hook failed for session %s: %v", sessionID, err)
	}

	s.metrics.Submission(string(session.Call.Operation), "succeeded")
	if sub := s.take(sessionID); sub != nil {
		sub.resolve(outcome, nil)
	}
	log.Printf("dispatch: session %s succeeded with transaction %s", sessionID, outcome.TransactionID)
	return session, nil
}

// Reject records a user rejection or wallet error for a pending session.
func (s *dispatchService) Reject(sessionID, reason string) (*models.TransactionSession, error) {
	if reason == "" {
		reason = "rejected by wallet"
	}
	if _, err := s.txService.GetTransactionSession(sessionID); err != nil {
		if errors.Is(err, ErrSessionExpired) {
			s.expire(sessionID)
		}
		return nil, err
	}

	session, err := s.txService.FailTransactionSession(sessionID, reason)
	if err != nil {
		return session, err
	}

	s.metrics.Submission(string(session.Call.Operation), "failed")
	if sub := s.take(sessionID); sub != nil {
		sub.resolve(TransactionOutcome{}, &DispatchError{Operation: session.Call.Operation, SessionID: sessionID, Err: errors.New(reason)})
	}
	log.Printf("dispatch: session %s failed: %s", sessionID, reason)
	return session, nil
}

// Pending returns the in-process future for sessionID, if it is still open.
func (s *dispatchService) Pending(sessionID string) (*Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.pending[sessionID]
	return sub, ok
}

func (s *dispatchService) take(sessionID string) *Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.pending[sessionID]
	delete(s.pending, sessionID)
	return sub
}

func (s *dispatchService) expire(sessionID string) {
	session, err := s.txService.FailTransactionSession(sessionID, ErrSessionExpired.Error())
	if err != nil {
		if !errors.Is(err, ErrSessionResolved) {
			log.Printf("dispatch: failed to expire session %s: %v", sessionID, err)
		}
		return
	}

	s.metrics.Submission(string(session.Call.Operation), "failed")
	if sub := s.take(sessionID); sub != nil {
		sub.resolve(TransactionOutcome{}, &DispatchError{Operation: session.Call.Operation, SessionID: sessionID, Err: ErrSessionExpired})
	}
	log.Printf("dispatch: session %s expired", sessionID)
}
