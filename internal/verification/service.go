package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/bazarly/bazarly-backend/pkg/config"
	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/bazarly/bazarly-backend/pkg/logger"
	"github.com/bazarly/bazarly-backend/pkg/metrics"
	"github.com/bazarly/bazarly-backend/pkg/sms"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service issues and checks short-lived verification codes.
type Service interface {
	Issue(ctx context.Context, input IssueInput) (*IssueResult, error)
	// VerifyInTx consumes one attempt against the active code inside the
	// caller's transaction. A nil error means the code matched and is now
	// spent.
	VerifyInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, purpose enums.CodePurpose, code string) error
	CancelPendingInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	sender sms.Sender
	cfg    config.VerificationConfig
	logg   *logger.Logger
	meter  *metrics.Metrics
}

// IssueInput requests a fresh code for one (order, purpose) pair. Issuing
// supersedes any earlier pending code for the same pair.
type IssueInput struct {
	OrderID uuid.UUID
	Purpose enums.CodePurpose
	Phone   string
}

// IssueResult returns the opaque handle and expiry. SandboxCode carries the
// plaintext code only when sandbox mode is on; production responses never
// include it.
type IssueResult struct {
	Handle      uuid.UUID `json:"handle"`
	ExpiresAt   time.Time `json:"expires_at"`
	SandboxCode string    `json:"sandbox_code,omitempty"`
}

// NewService builds the verification service.
func NewService(repo Repository, tx txRunner, sender sms.Sender, cfg config.VerificationConfig, logg *logger.Logger, meter *metrics.Metrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("verification repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sms sender required")
	}
	return &service{repo: repo, tx: tx, sender: sender, cfg: cfg, logg: logg, meter: meter}, nil
}

func (s *service) Issue(ctx context.Context, input IssueInput) (*IssueResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Purpose.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown code purpose")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone required")
	}

	plaintext, err := generateCode(s.cfg.CodeLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
	}

	expiresAt := time.Now().UTC().Add(s.cfg.CodeTTL)
	var record *models.VerificationCode
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CancelPendingForPurpose(ctx, input.OrderID, input.Purpose); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "supersede pending codes")
		}
		created, err := repo.Create(ctx, &models.VerificationCode{
			OrderID:     input.OrderID,
			Purpose:     input.Purpose,
			Phone:       input.Phone,
			Code:        plaintext,
			Status:      enums.CodeStatusPending,
			ExpiresAt:   expiresAt,
			MaxAttempts: s.cfg.MaxAttempts,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store verification code")
		}
		record = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Delivery failure is not fatal: the caller can re-issue.
	message := fmt.Sprintf("Your Bazarly %s code is %s. It expires in %d minutes.",
		purposeLabel(input.Purpose), plaintext, int(s.cfg.CodeTTL.Minutes()))
	if err := s.sender.Send(ctx, input.Phone, message); err != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, input.OrderID.String()), fmt.Sprintf("verification sms failed: %v", err))
	}

	result := &IssueResult{Handle: record.ID, ExpiresAt: expiresAt}
	if s.cfg.Sandbox {
		result.SandboxCode = plaintext
	}
	return result, nil
}

func (s *service) VerifyInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, purpose enums.CodePurpose, code string) error {
	if strings.TrimSpace(code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "code required")
	}

	repo := s.repo.WithTx(tx)
	active, err := repo.FindActiveForUpdate(ctx, orderID, purpose)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Codes are single-use: distinguish a spent code from one that
			// was never issued.
			if latest, latestErr := repo.FindLatest(ctx, orderID, purpose); latestErr == nil && latest.Status == enums.CodeStatusVerified {
				s.countVerification(purpose, "already_verified")
				return pkgerrors.New(pkgerrors.CodeCodeAlreadyVerified, "code already used")
			}
			s.countVerification(purpose, "no_active_code")
			return pkgerrors.New(pkgerrors.CodeNotFound, "no active code for order")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification code")
	}

	now := time.Now().UTC()
	if now.After(active.ExpiresAt) {
		if err := repo.Update(ctx, active.ID, map[string]any{"status": enums.CodeStatusExpired}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire code")
		}
		s.countVerification(purpose, "expired")
		return pkgerrors.New(pkgerrors.CodeCodeExpired, "code has expired, request a new one")
	}
	if active.AttemptCount >= active.MaxAttempts {
		s.countVerification(purpose, "attempts_exceeded")
		return pkgerrors.New(pkgerrors.CodeCodeAttemptsExceeded, "too many attempts, request a new code")
	}

	if active.Code != code {
		attempts := active.AttemptCount + 1
		if err := repo.Update(ctx, active.ID, map[string]any{"attempt_count": attempts}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count failed attempt")
		}
		s.countVerification(purpose, "mismatch")
		if attempts >= active.MaxAttempts {
			return pkgerrors.New(pkgerrors.CodeCodeAttemptsExceeded, "too many attempts, request a new code")
		}
		return pkgerrors.New(pkgerrors.CodeCodeMismatch, "incorrect code")
	}

	if err := repo.Update(ctx, active.ID, map[string]any{
		"status":        enums.CodeStatusVerified,
		"attempt_count": active.AttemptCount + 1,
		"verified_at":   now,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark code verified")
	}
	s.countVerification(purpose, "verified")
	return nil
}

func (s *service) CancelPendingInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	if err := s.repo.WithTx(tx).CancelPending(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel pending codes")
	}
	return nil
}

func (s *service) countVerification(purpose enums.CodePurpose, result string) {
	if s.meter == nil {
		return
	}
	s.meter.CodeVerifications.WithLabelValues(purpose.String(), result).Inc()
}

// generateCode produces a uniformly random numeric code of the given length
// using crypto/rand. Leading zeros are preserved.
func generateCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

func purposeLabel(purpose enums.CodePurpose) string {
	if purpose == enums.CodePurposePickupConfirmation {
		return "pickup"
	}
	return "delivery"
}
