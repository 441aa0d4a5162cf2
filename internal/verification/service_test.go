package verification

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/bazarly/bazarly-backend/pkg/config"
	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	pkgerrors "github.com/bazarly/bazarly-backend/pkg/errors"
	"github.com/bazarly/bazarly-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type stubCodeRepo struct {
	active      *models.VerificationCode
	latest      *models.VerificationCode
	created     []*models.VerificationCode
	updates     map[uuid.UUID]map[string]any
	cancelled   bool
	superseded  bool
	supersedeFn func() error
}

func (s *stubCodeRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCodeRepo) Create(_ context.Context, code *models.VerificationCode) (*models.VerificationCode, error) {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	s.created = append(s.created, code)
	return code, nil
}

func (s *stubCodeRepo) FindActiveForUpdate(_ context.Context, _ uuid.UUID, _ enums.CodePurpose) (*models.VerificationCode, error) {
	if s.active == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.active
	return &copied, nil
}

func (s *stubCodeRepo) FindLatest(_ context.Context, _ uuid.UUID, _ enums.CodePurpose) (*models.VerificationCode, error) {
	if s.latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.latest
	return &copied, nil
}

func (s *stubCodeRepo) Update(_ context.Context, codeID uuid.UUID, updates map[string]any) error {
	if s.updates == nil {
		s.updates = map[uuid.UUID]map[string]any{}
	}
	s.updates[codeID] = updates
	if s.active != nil && s.active.ID == codeID {
		if v, ok := updates["attempt_count"]; ok {
			s.active.AttemptCount = v.(int)
		}
		if v, ok := updates["status"]; ok {
			s.active.Status = v.(enums.CodeStatus)
		}
	}
	return nil
}

func (s *stubCodeRepo) CancelPending(_ context.Context, _ uuid.UUID) error {
	s.cancelled = true
	return nil
}

func (s *stubCodeRepo) CancelPendingForPurpose(_ context.Context, _ uuid.UUID, _ enums.CodePurpose) error {
	s.superseded = true
	if s.supersedeFn != nil {
		return s.supersedeFn()
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type recordingSender struct {
	phone   string
	message string
	err     error
}

func (r *recordingSender) Send(_ context.Context, phone, message string) error {
	r.phone = phone
	r.message = message
	return r.err
}

func testConfig() config.VerificationConfig {
	return config.VerificationConfig{
		CodeTTL:     10 * time.Minute,
		CodeLength:  6,
		MaxAttempts: 3,
	}
}

func newService(t *testing.T, repo *stubCodeRepo, sender *recordingSender, cfg config.VerificationConfig) Service {
	t.Helper()
	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(repo, stubTxRunner{}, sender, cfg, logg, nil)
	if err != nil {
		t.Fatalf("unexpected error building service: %v", err)
	}
	return svc
}

func activeCode(code string) *models.VerificationCode {
	return &models.VerificationCode{
		ID:          uuid.New(),
		OrderID:     uuid.New(),
		Purpose:     enums.CodePurposeDeliveryConfirmation,
		Phone:       "+919900112233",
		Code:        code,
		Status:      enums.CodeStatusPending,
		ExpiresAt:   time.Now().UTC().Add(5 * time.Minute),
		MaxAttempts: 3,
	}
}

func TestIssueSupersedesAndSends(t *testing.T) {
	repo := &stubCodeRepo{}
	sender := &recordingSender{}
	svc := newService(t, repo, sender, testConfig())

	result, err := svc.Issue(context.Background(), IssueInput{
		OrderID: uuid.New(),
		Purpose: enums.CodePurposePickupConfirmation,
		Phone:   "+919900112233",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.superseded {
		t.Fatal("expected prior pending codes to be superseded")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one stored code, got %d", len(repo.created))
	}
	stored := repo.created[0]
	if len(stored.Code) != 6 {
		t.Fatalf("expected a 6 digit code, got %q", stored.Code)
	}
	if sender.phone != "+919900112233" {
		t.Fatalf("expected sms to buyer phone, got %q", sender.phone)
	}
	if result.Handle != stored.ID {
		t.Fatal("handle must be the stored row id")
	}
	if result.SandboxCode != "" {
		t.Fatal("plaintext code must not leak outside sandbox mode")
	}
}

func TestIssueSandboxExposesCode(t *testing.T) {
	repo := &stubCodeRepo{}
	cfg := testConfig()
	cfg.Sandbox = true
	svc := newService(t, repo, &recordingSender{}, cfg)

	result, err := svc.Issue(context.Background(), IssueInput{
		OrderID: uuid.New(),
		Purpose: enums.CodePurposeDeliveryConfirmation,
		Phone:   "+919900112233",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SandboxCode != repo.created[0].Code {
		t.Fatal("sandbox mode must return the plaintext code")
	}
}

func TestIssueSucceedsWhenSMSFails(t *testing.T) {
	repo := &stubCodeRepo{}
	sender := &recordingSender{err: context.DeadlineExceeded}
	svc := newService(t, repo, sender, testConfig())

	if _, err := svc.Issue(context.Background(), IssueInput{
		OrderID: uuid.New(),
		Purpose: enums.CodePurposePickupConfirmation,
		Phone:   "+919900112233",
	}); err != nil {
		t.Fatalf("sms failure must not fail issuance, got %v", err)
	}
}

func TestVerifyMatchConsumesCode(t *testing.T) {
	repo := &stubCodeRepo{active: activeCode("123456")}
	svc := newService(t, repo, &recordingSender{}, testConfig())

	err := svc.VerifyInTx(context.Background(), nil, repo.active.OrderID, enums.CodePurposeDeliveryConfirmation, "123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updates := repo.updates[repo.active.ID]
	if updates["status"] != enums.CodeStatusVerified {
		t.Fatalf("expected code marked verified, got %v", updates)
	}
}

func TestVerifyMismatchCountsAttempt(t *testing.T) {
	repo := &stubCodeRepo{active: activeCode("123456")}
	svc := newService(t, repo, &recordingSender{}, testConfig())

	err := svc.VerifyInTx(context.Background(), nil, repo.active.OrderID, enums.CodePurposeDeliveryConfirmation, "000000")
	if !pkgerrors.HasCode(err, pkgerrors.CodeCodeMismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if repo.active.AttemptCount != 1 {
		t.Fatalf("expected attempt count 1, got %d", repo.active.AttemptCount)
	}
}

func TestVerifyThirdMismatchExhaustsAttempts(t *testing.T) {
	repo := &stubCodeRepo{active: activeCode("123456")}
	svc := newService(t, repo, &recordingSender{}, testConfig())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.VerifyInTx(ctx, nil, repo.active.OrderID, enums.CodePurposeDeliveryConfirmation, "000000"); !pkgerrors.HasCode(err, pkgerrors.CodeCodeMismatch) {
			t.Fatalf("attempt %d: expected mismatch, got %v", i+1, err)
		}
	}
	err := svc.VerifyInTx(ctx, nil, repo.active.OrderID, enums.CodePurposeDeliveryConfirmation, "000000")
	if !pkgerrors.HasCode(err, pkgerrors.CodeCodeAttemptsExceeded) {
		t.Fatalf("expected attempts exceeded on third miss, got %v", err)
	}

	// Even the right code is dead now.
	err = svc.VerifyInTx(ctx, nil, repo.active.OrderID, enums.CodePurposeDeliveryConfirmation, "123456")
	if !pkgerrors.HasCode(err, pkgerrors.CodeCodeAttemptsExceeded) {
		t.Fatalf("expected exhausted code to stay dead, got %v", err)
	}
}

func TestVerifyExpiredCode(t *testing.T) {
	repo := &stubCodeRepo{active: activeCode("123456")}
	repo.active.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	svc := newService(t, repo, &recordingSender{}, testConfig())

	err := svc.VerifyInTx(context.Background(), nil, repo.active.OrderID, enums.CodePurposeDeliveryConfirmation, "123456")
	if !pkgerrors.HasCode(err, pkgerrors.CodeCodeExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
	if repo.active.Status != enums.CodeStatusExpired {
		t.Fatalf("expected row marked expired, got %s", repo.active.Status)
	}
}

func TestVerifySpentCodeReportsAlreadyVerified(t *testing.T) {
	spent := activeCode("123456")
	spent.Status = enums.CodeStatusVerified
	repo := &stubCodeRepo{latest: spent}
	svc := newService(t, repo, &recordingSender{}, testConfig())

	err := svc.VerifyInTx(context.Background(), nil, spent.OrderID, enums.CodePurposeDeliveryConfirmation, "123456")
	if !pkgerrors.HasCode(err, pkgerrors.CodeCodeAlreadyVerified) {
		t.Fatalf("expected already verified, got %v", err)
	}
}

func TestVerifyWithoutActiveCode(t *testing.T) {
	repo := &stubCodeRepo{}
	svc := newService(t, repo, &recordingSender{}, testConfig())

	err := svc.VerifyInTx(context.Background(), nil, uuid.New(), enums.CodePurposePickupConfirmation, "123456")
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGenerateCodePreservesLeadingZeros(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode(6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
	}
}
