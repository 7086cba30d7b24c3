//go:build !integration

package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"souksync/internal/config"
	"souksync/internal/domain"
	"souksync/internal/domain/model"
	"souksync/internal/domain/ports/repository"
	"souksync/internal/infra/kv"
	"souksync/internal/usecase"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		OTPTTL:          5 * time.Minute,
		RateLimitWindow: 15 * time.Minute,
		RateLimitMax:    3,
		MaxAttempts:     5,
		DebugLogOTP:     true,
	}
}

type otpFixture struct {
	uc    usecase.OTPUseCase
	store *kv.MemoryStore
	users *MockUserRepo
	logs  *bytes.Buffer
}

func newOTPFixture(t *testing.T, cfg config.AuthConfig) *otpFixture {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)
	store := kv.NewMemoryStore()
	users := NewMockUserRepo()
	uc := usecase.NewOTPUseCase(store, users, NewMockTxManager(), cfg, true, &logger)
	return &otpFixture{uc: uc, store: store, users: users, logs: buf}
}

// issuedCode extracts the most recent plaintext code from the debug log.
// Tests run with DebugLogOTP enabled precisely so they can learn the code
// the same way an operator would.
func (f *otpFixture) issuedCode(t *testing.T) string {
	t.Helper()
	var code string
	for _, line := range strings.Split(strings.TrimSpace(f.logs.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if v, ok := entry["otp"].(string); ok {
			code = v
		}
	}
	if code == "" {
		t.Fatal("no otp found in debug log")
	}
	return code
}

func TestOTPUseCase_RequestOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a six digit code with the configured validity", func(t *testing.T) {
		f := newOTPFixture(t, testAuthConfig())

		issued, err := f.uc.RequestOTP(ctx, "+251911000001")
		if err != nil {
			t.Fatalf("RequestOTP failed: %v", err)
		}
		if issued.Message != "OTP sent successfully" {
			t.Errorf("unexpected message %q", issued.Message)
		}
		if issued.ExpiresIn != 300 {
			t.Errorf("expected 300 seconds validity, got %d", issued.ExpiresIn)
		}
		code := f.issuedCode(t)
		if len(code) != 6 {
			t.Errorf("expected 6-digit code, got %q", code)
		}
	})

	t.Run("fourth request in the window is rate limited", func(t *testing.T) {
		f := newOTPFixture(t, testAuthConfig())
		phone := "+251911000002"

		for i := 0; i < 3; i++ {
			if _, err := f.uc.RequestOTP(ctx, phone); err != nil {
				t.Fatalf("request %d failed: %v", i+1, err)
			}
		}
		_, err := f.uc.RequestOTP(ctx, phone)
		if !errors.Is(err, domain.ErrRateLimitExceeded) {
			t.Fatalf("expected ErrRateLimitExceeded, got %v", err)
		}
	})

	t.Run("rate limits are per phone", func(t *testing.T) {
		f := newOTPFixture(t, testAuthConfig())

		for i := 0; i < 3; i++ {
			if _, err := f.uc.RequestOTP(ctx, "+251911000003"); err != nil {
				t.Fatalf("request %d failed: %v", i+1, err)
			}
		}
		if _, err := f.uc.RequestOTP(ctx, "+251911000004"); err != nil {
			t.Errorf("other phone should not be throttled: %v", err)
		}
	})

	t.Run("empty phone is rejected", func(t *testing.T) {
		f := newOTPFixture(t, testAuthConfig())
		if _, err := f.uc.RequestOTP(ctx, ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("plaintext code is not logged outside debug mode", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.DebugLogOTP = false
		f := newOTPFixture(t, cfg)

		if _, err := f.uc.RequestOTP(ctx, "+251911000005"); err != nil {
			t.Fatalf("RequestOTP failed: %v", err)
		}
		if strings.Contains(f.logs.String(), `"otp"`) {
			t.Error("plaintext code leaked into the log with debug mode off")
		}
	})
}

func TestOTPUseCase_VerifyOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("correct code creates a kiosk owner account", func(t *testing.T) {
		f := newOTPFixture(t, testAuthConfig())
		phone := "+251911000010"
		if _, err := f.uc.RequestOTP(ctx, phone); err != nil {
			t.Fatalf("RequestOTP failed: %v", err)
		}

		user, err := f.uc.VerifyOTP(ctx, phone, f.issuedCode(t))
		if err != nil {
			t.Fatalf("VerifyOTP failed: %v", err)
		}
		if user.Phone != phone {
			t.Errorf("expected phone %q, got %q", phone, user.Phone)
		}
		if user.Role != model.RoleKioskOwner {
			t.Errorf("expected default role, got %q", user.Role)
		}
		if user.ID == "" {
			t.Error("expected a generated user id")
		}
	})

	t.Run("code is single use", func(t *testing.T) {
		f := newOTPFixture(t, testAuthConfig())
		phone := "+251911000011"
		if _, err := f.uc.RequestOTP(ctx, phone); err != nil {
			t.Fatalf("RequestOTP failed: %v", err)
		}
		code := f.issuedCode(t)

		if _, err := f.uc.VerifyOTP(ctx, phone, code); err != nil {
			t.Fatalf("first verification failed: %v", err)
		}
		if _, err := f.uc.VerifyOTP(ctx, phone, code); !errors.Is(err, domain.ErrInvalidOrExpiredOTP) {
			t.Fatalf("expected ErrInvalidOrExpiredOTP on replay, got %v", err)
		}
	})

	t.Run("wrong code fails without consuming the stored one", func(t *testing.T) {
		f := newOTPFixture(t, testAuthConfig())
		phone := "+251911000012"
		if _, err := f.uc.RequestOTP(ctx, phone); err != nil {
			t.Fatalf("RequestOTP failed: %v", err)
		}

		if _, err := f.uc.VerifyOTP(ctx, phone, "000000"); !errors.Is(err, domain.ErrInvalidOrExpiredOTP) {
			t.Fatalf("expected ErrInvalidOrExpiredOTP, got %v", err)
		}
		if _, err := f.uc.VerifyOTP(ctx, phone, f.issuedCode(t)); err != nil {
			t.Fatalf("correct code should still verify: %v", err)
		}
	})

	t.Run("sixth attempt is throttled even with the correct code", func(t *testing.T) {
		f := newOTPFixture(t, testAuthConfig())
		phone := "+251911000013"
		if _, err := f.uc.RequestOTP(ctx, phone); err != nil {
			t.Fatalf("RequestOTP failed: %v", err)
		}
		code := f.issuedCode(t)

		for i := 0; i < 5; i++ {
			if _, err := f.uc.VerifyOTP(ctx, phone, "000000"); !errors.Is(err, domain.ErrInvalidOrExpiredOTP) {
				t.Fatalf("attempt %d: expected ErrInvalidOrExpiredOTP, got %v", i+1, err)
			}
		}
		if _, err := f.uc.VerifyOTP(ctx, phone, code); !errors.Is(err, domain.ErrTooManyAttempts) {
			t.Fatalf("expected ErrTooManyAttempts, got %v", err)
		}
	})

	t.Run("successful verification clears the attempt counter", func(t *testing.T) {
		f := newOTPFixture(t, testAuthConfig())
		phone := "+251911000014"
		if _, err := f.uc.RequestOTP(ctx, phone); err != nil {
			t.Fatalf("RequestOTP failed: %v", err)
		}
		code := f.issuedCode(t)

		for i := 0; i < 4; i++ {
			f.uc.VerifyOTP(ctx, phone, "000000")
		}
		if _, err := f.uc.VerifyOTP(ctx, phone, code); err != nil {
			t.Fatalf("fifth attempt with correct code should succeed: %v", err)
		}

		// With the counter cleared, a fresh code gets a full allowance again.
		if _, err := f.uc.RequestOTP(ctx, phone); err != nil {
			t.Fatalf("RequestOTP failed: %v", err)
		}
		code = f.issuedCode(t)
		for i := 0; i < 4; i++ {
			f.uc.VerifyOTP(ctx, phone, "000000")
		}
		if _, err := f.uc.VerifyOTP(ctx, phone, code); err != nil {
			t.Fatalf("attempt allowance was not reset: %v", err)
		}
	})

	t.Run("expired code is rejected", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.OTPTTL = time.Millisecond
		f := newOTPFixture(t, cfg)
		phone := "+251911000015"
		if _, err := f.uc.RequestOTP(ctx, phone); err != nil {
			t.Fatalf("RequestOTP failed: %v", err)
		}
		code := f.issuedCode(t)

		time.Sleep(10 * time.Millisecond)
		if _, err := f.uc.VerifyOTP(ctx, phone, code); !errors.Is(err, domain.ErrInvalidOrExpiredOTP) {
			t.Fatalf("expected ErrInvalidOrExpiredOTP, got %v", err)
		}
	})

	t.Run("returning phone resolves to the same account", func(t *testing.T) {
		f := newOTPFixture(t, testAuthConfig())
		phone := "+251911000016"

		if _, err := f.uc.RequestOTP(ctx, phone); err != nil {
			t.Fatalf("RequestOTP failed: %v", err)
		}
		first, err := f.uc.VerifyOTP(ctx, phone, f.issuedCode(t))
		if err != nil {
			t.Fatalf("first verification failed: %v", err)
		}

		if _, err := f.uc.RequestOTP(ctx, phone); err != nil {
			t.Fatalf("second RequestOTP failed: %v", err)
		}
		second, err := f.uc.VerifyOTP(ctx, phone, f.issuedCode(t))
		if err != nil {
			t.Fatalf("second verification failed: %v", err)
		}

		if first.ID != second.ID {
			t.Errorf("expected the same account, got %q and %q", first.ID, second.ID)
		}
		if !second.LastSeenAt.After(first.LastSeenAt) {
			t.Errorf("expected LastSeenAt to advance: %v vs %v", first.LastSeenAt, second.LastSeenAt)
		}
	})

	t.Run("lost create race refetches the winner", func(t *testing.T) {
		f := newOTPFixture(t, testAuthConfig())
		phone := "+251911000017"
		if _, err := f.uc.RequestOTP(ctx, phone); err != nil {
			t.Fatalf("RequestOTP failed: %v", err)
		}

		winner, _ := model.NewUser("winner-id", phone, model.RoleKioskOwner)
		lookups := 0
		f.users.FindByPhoneFunc = func(_ context.Context, _ repository.Tx, _ string) (*model.User, error) {
			lookups++
			if lookups == 1 {
				return nil, domain.ErrNotFound
			}
			return winner, nil
		}
		f.users.SaveFunc = func(_ context.Context, _ repository.Tx, _ *model.User) error {
			return domain.ErrAlreadyExists
		}

		user, err := f.uc.VerifyOTP(ctx, phone, f.issuedCode(t))
		if err != nil {
			t.Fatalf("VerifyOTP failed: %v", err)
		}
		if user.ID != "winner-id" {
			t.Errorf("expected the winning account, got %q", user.ID)
		}
	})

	t.Run("missing inputs are rejected", func(t *testing.T) {
		f := newOTPFixture(t, testAuthConfig())
		if _, err := f.uc.VerifyOTP(ctx, "", "123456"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for empty phone, got %v", err)
		}
		if _, err := f.uc.VerifyOTP(ctx, "+251911000018", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for empty code, got %v", err)
		}
	})
}
