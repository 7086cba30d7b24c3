package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"souksync/internal/config"
	"souksync/internal/domain"
	"souksync/internal/domain/model"
	"souksync/internal/domain/ports/repository"
	"souksync/internal/infra/logging"
	"souksync/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ OTPUseCase = (*otpUC)(nil)

// OTPIssued is the caller-visible result of a successful request. The
// message is deliberately generic; it never reveals whether the phone is
// known to the platform.
type OTPIssued struct {
	Message   string
	ExpiresIn int // seconds
}

// OTPUseCase issues and verifies one-time codes, bounding both issuance
// and verification attempts per phone number.
type OTPUseCase interface {
	RequestOTP(ctx context.Context, phone string) (*OTPIssued, error)
	VerifyOTP(ctx context.Context, phone, code string) (*model.User, error)
}

type otpUC struct {
	store repository.KeyValueStore
	users repository.UserRepository
	tm    repository.TransactionManager
	cfg   config.AuthConfig
	dev   bool
	log   *zerolog.Logger
}

func NewOTPUseCase(
	store repository.KeyValueStore,
	users repository.UserRepository,
	tm repository.TransactionManager,
	cfg config.AuthConfig,
	dev bool,
	logger *zerolog.Logger,
) *otpUC {
	return &otpUC{
		store: store,
		users: users,
		tm:    tm,
		cfg:   cfg,
		dev:   dev,
		log:   logger,
	}
}

func otpKey(phone string) string      { return "otp:" + phone }
func rateKey(phone string) string     { return "otp:rate:" + phone }
func attemptsKey(phone string) string { return "otp:attempts:" + phone }

func (u *otpUC) RequestOTP(ctx context.Context, phone string) (*OTPIssued, error) {
	defer logging.TraceDuration(u.log, "OTPUseCase.RequestOTP")()
	if phone == "" {
		return nil, domain.ErrInvalidArgument
	}

	count, err := u.store.IncrWithTTL(ctx, rateKey(phone), u.cfg.RateLimitWindow)
	if err != nil {
		metrics.IncOTPRequest("error")
		return nil, fmt.Errorf("rate counter: %w", err)
	}
	if count > int64(u.cfg.RateLimitMax) {
		metrics.IncOTPRequest("rate_limited")
		return nil, domain.ErrRateLimitExceeded
	}

	code, err := generateOTP()
	if err != nil {
		metrics.IncOTPRequest("error")
		return nil, fmt.Errorf("generate code: %w", err)
	}
	if err := u.store.SetWithTTL(ctx, otpKey(phone), hashOTP(code), u.cfg.OTPTTL); err != nil {
		metrics.IncOTPRequest("error")
		return nil, fmt.Errorf("store code: %w", err)
	}

	// The plaintext code is emitted ONLY behind this flag. Keep the check
	// here at the single point of emission.
	if u.cfg.DebugLogOTP {
		u.log.Info().
			Str("phone", logging.Redact(phone, u.dev)).
			Str("otp", code).
			Msg("otp generated")
	}

	metrics.IncOTPRequest("issued")
	return &OTPIssued{
		Message:   "OTP sent successfully",
		ExpiresIn: int(u.cfg.OTPTTL.Seconds()),
	}, nil
}

func (u *otpUC) VerifyOTP(ctx context.Context, phone, code string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "OTPUseCase.VerifyOTP")()
	if phone == "" || code == "" {
		return nil, domain.ErrInvalidArgument
	}

	// The attempt ceiling applies before the code is even looked at, so a
	// correct code on an exhausted counter still fails.
	attempts, err := u.store.IncrWithTTL(ctx, attemptsKey(phone), u.cfg.RateLimitWindow)
	if err != nil {
		metrics.IncOTPVerification("error")
		return nil, fmt.Errorf("attempt counter: %w", err)
	}
	if attempts > int64(u.cfg.MaxAttempts) {
		metrics.IncOTPVerification("throttled")
		return nil, domain.ErrTooManyAttempts
	}

	// Compare-and-remove makes the code single-use even under concurrent
	// duplicate requests. A failed match leaves the attempt counter alone.
	ok, err := u.store.CompareAndDelete(ctx, otpKey(phone), hashOTP(code))
	if err != nil {
		metrics.IncOTPVerification("error")
		return nil, fmt.Errorf("consume code: %w", err)
	}
	if !ok {
		metrics.IncOTPVerification("invalid")
		return nil, domain.ErrInvalidOrExpiredOTP
	}

	if err := u.store.Del(ctx, attemptsKey(phone)); err != nil {
		// Non-fatal: the counter expires on its own.
		u.log.Warn().Err(err).Msg("failed to clear attempt counter")
	}

	user, err := u.resolveOrCreate(ctx, phone)
	if err != nil {
		metrics.IncOTPVerification("error")
		return nil, err
	}
	metrics.IncOTPVerification("ok")
	return user, nil
}

// resolveOrCreate returns the account for phone, creating one with the
// default role on first contact. The phone uniqueness constraint resolves
// races: the loser of a concurrent create refetches the winning row.
func (u *otpUC) resolveOrCreate(ctx context.Context, phone string) (*model.User, error) {
	var user *model.User
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.users.FindByPhone(ctx, tx, phone)
		if err == nil {
			existing.Touch()
			if err := u.users.Save(ctx, tx, existing); err != nil {
				return err
			}
			user = existing
			u.log.Info().Str("user_id", existing.ID).Msg("user authenticated")
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		nu, err := model.NewUser("", phone, model.RoleKioskOwner)
		if err != nil {
			return err
		}
		if err := u.users.Save(ctx, tx, nu); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				// Lost the race: another verify created this phone first.
				winner, ferr := u.users.FindByPhone(ctx, tx, phone)
				if ferr != nil {
					return ferr
				}
				user = winner
				return nil
			}
			return err
		}
		user = nu
		u.log.Info().Str("user_id", nu.ID).Msg("user created")
		return nil
	})
	return user, err
}

// generateOTP returns a uniformly random, zero-padded 6-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
