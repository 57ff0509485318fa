package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/metagate-hq/platform/internal/platform/domain"
	"github.com/metagate-hq/platform/internal/platform/store"
	"github.com/metagate-hq/platform/pkg/idx"
	"github.com/metagate-hq/platform/pkg/jwtx"
)

// DefaultStoreTimeout caps how long any single orchestrated operation may
// hold a store connection before it is reported as an infrastructure fault.
const DefaultStoreTimeout = 5 * time.Second

const (
	minPasswordLength = 8
	maxPasswordLength = 512
	minUsernameLength = 3
	maxUsernameLength = 32
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// RegisterInput carries everything register needs. Password-based
// registrations leave Provider/ProviderID empty; external registrations go
// through ExternalLogin instead and never call Register directly.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// RegisterResult is a freshly created account plus the raw verification
// token. The token is handed to the delivery channel and never persisted.
type RegisterResult struct {
	Account           domain.Account
	VerificationToken string
}

// AuthResult is a successful authentication: the account and a fresh signed
// token pair.
type AuthResult struct {
	Account domain.Account
	Tokens  domain.TokenPair

	// IsNew is set by ExternalLogin when this call created the account.
	// Exactly one of N concurrent first logins for the same identity
	// reports true.
	IsNew bool
}

// AuthService orchestrates registration, login, external-identity
// reconciliation and the password/email token flows. It owns input
// validation and the lifecycle rules; hashing and token mechanics are
// delegated to CredentialService and TokenService.
type AuthService struct {
	store   store.Store
	creds   *CredentialService
	tokens  *TokenService
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewAuthService wires the orchestrator. A zero timeout takes
// DefaultStoreTimeout.
func NewAuthService(st store.Store, creds *CredentialService, tokens *TokenService, log *slog.Logger, timeout time.Duration) *AuthService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &AuthService{
		store:   st,
		creds:   creds,
		tokens:  tokens,
		log:     log,
		timeout: timeout,
		now:     time.Now,
	}
}

// Register creates a password account in PENDING with an armed 24h
// verification token. Email and username must be unused among non-deleted
// accounts; a soft-deleted account never blocks re-registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return RegisterResult{}, err
	}
	if err := validateUsername(in.Username); err != nil {
		return RegisterResult{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return RegisterResult{}, err
	}

	// Cheap pre-flight before the expensive hash. The partial unique
	// indexes remain the authority on uniqueness; a concurrent
	// registration of the same email still loses on Create below.
	if taken, err := s.store.Accounts().ExistsByEmail(ctx, email); err != nil {
		return RegisterResult{}, infraErr(err)
	} else if taken {
		return RegisterResult{}, ErrConflict
	}
	if taken, err := s.store.Accounts().ExistsByUsername(ctx, in.Username); err != nil {
		return RegisterResult{}, infraErr(err)
	} else if taken {
		return RegisterResult{}, ErrConflict
	}

	hash, err := s.creds.Hash(ctx, in.Password)
	if err != nil {
		return RegisterResult{}, err
	}

	raw, fingerprint, err := s.tokens.NewSingleUse()
	if err != nil {
		return RegisterResult{}, err
	}

	now := s.now().UTC()
	acct := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	acct.SetVerificationToken(fingerprint, now.Add(DefaultVerificationTTL))

	if err := s.store.Accounts().Create(ctx, acct); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return RegisterResult{}, ErrConflict
		}
		return RegisterResult{}, infraErr(err)
	}

	s.log.InfoContext(ctx, "account registered",
		slog.String("account_id", acct.ID),
		slog.String("username", acct.Username),
	)
	return RegisterResult{Account: acct, VerificationToken: raw}, nil
}

// Login authenticates a password account. The password is verified before
// the status is checked, so a correct password on a suspended, inactive or
// deleted account reports ErrAccountInactive while a wrong one reports
// ErrInvalidCredentials. Unknown emails report ErrInvalidCredentials too.
func (s *AuthService) Login(ctx context.Context, email, password, originAddress string) (AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	acct, err := s.store.Accounts().GetByEmailIncludeDeleted(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		// Burn a hash anyway so the timing of the response does not
		// reveal whether the email exists.
		_ = s.creds.Verify(ctx, password, dummyDigest)
		return AuthResult{}, ErrInvalidCredentials
	default:
		return AuthResult{}, infraErr(err)
	}

	if !acct.HasPassword() {
		// External-identity-only accounts pay the same hashing cost as a
		// wrong password, for the same timing reason as above.
		_ = s.creds.Verify(ctx, password, dummyDigest)
		return AuthResult{}, ErrInvalidCredentials
	}
	if err := s.creds.Verify(ctx, password, acct.PasswordHash); err != nil {
		return AuthResult{}, err
	}

	if acct.Status != domain.StatusActive {
		return AuthResult{}, ErrAccountInactive
	}

	now := s.now().UTC()
	acct.RecordLogin(originAddress, now)
	acct.UpdatedAt = now
	if err := s.store.Accounts().Update(ctx, acct); err != nil {
		return AuthResult{}, infraErr(err)
	}

	pair, err := s.tokens.IssuePair(acct.ID)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.InfoContext(ctx, "login",
		slog.String("account_id", acct.ID),
		slog.String("origin", originAddress),
	)
	return AuthResult{Account: acct, Tokens: pair}, nil
}

// ExternalLogin reconciles an externally authenticated identity against the
// local accounts: an existing (provider, provider id) match logs in, a first
// sighting creates an ACTIVE verified account. Two concurrent first logins
// for the same identity are serialized by the unique index; the loser of the
// insert re-reads and converges onto the winner's account.
func (s *AuthService) ExternalLogin(ctx context.Context, provider, providerID, email, username, originAddress string) (AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if provider == "" || providerID == "" {
		return AuthResult{}, validationErr("provider identity required")
	}

	acct, err := s.store.Accounts().GetByExternalIdentity(ctx, provider, providerID)
	switch {
	case err == nil:
		return s.finishExternalLogin(ctx, acct, originAddress)
	case errors.Is(err, store.ErrNotFound):
	default:
		return AuthResult{}, infraErr(err)
	}

	normEmail, err := normalizeEmail(email)
	if err != nil {
		return AuthResult{}, err
	}
	if err := validateUsername(username); err != nil {
		return AuthResult{}, err
	}

	now := s.now().UTC()
	acct = domain.Account{
		ID:            idx.New().String(),
		Email:         normEmail,
		Username:      username,
		Provider:      provider,
		ProviderID:    providerID,
		EmailVerified: true, // the provider vouched for the address
		Role:          domain.RoleUser,
		Status:        domain.StatusActive,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	createErr := s.store.Accounts().Create(ctx, acct)
	switch {
	case createErr == nil:
		s.log.InfoContext(ctx, "external account created",
			slog.String("account_id", acct.ID),
			slog.String("provider", provider),
		)
		res, err := s.finishExternalLogin(ctx, acct, originAddress)
		if err != nil {
			return AuthResult{}, err
		}
		res.IsNew = true
		return res, nil
	case errors.Is(createErr, store.ErrAlreadyExists):
		// Either a concurrent first login won the insert, or the email or
		// username collides with an unrelated account. Re-reading by
		// identity distinguishes the two.
		acct, err = s.store.Accounts().GetByExternalIdentity(ctx, provider, providerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return AuthResult{}, ErrConflict
			}
			return AuthResult{}, infraErr(err)
		}
		return s.finishExternalLogin(ctx, acct, originAddress)
	default:
		return AuthResult{}, infraErr(createErr)
	}
}

func (s *AuthService) finishExternalLogin(ctx context.Context, acct domain.Account, originAddress string) (AuthResult, error) {
	if acct.Status != domain.StatusActive {
		return AuthResult{}, ErrAccountInactive
	}

	now := s.now().UTC()
	acct.RecordLogin(originAddress, now)
	acct.UpdatedAt = now
	if err := s.store.Accounts().Update(ctx, acct); err != nil {
		return AuthResult{}, infraErr(err)
	}

	pair, err := s.tokens.IssuePair(acct.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Account: acct, Tokens: pair}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The account must
// still exist and be ACTIVE; a revoked or deleted account cannot mint new
// sessions with an old refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	accountID, err := s.tokens.VerifySigned(refreshToken, jwtx.TokenTypeRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}

	acct, err := s.store.Accounts().GetByID(ctx, accountID)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return domain.TokenPair{}, ErrTokenInvalid
	default:
		return domain.TokenPair{}, infraErr(err)
	}
	if acct.Status != domain.StatusActive {
		return domain.TokenPair{}, ErrAccountInactive
	}

	return s.tokens.IssuePair(acct.ID)
}

// ChangePassword re-hashes after verifying the current password. A wrong
// current password leaves the stored hash untouched.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	acct, err := s.store.Accounts().GetByID(ctx, accountID)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	default:
		return infraErr(err)
	}

	if !acct.HasPassword() {
		return ErrNoPasswordSet
	}
	if err := s.creds.Verify(ctx, currentPassword, acct.PasswordHash); err != nil {
		return err
	}

	hash, err := s.creds.Hash(ctx, newPassword)
	if err != nil {
		return err
	}
	acct.PasswordHash = hash
	acct.UpdatedAt = s.now().UTC()

	if err := s.store.Accounts().Update(ctx, acct); err != nil {
		return infraErr(err)
	}

	s.log.InfoContext(ctx, "password changed", slog.String("account_id", acct.ID))
	return nil
}

// RequestPasswordReset arms a 1h single-use reset token and returns the raw
// value for the delivery channel. It reports success for unknown emails too,
// returning an empty token, so responses do not reveal which addresses have
// accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", nil
	}

	acct, err := s.store.Accounts().GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return "", nil
	default:
		return "", infraErr(err)
	}
	if !acct.HasPassword() {
		// External-identity-only accounts have nothing to reset; same
		// generic acknowledgment as an unknown address.
		return "", nil
	}

	raw, fingerprint, err := s.tokens.NewSingleUse()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	acct.SetResetToken(fingerprint, now.Add(DefaultResetTTL))
	acct.UpdatedAt = now

	if err := s.store.Accounts().Update(ctx, acct); err != nil {
		return "", infraErr(err)
	}

	s.log.InfoContext(ctx, "password reset requested", slog.String("account_id", acct.ID))
	return raw, nil
}

// ConfirmPasswordReset consumes a reset token and installs the new password.
// The token is cleared in the same update that stores the new hash.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	acct, err := s.tokens.LookupSingleUse(ctx, domain.PurposePasswordReset, token)
	if err != nil {
		return err
	}

	hash, err := s.creds.Hash(ctx, newPassword)
	if err != nil {
		return err
	}
	acct.PasswordHash = hash
	acct.ClearResetToken()
	acct.UpdatedAt = s.now().UTC()

	if err := s.store.Accounts().Update(ctx, acct); err != nil {
		return infraErr(err)
	}

	s.log.InfoContext(ctx, "password reset confirmed", slog.String("account_id", acct.ID))
	return nil
}

// VerifyEmail consumes a verification token: PENDING accounts become ACTIVE,
// the email is marked verified and the token is cleared. A second use of the
// same token fails because the fingerprint no longer matches any account.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	acct, err := s.tokens.LookupSingleUse(ctx, domain.PurposeEmailVerification, token)
	if err != nil {
		return domain.Account{}, err
	}

	if err := acct.VerifyEmail(); err != nil {
		return domain.Account{}, err
	}
	acct.UpdatedAt = s.now().UTC()

	if err := s.store.Accounts().Update(ctx, acct); err != nil {
		return domain.Account{}, infraErr(err)
	}

	s.log.InfoContext(ctx, "email verified", slog.String("account_id", acct.ID))
	return acct, nil
}

// ResendVerification re-arms the verification token for an unverified
// account, invalidating the previous one. Already-verified accounts get a
// quiet success with an empty token.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))
	acct, err := s.store.Accounts().GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return "", nil
	default:
		return "", infraErr(err)
	}
	if acct.EmailVerified {
		return "", nil
	}

	raw, fingerprint, err := s.tokens.NewSingleUse()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	acct.SetVerificationToken(fingerprint, now.Add(DefaultVerificationTTL))
	acct.UpdatedAt = now

	if err := s.store.Accounts().Update(ctx, acct); err != nil {
		return "", infraErr(err)
	}
	return raw, nil
}

// dummyDigest is a throwaway argon2id digest verified on unknown-email
// logins to keep their latency in line with real mismatches.
const dummyDigest = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", validationErr("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", validationErr("email is malformed")
	}
	return email, nil
}

func validateUsername(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return validationErr("username must be 3-32 characters")
	}
	if !usernamePattern.MatchString(username) {
		return validationErr("username may only contain letters, digits, '_', '.' and '-'")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return validationErr("password must be at least 8 characters")
	}
	if len(password) > maxPasswordLength {
		return validationErr("password is too long")
	}
	return nil
}
