package identity

import (
	"context"
	"time"

	"github.com/dropship/backoffice/internal/domain/identity"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/infrastructure/auth"
	"github.com/dropship/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     30 * time.Minute,
	}
}

// AuthService handles registration, authentication and token lifecycle
type AuthService struct {
	userRepo       identity.UserRepository
	tenantRepo     identity.TenantRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	config         AuthServiceConfig
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	tenantRepo identity.TenantRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	eventPublisher shared.EventPublisher,
	config AuthServiceConfig,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		tenantRepo:     tenantRepo,
		jwtService:     jwtService,
		blacklist:      blacklist,
		eventPublisher: eventPublisher,
		config:         config,
		logger:         log,
	}
}

// Register creates a new user in PENDING status. The account cannot log
// in until an administrator approves it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	tenant, err := s.tenantRepo.FindByCode(ctx, input.TenantCode)
	if err != nil {
		s.logger.Warn("Registration with unknown tenant code", zap.String("tenant_code", input.TenantCode))
		return nil, shared.NewDomainError("INVALID_TENANT", "Unknown tenant code")
	}
	if !tenant.IsActive() {
		return nil, shared.NewDomainError("TENANT_INACTIVE", "Tenant does not accept registrations")
	}

	// Scope the uniqueness checks and the insert to the resolved tenant
	ctx, log := logger.WithTenantID(ctx, s.logger, tenant.ID.String())

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		log.Error("Failed to check username uniqueness", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to process registration")
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}

	if input.Email != "" {
		exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
		if err != nil {
			log.Error("Failed to check email uniqueness", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to process registration")
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
		}
	}

	user, err := identity.NewUser(tenant.ID, input.Username, input.Password)
	if err != nil {
		return nil, err
	}
	if input.Email != "" {
		if err := user.SetEmail(input.Email); err != nil {
			return nil, err
		}
	}
	if input.Phone != "" {
		if err := user.SetPhone(input.Phone); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		log.Error("Failed to create user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}

	s.publishEvents(ctx, user)

	log.Info("User registered, awaiting approval",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return &RegisterResult{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Username: user.Username,
		Status:   user.Status,
	}, nil
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username))

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if err := s.checkLoginable(user); err != nil {
		s.logger.Warn("Login attempt for non-loginable account",
			zap.String("username", input.Username),
			zap.String("status", string(user.Status)))
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}

		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", input.Username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}

		s.logger.Warn("Invalid password attempt",
			zap.String("username", input.Username),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	// A lock whose timer ran out clears on the first successful login
	if user.Status == identity.UserStatusLocked {
		if err := user.Unlock(); err != nil {
			s.logger.Error("Failed to unlock user on login", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to complete login")
		}
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role.String(),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLoginSuccess(input.IP)
	if err := s.userRepo.Update(ctx, user); err != nil {
		// Don't fail the login - just log the error
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", input.Username),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  userInfoFromDomain(user),
	}, nil
}

// RefreshToken rotates the token pair using a valid refresh token. The
// old refresh token is revoked so it cannot be replayed.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	refreshClaims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, refreshClaims.ID)
		if err != nil {
			s.logger.Error("Failed to check token blacklist", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate refresh token")
		}
		if revoked {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
		}

		invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, refreshClaims.UserID, refreshClaims.GetIssuedAtTime())
		if err != nil {
			s.logger.Error("Failed to check user token invalidation", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate refresh token")
		}
		if invalidated {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Session has been terminated")
		}
	}

	userID, err := uuid.Parse(refreshClaims.UserID)
	if err != nil {
		s.logger.Error("Invalid user ID in refresh token", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := s.checkLoginable(user); err != nil {
		s.logger.Warn("Token refresh for non-loginable account",
			zap.String("user_id", userID.String()),
			zap.String("status", string(user.Status)))
		return nil, err
	}

	// Role is re-read from the user record so role changes apply on refresh
	tokenPair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, user.Username, user.Role.String())
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	// Revoke the consumed refresh token for its remaining lifetime
	if s.blacklist != nil {
		if ttl := refreshClaims.GetRemainingTTL(); ttl > 0 {
			if err := s.blacklist.AddToBlacklist(ctx, refreshClaims.ID, ttl); err != nil {
				s.logger.Error("Failed to revoke old refresh token", zap.Error(err))
			}
		}
	}

	s.logger.Info("Token refreshed successfully", zap.String("user_id", userID.String()))

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the presented tokens so they cannot be used again
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.logger.Info("User logout",
		zap.String("user_id", input.UserID.String()),
		zap.String("tenant_id", input.TenantID.String()))

	if s.blacklist == nil {
		return nil
	}

	if input.AccessJTI != "" && input.AccessTTL > 0 {
		if err := s.blacklist.AddToBlacklist(ctx, input.AccessJTI, input.AccessTTL); err != nil {
			s.logger.Error("Failed to blacklist access token", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
		}
	}

	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err != nil {
			// Expired or malformed refresh tokens need no revocation
			s.logger.Debug("Skipping revocation of invalid refresh token", zap.Error(err))
			return nil
		}
		if ttl := claims.GetRemainingTTL(); ttl > 0 {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
				s.logger.Error("Failed to blacklist refresh token", zap.Error(err))
				return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
			}
		}
	}

	return nil
}

// ForceLogout invalidates every session of the target user. Intended for
// administrators after a role change or a suspected account compromise.
func (s *AuthService) ForceLogout(ctx context.Context, input ForceLogoutInput) (*ForceLogoutResult, error) {
	if s.blacklist == nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Session revocation is not available")
	}

	if _, err := s.userRepo.FindByID(ctx, input.TargetUserID); err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	ttl := s.jwtService.GetRefreshTokenExpiration()
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, input.TargetUserID.String(), ttl); err != nil {
		s.logger.Error("Failed to invalidate user sessions", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to terminate sessions")
	}

	s.logger.Info("All sessions terminated",
		zap.String("target_user_id", input.TargetUserID.String()),
		zap.String("admin_user_id", input.AdminUserID.String()),
		zap.String("reason", input.Reason))

	return &ForceLogoutResult{Message: "All sessions have been terminated"}, nil
}

// GetCurrentUser retrieves the current user's information
func (s *AuthService) GetCurrentUser(ctx context.Context, input GetCurrentUserInput) (*CurrentUserResult, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	return &CurrentUserResult{User: userInfoFromDomain(user)}, nil
}

// ChangePassword changes a user's password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}

	s.publishEvents(ctx, user)

	s.logger.Info("User password changed", zap.String("user_id", input.UserID.String()))

	return nil
}

// checkLoginable maps each blocked account state to its own error code
func (s *AuthService) checkLoginable(user *identity.User) error {
	if user.IsLocked() {
		return shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later or contact support")
	}
	if user.IsDeactivated() {
		return shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}
	if user.IsPending() {
		return shared.NewDomainError("ACCOUNT_PENDING", "Account is awaiting approval")
	}
	if user.IsRejected() {
		return shared.NewDomainError("ACCOUNT_REJECTED", "Registration was declined")
	}
	return nil
}

// publishEvents forwards accumulated domain events to the event bus
func (s *AuthService) publishEvents(ctx context.Context, user *identity.User) {
	if s.eventPublisher == nil {
		return
	}
	events := user.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish user events", zap.Error(err))
	}
	user.ClearDomainEvents()
}

// mapTokenError translates JWT infrastructure errors into domain errors
func mapTokenError(err error) error {
	switch err {
	case auth.ErrExpiredToken:
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case auth.ErrInvalidToken, auth.ErrInvalidTokenType, auth.ErrInvalidClaims:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	case auth.ErrMaxRefreshExceeded:
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
