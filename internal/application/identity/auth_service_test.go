package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropship/backoffice/internal/domain/identity"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/infrastructure/auth"
	"github.com/dropship/backoffice/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) FindPending(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountByStatus(ctx context.Context, status identity.UserStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockTenantRepository is a mock implementation of identity.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindActive(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenantRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// Helper function to create an active test user
func createTestUser(tenantID uuid.UUID) *identity.User {
	user, _ := identity.NewActiveUser(tenantID, "testuser", "Password123", identity.RoleSeller)
	return user
}

// Helper function to create an active test tenant
func createTestTenant() *identity.Tenant {
	tenant, _ := identity.NewTenant("ACME", "Acme Dropshipping")
	return tenant
}

// Helper function to create auth service with an in-memory blacklist
func createAuthService(userRepo *MockUserRepository, tenantRepo *MockTenantRepository) (*AuthService, *auth.InMemoryTokenBlacklist) {
	jwtCfg := config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
	jwtService := auth.NewJWTService(jwtCfg)
	blacklist := auth.NewInMemoryTokenBlacklist()
	logger := zap.NewNop()

	service := NewAuthService(
		userRepo,
		tenantRepo,
		jwtService,
		blacklist,
		nil,
		DefaultAuthServiceConfig(),
		logger,
	)
	return service, blacklist
}

func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, code, domainErr.Code)
}

func TestAuthService_Register_Success(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	tenant := createTestTenant()

	tenantRepo.On("FindByCode", ctx, "ACME").Return(tenant, nil)
	userRepo.On("ExistsByUsername", mock.Anything, "newseller").Return(false, nil)
	userRepo.On("ExistsByEmail", mock.Anything, "seller@example.com").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Register(ctx, RegisterInput{
		TenantCode: "ACME",
		Username:   "newseller",
		Password:   "Password123",
		Email:      "seller@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "newseller", result.Username)
	assert.Equal(t, tenant.ID, result.TenantID)
	assert.Equal(t, identity.UserStatusPending, result.Status)

	userRepo.AssertExpectations(t)
	tenantRepo.AssertExpectations(t)
}

func TestAuthService_Register_UnknownTenant(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	tenantRepo.On("FindByCode", ctx, "NOPE").Return(nil, shared.ErrNotFound)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Register(ctx, RegisterInput{
		TenantCode: "NOPE",
		Username:   "newseller",
		Password:   "Password123",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "INVALID_TENANT")
}

func TestAuthService_Register_SuspendedTenant(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	tenant := createTestTenant()
	require.NoError(t, tenant.Suspend())

	tenantRepo.On("FindByCode", ctx, "ACME").Return(tenant, nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Register(ctx, RegisterInput{
		TenantCode: "ACME",
		Username:   "newseller",
		Password:   "Password123",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "TENANT_INACTIVE")
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	tenant := createTestTenant()

	tenantRepo.On("FindByCode", ctx, "ACME").Return(tenant, nil)
	userRepo.On("ExistsByUsername", mock.Anything, "taken").Return(true, nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Register(ctx, RegisterInput{
		TenantCode: "ACME",
		Username:   "taken",
		Password:   "Password123",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "ALREADY_EXISTS")
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)

	userRepo.On("FindByUsername", ctx, "testuser").Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Login(ctx, LoginInput{
		Username: "testuser",
		Password: "Password123",
		IP:       "127.0.0.1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "testuser", result.User.Username)
	assert.Equal(t, tenantID, result.User.TenantID)
	assert.Equal(t, identity.RoleSeller, result.User.Role)
	assert.Equal(t, "Bearer", result.TokenType)

	userRepo.AssertExpectations(t)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)

	userRepo.On("FindByUsername", ctx, "testuser").Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Login(ctx, LoginInput{
		Username: "testuser",
		Password: "wrongpassword",
		IP:       "127.0.0.1",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "INVALID_CREDENTIALS")
	assert.Equal(t, 1, user.FailedAttempts)
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	userRepo.On("FindByUsername", ctx, "nonexistent").Return(nil, shared.ErrNotFound)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Login(ctx, LoginInput{
		Username: "nonexistent",
		Password: "Password123",
		IP:       "127.0.0.1",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "INVALID_CREDENTIALS")
}

func TestAuthService_Login_PendingAccount(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user, err := identity.NewUser(tenantID, "pendinguser", "Password123")
	require.NoError(t, err)

	userRepo.On("FindByUsername", ctx, "pendinguser").Return(user, nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Login(ctx, LoginInput{
		Username: "pendinguser",
		Password: "Password123",
		IP:       "127.0.0.1",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "ACCOUNT_PENDING")
}

func TestAuthService_Login_RejectedAccount(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user, err := identity.NewUser(tenantID, "rejecteduser", "Password123")
	require.NoError(t, err)
	require.NoError(t, user.Reject(uuid.New(), "incomplete application"))

	userRepo.On("FindByUsername", ctx, "rejecteduser").Return(user, nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Login(ctx, LoginInput{
		Username: "rejecteduser",
		Password: "Password123",
		IP:       "127.0.0.1",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "ACCOUNT_REJECTED")
}

func TestAuthService_Login_LockedAccount(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)
	require.NoError(t, user.Lock(1*time.Hour))

	userRepo.On("FindByUsername", ctx, "testuser").Return(user, nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Login(ctx, LoginInput{
		Username: "testuser",
		Password: "Password123",
		IP:       "127.0.0.1",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "ACCOUNT_LOCKED")
}

func TestAuthService_Login_ExpiredLockClears(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)
	past := time.Now().Add(-1 * time.Minute)
	user.Status = identity.UserStatusLocked
	user.LockedUntil = &past
	user.FailedAttempts = 5

	userRepo.On("FindByUsername", ctx, "testuser").Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Login(ctx, LoginInput{
		Username: "testuser",
		Password: "Password123",
		IP:       "127.0.0.1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, identity.UserStatusActive, user.Status)
	assert.Equal(t, 0, user.FailedAttempts)
	assert.Nil(t, user.LockedUntil)
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)
	require.NoError(t, user.Deactivate())

	userRepo.On("FindByUsername", ctx, "testuser").Return(user, nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Login(ctx, LoginInput{
		Username: "testuser",
		Password: "Password123",
		IP:       "127.0.0.1",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "ACCOUNT_DEACTIVATED")
}

func TestAuthService_Login_AccountLocksAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)
	user.FailedAttempts = 4 // One more failure will lock

	userRepo.On("FindByUsername", ctx, "testuser").Return(user, nil)
	userRepo.On("Update", ctx, mock.Anything).Return(nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.Login(ctx, LoginInput{
		Username: "testuser",
		Password: "wrongpassword",
		IP:       "127.0.0.1",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "ACCOUNT_LOCKED")
	assert.Equal(t, identity.UserStatusLocked, user.Status)
	require.NotNil(t, user.LockedUntil)
	assert.True(t, user.LockedUntil.After(time.Now().Add(29*time.Minute)))
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)

	userRepo.On("FindByUsername", ctx, "testuser").Return(user, nil)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	loginResult, err := authService.Login(ctx, LoginInput{
		Username: "testuser",
		Password: "Password123",
		IP:       "127.0.0.1",
	})
	require.NoError(t, err)

	refreshResult, err := authService.RefreshToken(ctx, RefreshTokenInput{
		RefreshToken: loginResult.RefreshToken,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, refreshResult.AccessToken)
	assert.NotEmpty(t, refreshResult.RefreshToken)
	assert.Equal(t, "Bearer", refreshResult.TokenType)
	assert.NotEqual(t, loginResult.AccessToken, refreshResult.AccessToken)
}

func TestAuthService_RefreshToken_ConsumedTokenIsRevoked(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)

	userRepo.On("FindByUsername", ctx, "testuser").Return(user, nil)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	loginResult, err := authService.Login(ctx, LoginInput{
		Username: "testuser",
		Password: "Password123",
		IP:       "127.0.0.1",
	})
	require.NoError(t, err)

	_, err = authService.RefreshToken(ctx, RefreshTokenInput{
		RefreshToken: loginResult.RefreshToken,
	})
	require.NoError(t, err)

	// Replaying the consumed refresh token must fail
	result, err := authService.RefreshToken(ctx, RefreshTokenInput{
		RefreshToken: loginResult.RefreshToken,
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "TOKEN_REVOKED")
}

func TestAuthService_RefreshToken_InvalidToken(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.RefreshToken(ctx, RefreshTokenInput{
		RefreshToken: "invalid-token",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "TOKEN_INVALID")
}

func TestAuthService_RefreshToken_UserNotFound(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)

	userRepo.On("FindByUsername", ctx, "testuser").Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	loginResult, err := authService.Login(ctx, LoginInput{
		Username: "testuser",
		Password: "Password123",
		IP:       "127.0.0.1",
	})
	require.NoError(t, err)

	// User deleted between login and refresh
	userRepo.On("FindByID", ctx, user.ID).Return(nil, shared.ErrNotFound)

	result, err := authService.RefreshToken(ctx, RefreshTokenInput{
		RefreshToken: loginResult.RefreshToken,
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "USER_NOT_FOUND")
}

func TestAuthService_Logout_RevokesTokens(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)

	userRepo.On("FindByUsername", ctx, "testuser").Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	authService, blacklist := createAuthService(userRepo, tenantRepo)

	loginResult, err := authService.Login(ctx, LoginInput{
		Username: "testuser",
		Password: "Password123",
		IP:       "127.0.0.1",
	})
	require.NoError(t, err)

	err = authService.Logout(ctx, LogoutInput{
		UserID:       user.ID,
		TenantID:     tenantID,
		AccessJTI:    "access-jti",
		AccessTTL:    15 * time.Minute,
		RefreshToken: loginResult.RefreshToken,
	})
	require.NoError(t, err)

	revoked, err := blacklist.IsBlacklisted(ctx, "access-jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	// The refresh token must be rejected after logout
	result, err := authService.RefreshToken(ctx, RefreshTokenInput{
		RefreshToken: loginResult.RefreshToken,
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "TOKEN_REVOKED")
}

func TestAuthService_ForceLogout_TerminatesSessions(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)

	userRepo.On("FindByUsername", ctx, "testuser").Return(user, nil)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	loginResult, err := authService.Login(ctx, LoginInput{
		Username: "testuser",
		Password: "Password123",
		IP:       "127.0.0.1",
	})
	require.NoError(t, err)

	// Invalidation timestamps have second resolution, same as token claims
	time.Sleep(1100 * time.Millisecond)

	_, err = authService.ForceLogout(ctx, ForceLogoutInput{
		AdminUserID:  uuid.New(),
		TargetUserID: user.ID,
		TenantID:     tenantID,
		Reason:       "role change",
	})
	require.NoError(t, err)

	result, err := authService.RefreshToken(ctx, RefreshTokenInput{
		RefreshToken: loginResult.RefreshToken,
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "TOKEN_REVOKED")
}

func TestAuthService_GetCurrentUser_Success(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)

	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	result, err := authService.GetCurrentUser(ctx, GetCurrentUserInput{
		UserID:   user.ID,
		TenantID: tenantID,
	})

	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, user.Username, result.User.Username)
	assert.Equal(t, identity.RoleSeller, result.User.Role)

	userRepo.AssertExpectations(t)
}

func TestAuthService_ChangePassword_Success(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)

	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, mock.Anything).Return(nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	err := authService.ChangePassword(ctx, ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "Password123",
		NewPassword: "NewPassword456",
	})

	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("NewPassword456"))
	userRepo.AssertExpectations(t)
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	tenantRepo := new(MockTenantRepository)

	user := createTestUser(tenantID)

	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	authService, _ := createAuthService(userRepo, tenantRepo)

	err := authService.ChangePassword(ctx, ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "wrongpassword",
		NewPassword: "NewPassword456",
	})

	require.Error(t, err)
	assertDomainErrorCode(t, err, "INVALID_PASSWORD")
}
