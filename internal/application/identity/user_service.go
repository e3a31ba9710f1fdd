package identity

import (
	"context"
	"time"

	"github.com/dropship/backoffice/internal/domain/identity"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user administration and the approval workflow
type UserService struct {
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	TenantID    uuid.UUID
	Username    string
	Password    string
	Email       string
	Phone       string
	DisplayName string
	Notes       string
	Role        identity.Role
}

// UpdateUserInput contains input for updating a user
type UpdateUserInput struct {
	ID          uuid.UUID
	Email       *string
	Phone       *string
	DisplayName *string
	Avatar      *string
	Notes       *string
}

// ApproveUserInput contains input for approving a pending registration
type ApproveUserInput struct {
	UserID     uuid.UUID
	ApprovedBy uuid.UUID
	Role       *identity.Role // Optional role override, defaults to the registered role
}

// RejectUserInput contains input for rejecting a pending registration
type RejectUserInput struct {
	UserID     uuid.UUID
	RejectedBy uuid.UUID
	Reason     string
}

// UserDTO represents user data transfer object
type UserDTO struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	DisplayName  string     `json:"display_name"`
	Avatar       string     `json:"avatar,omitempty"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	RejectReason string     `json:"reject_reason,omitempty"`
	ApprovedBy   *uuid.UUID `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserListResult represents paginated user list result
type UserListResult struct {
	Users      []UserDTO `json:"users"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// UserCounts summarizes users by status for the admin dashboard
type UserCounts struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Active      int64 `json:"active"`
	Locked      int64 `json:"locked"`
	Deactivated int64 `json:"deactivated"`
}

// Create creates a new active user (admin action, skips the approval queue)
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	s.logger.Info("Creating new user",
		zap.String("username", input.Username),
		zap.String("tenant_id", input.TenantID.String()))

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error("Failed to check username existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check username availability")
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username already exists")
	}

	if input.Email != "" {
		exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
		if err != nil {
			s.logger.Error("Failed to check email existence", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check email availability")
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Email already exists")
		}
	}

	role := input.Role
	if role == "" {
		role = identity.RoleSeller
	}

	user, err := identity.NewActiveUser(input.TenantID, input.Username, input.Password, role)
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
	if input.Notes != "" {
		user.SetNotes(input.Notes)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}

	s.publishEvents(ctx, user)

	s.logger.Info("User created successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return toUserDTO(user), nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

// List retrieves a paginated list of users
func (s *UserService) List(ctx context.Context, filter identity.UserFilter) (*UserListResult, error) {
	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}
	return toUserListResult(users, total, filter), nil
}

// ListPending retrieves registrations awaiting approval, oldest first
func (s *UserService) ListPending(ctx context.Context, filter identity.UserFilter) (*UserListResult, error) {
	users, total, err := s.userRepo.FindPending(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list pending users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list pending users")
	}
	return toUserListResult(users, total, filter), nil
}

// Approve activates a pending registration
func (s *UserService) Approve(ctx context.Context, input ApproveUserInput) (*UserDTO, error) {
	user, err := s.findUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		if err := user.SetRole(*input.Role); err != nil {
			return nil, err
		}
	}

	if err := user.Approve(input.ApprovedBy); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to approve user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to approve user")
	}

	s.publishEvents(ctx, user)

	s.logger.Info("User approved",
		zap.String("user_id", input.UserID.String()),
		zap.String("approved_by", input.ApprovedBy.String()))

	return toUserDTO(user), nil
}

// Reject declines a pending registration with a reason
func (s *UserService) Reject(ctx context.Context, input RejectUserInput) (*UserDTO, error) {
	user, err := s.findUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := user.Reject(input.RejectedBy, input.Reason); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to reject user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to reject user")
	}

	s.publishEvents(ctx, user)

	s.logger.Info("User rejected",
		zap.String("user_id", input.UserID.String()),
		zap.String("rejected_by", input.RejectedBy.String()),
		zap.String("reason", input.Reason))

	return toUserDTO(user), nil
}

// Update updates a user's profile information
func (s *UserService) Update(ctx context.Context, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.findUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		if *input.Email != "" && *input.Email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
			if err != nil {
				return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check email availability")
			}
			if exists {
				return nil, shared.NewDomainError("ALREADY_EXISTS", "Email already exists")
			}
		}
		if err := user.SetEmail(*input.Email); err != nil {
			return nil, err
		}
	}

	if input.Phone != nil {
		if err := user.SetPhone(*input.Phone); err != nil {
			return nil, err
		}
	}

	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}

	if input.Avatar != nil {
		if err := user.SetAvatar(*input.Avatar); err != nil {
			return nil, err
		}
	}

	if input.Notes != nil {
		user.SetNotes(*input.Notes)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	s.logger.Info("User updated", zap.String("user_id", input.ID.String()))

	return toUserDTO(user), nil
}

// SetRole changes a user's role
func (s *UserService) SetRole(ctx context.Context, id uuid.UUID, role identity.Role) (*UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := user.SetRole(role); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to change user role", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to change user role")
	}

	s.logger.Info("User role changed",
		zap.String("user_id", id.String()),
		zap.String("role", role.String()))

	return toUserDTO(user), nil
}

// Delete deletes a user
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		s.logger.Error("Failed to delete user", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete user")
	}

	s.logger.Info("User deleted", zap.String("user_id", id.String()))

	return nil
}

// Activate reactivates a deactivated or locked user
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	return s.transition(ctx, id, "activate", func(u *identity.User) error {
		return u.Activate()
	})
}

// Deactivate deactivates a user
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	return s.transition(ctx, id, "deactivate", func(u *identity.User) error {
		return u.Deactivate()
	})
}

// Lock locks a user account. Zero duration means locked until unlocked.
func (s *UserService) Lock(ctx context.Context, id uuid.UUID, duration time.Duration) (*UserDTO, error) {
	return s.transition(ctx, id, "lock", func(u *identity.User) error {
		return u.Lock(duration)
	})
}

// Unlock unlocks a user account
func (s *UserService) Unlock(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	return s.transition(ctx, id, "unlock", func(u *identity.User) error {
		return u.Unlock()
	})
}

// ResetPassword resets a user's password (admin action)
func (s *UserService) ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}

	// Force password change on next login
	user.ForcePasswordChange()

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to reset password", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to reset password")
	}

	s.publishEvents(ctx, user)

	s.logger.Info("User password reset", zap.String("user_id", userID.String()))

	return nil
}

// Counts returns user totals per status for the tenant
func (s *UserService) Counts(ctx context.Context) (*UserCounts, error) {
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count users")
	}

	counts := &UserCounts{Total: total}

	statuses := []struct {
		status identity.UserStatus
		target *int64
	}{
		{identity.UserStatusPending, &counts.Pending},
		{identity.UserStatusActive, &counts.Active},
		{identity.UserStatusLocked, &counts.Locked},
		{identity.UserStatusDeactivated, &counts.Deactivated},
	}
	for _, st := range statuses {
		n, err := s.userRepo.CountByStatus(ctx, st.status)
		if err != nil {
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count users")
		}
		*st.target = n
	}

	return counts, nil
}

// transition loads, mutates and saves a user with uniform error handling
func (s *UserService) transition(ctx context.Context, id uuid.UUID, action string, mutate func(*identity.User) error) (*UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := mutate(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to save user state change",
			zap.String("action", action),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	s.publishEvents(ctx, user)

	s.logger.Info("User state changed",
		zap.String("user_id", id.String()),
		zap.String("action", action))

	return toUserDTO(user), nil
}

// findUser loads a user mapping not-found to a domain error
func (s *UserService) findUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}
	return user, nil
}

// publishEvents forwards accumulated domain events to the event bus
func (s *UserService) publishEvents(ctx context.Context, user *identity.User) {
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

// toUserDTO converts domain User to UserDTO
func toUserDTO(user *identity.User) *UserDTO {
	return &UserDTO{
		ID:           user.ID,
		TenantID:     user.TenantID,
		Username:     user.Username,
		Email:        user.Email,
		Phone:        user.Phone,
		DisplayName:  user.GetDisplayNameOrUsername(),
		Avatar:       user.Avatar,
		Role:         user.Role.String(),
		Status:       string(user.Status),
		RejectReason: user.RejectReason,
		ApprovedBy:   user.ApprovedBy,
		ApprovedAt:   user.ApprovedAt,
		LastLoginAt:  user.LastLoginAt,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// toUserListResult assembles the paginated list payload
func toUserListResult(users []*identity.User, total int64, filter identity.UserFilter) *UserListResult {
	pageSize := filter.Limit()
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	userDTOs := make([]UserDTO, len(users))
	for i, user := range users {
		userDTOs[i] = *toUserDTO(user)
	}

	return &UserListResult{
		Users:      userDTOs,
		Total:      total,
		Page:       filter.Page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
