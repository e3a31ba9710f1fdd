package wallet

import (
	"context"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/wallet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WalletServiceConfig holds tunables for wallet management
type WalletServiceConfig struct {
	// MaxWalletsPerUser caps how many payout wallets one user may register
	MaxWalletsPerUser int
}

// DefaultWalletServiceConfig returns the default wallet service configuration
func DefaultWalletServiceConfig() WalletServiceConfig {
	return WalletServiceConfig{
		MaxWalletsPerUser: 5,
	}
}

// WalletService handles payout wallet management
type WalletService struct {
	walletRepo     wallet.WalletRepository
	withdrawalRepo wallet.WithdrawalRepository
	eventPublisher shared.EventPublisher
	config         WalletServiceConfig
	logger         *zap.Logger
}

// NewWalletService creates a new WalletService
func NewWalletService(
	walletRepo wallet.WalletRepository,
	withdrawalRepo wallet.WithdrawalRepository,
	config WalletServiceConfig,
	logger *zap.Logger,
) *WalletService {
	if config.MaxWalletsPerUser <= 0 {
		config.MaxWalletsPerUser = DefaultWalletServiceConfig().MaxWalletsPerUser
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WalletService{
		walletRepo:     walletRepo,
		withdrawalRepo: withdrawalRepo,
		config:         config,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *WalletService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a payout wallet for the user. The user's first wallet
// becomes the default automatically.
func (s *WalletService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateWalletRequest) (*WalletResponse, error) {
	count, err := s.walletRepo.CountByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.config.MaxWalletsPerUser) {
		return nil, shared.NewDomainError("WALLET_LIMIT_REACHED", "Maximum number of payout wallets reached")
	}

	w, err := wallet.NewWallet(tenantID, userID, wallet.Method(req.Method), req.Label, req.AccountRef, req.Currency)
	if err != nil {
		return nil, err
	}

	if req.SetDefault || count == 0 {
		if err := s.walletRepo.ClearDefaultForUser(ctx, tenantID, userID); err != nil {
			return nil, err
		}
		w.MarkDefault()
	}

	if err := s.walletRepo.Save(ctx, w); err != nil {
		return nil, err
	}

	s.logger.Info("payout wallet registered",
		zap.String("wallet_id", w.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("method", w.Method.String()),
	)

	s.publishEvents(ctx, w)

	response := ToWalletResponse(w)
	return &response, nil
}

// List returns the user's payout wallets, default first
func (s *WalletService) List(ctx context.Context, tenantID, userID uuid.UUID) ([]WalletResponse, error) {
	wallets, err := s.walletRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return ToWalletResponses(wallets), nil
}

// GetByID retrieves one of the user's wallets
func (s *WalletService) GetByID(ctx context.Context, tenantID, userID, walletID uuid.UUID) (*WalletResponse, error) {
	w, err := s.findOwnedWallet(ctx, tenantID, userID, walletID)
	if err != nil {
		return nil, err
	}
	response := ToWalletResponse(w)
	return &response, nil
}

// Update edits a wallet's label and account reference
func (s *WalletService) Update(ctx context.Context, tenantID, userID, walletID uuid.UUID, req UpdateWalletRequest) (*WalletResponse, error) {
	w, err := s.findOwnedWallet(ctx, tenantID, userID, walletID)
	if err != nil {
		return nil, err
	}

	label := w.Label
	accountRef := w.AccountRef
	if req.Label != nil {
		label = *req.Label
	}
	if req.AccountRef != nil {
		accountRef = *req.AccountRef
	}
	if err := w.Update(label, accountRef); err != nil {
		return nil, err
	}

	if err := s.walletRepo.SaveWithLock(ctx, w); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, w)

	response := ToWalletResponse(w)
	return &response, nil
}

// SetDefault makes the wallet the user's default payout destination
func (s *WalletService) SetDefault(ctx context.Context, tenantID, userID, walletID uuid.UUID) (*WalletResponse, error) {
	w, err := s.findOwnedWallet(ctx, tenantID, userID, walletID)
	if err != nil {
		return nil, err
	}

	if !w.IsDefault {
		if err := s.walletRepo.ClearDefaultForUser(ctx, tenantID, userID); err != nil {
			return nil, err
		}
		w.MarkDefault()
		if err := s.walletRepo.SaveWithLock(ctx, w); err != nil {
			return nil, err
		}
	}

	response := ToWalletResponse(w)
	return &response, nil
}

// Delete removes a payout wallet. Wallets referenced by an open
// withdrawal cannot be deleted; deleting the default promotes the most
// recently updated remaining wallet.
func (s *WalletService) Delete(ctx context.Context, tenantID, userID, walletID uuid.UUID) error {
	w, err := s.findOwnedWallet(ctx, tenantID, userID, walletID)
	if err != nil {
		return err
	}

	open, err := s.withdrawalRepo.CountOpenByWallet(ctx, tenantID, walletID)
	if err != nil {
		return err
	}
	if open > 0 {
		return shared.NewDomainError("WALLET_IN_USE", "Wallet is referenced by an open withdrawal request")
	}

	if err := s.walletRepo.DeleteForTenant(ctx, tenantID, walletID); err != nil {
		return err
	}

	if w.IsDefault {
		if err := s.promoteNewDefault(ctx, tenantID, userID); err != nil {
			return err
		}
	}

	s.logger.Info("payout wallet deleted",
		zap.String("wallet_id", walletID.String()),
		zap.String("user_id", userID.String()),
	)

	return nil
}

// promoteNewDefault flags the most recently updated remaining wallet as
// the new default after the previous default was deleted
func (s *WalletService) promoteNewDefault(ctx context.Context, tenantID, userID uuid.UUID) error {
	wallets, err := s.walletRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if len(wallets) == 0 {
		return nil
	}

	newest := &wallets[0]
	for i := range wallets[1:] {
		if wallets[i+1].UpdatedAt.After(newest.UpdatedAt) {
			newest = &wallets[i+1]
		}
	}

	newest.MarkDefault()
	return s.walletRepo.SaveWithLock(ctx, newest)
}

// findOwnedWallet loads a wallet and verifies it belongs to the user
func (s *WalletService) findOwnedWallet(ctx context.Context, tenantID, userID, walletID uuid.UUID) (*wallet.Wallet, error) {
	w, err := s.walletRepo.FindByIDForTenant(ctx, tenantID, walletID)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return w, nil
}

// publishEvents forwards accumulated domain events to the event bus
func (s *WalletService) publishEvents(ctx context.Context, w *wallet.Wallet) {
	if s.eventPublisher == nil {
		return
	}
	events := w.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	w.ClearDomainEvents()
}
