package wallet

import (
	"context"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WithdrawalServiceConfig holds tunables for withdrawal processing
type WithdrawalServiceConfig struct {
	// MinimumAmount is the smallest withdrawal a seller may request
	MinimumAmount decimal.Decimal
}

// DefaultWithdrawalServiceConfig returns the default withdrawal configuration
func DefaultWithdrawalServiceConfig() WithdrawalServiceConfig {
	return WithdrawalServiceConfig{
		MinimumAmount: decimal.NewFromInt(50),
	}
}

// WithdrawalService handles withdrawal requests and their review flow.
// Requesting reserves funds, cancel and reject release them, approve
// executes the payout through the gateway and settles the reservation.
type WithdrawalService struct {
	withdrawalRepo wallet.WithdrawalRepository
	walletRepo     wallet.WalletRepository
	balanceRepo    wallet.BalanceRepository
	gateway        wallet.PayoutGateway
	eventPublisher shared.EventPublisher
	config         WithdrawalServiceConfig
	logger         *zap.Logger
}

// NewWithdrawalService creates a new WithdrawalService
func NewWithdrawalService(
	withdrawalRepo wallet.WithdrawalRepository,
	walletRepo wallet.WalletRepository,
	balanceRepo wallet.BalanceRepository,
	gateway wallet.PayoutGateway,
	config WithdrawalServiceConfig,
	logger *zap.Logger,
) *WithdrawalService {
	if config.MinimumAmount.IsZero() {
		config.MinimumAmount = DefaultWithdrawalServiceConfig().MinimumAmount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WithdrawalService{
		withdrawalRepo: withdrawalRepo,
		walletRepo:     walletRepo,
		balanceRepo:    balanceRepo,
		gateway:        gateway,
		config:         config,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *WithdrawalService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Request creates a withdrawal request, reserving the amount from the
// user's available balance. The reservation and the request status are
// committed in one transaction.
func (s *WithdrawalService) Request(ctx context.Context, tenantID, userID uuid.UUID, req CreateWithdrawalRequest) (*WithdrawalResponse, error) {
	if req.Amount.LessThan(s.config.MinimumAmount) {
		return nil, shared.NewDomainError("INVALID_INPUT",
			"Withdrawal amount is below the minimum of "+s.config.MinimumAmount.String())
	}

	w, err := s.walletRepo.FindByIDForTenant(ctx, tenantID, req.WalletID)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, shared.ErrNotFound
	}

	number, err := s.withdrawalRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	withdrawal, err := wallet.NewWithdrawal(tenantID, userID, number, w, req.Amount)
	if err != nil {
		return nil, err
	}

	balance, err := s.balanceRepo.GetOrCreate(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	entry, err := balance.Reserve(req.Amount, withdrawal.ID)
	if err != nil {
		return nil, err
	}
	entry.WithDescription("Withdrawal " + withdrawal.Number)

	if err := s.withdrawalRepo.SaveWithBalanceAndEntries(ctx, withdrawal, balance, []*wallet.Transaction{entry}); err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal requested",
		zap.String("withdrawal_id", withdrawal.ID.String()),
		zap.String("number", withdrawal.Number),
		zap.String("user_id", userID.String()),
		zap.String("amount", req.Amount.String()),
	)

	s.publishEvents(ctx, withdrawal)

	response := ToWithdrawalResponse(withdrawal)
	return &response, nil
}

// GetByID retrieves a withdrawal. A non-nil userScope restricts the
// lookup to that user's requests.
func (s *WithdrawalService) GetByID(ctx context.Context, tenantID, withdrawalID uuid.UUID, userScope *uuid.UUID) (*WithdrawalResponse, error) {
	withdrawal, err := s.findWithdrawal(ctx, tenantID, withdrawalID, userScope)
	if err != nil {
		return nil, err
	}
	response := ToWithdrawalResponse(withdrawal)
	return &response, nil
}

// List retrieves withdrawals with filtering. A non-nil userScope
// restricts the listing to that user's requests.
func (s *WithdrawalService) List(ctx context.Context, tenantID uuid.UUID, filter WithdrawalListFilter, userScope *uuid.UUID) ([]WithdrawalResponse, int64, error) {
	if userScope != nil {
		filter.UserID = userScope
	}
	domainFilter := s.toDomainFilter(filter)

	withdrawals, err := s.withdrawalRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.withdrawalRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToWithdrawalResponses(withdrawals), total, nil
}

// Cancel lets the owner withdraw a pending request, releasing the
// reserved funds back to the available balance
func (s *WithdrawalService) Cancel(ctx context.Context, tenantID, userID, withdrawalID uuid.UUID) (*WithdrawalResponse, error) {
	withdrawal, err := s.findWithdrawal(ctx, tenantID, withdrawalID, &userID)
	if err != nil {
		return nil, err
	}

	if err := withdrawal.Cancel(userID); err != nil {
		return nil, err
	}

	balance, err := s.balanceRepo.GetOrCreate(ctx, tenantID, withdrawal.UserID)
	if err != nil {
		return nil, err
	}
	entry, err := balance.Release(withdrawal.Amount, withdrawal.ID)
	if err != nil {
		return nil, err
	}
	entry.WithDescription("Withdrawal " + withdrawal.Number + " cancelled")

	if err := s.withdrawalRepo.SaveWithBalanceAndEntries(ctx, withdrawal, balance, []*wallet.Transaction{entry}); err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal cancelled",
		zap.String("withdrawal_id", withdrawal.ID.String()),
		zap.String("number", withdrawal.Number),
	)

	s.publishEvents(ctx, withdrawal)

	response := ToWithdrawalResponse(withdrawal)
	return &response, nil
}

// Approve accepts a pending request and executes the payout through the
// gateway. A failed transfer keeps the request approved with the error
// recorded so the payout can be retried.
func (s *WithdrawalService) Approve(ctx context.Context, tenantID, adminID, withdrawalID uuid.UUID) (*WithdrawalResponse, error) {
	withdrawal, err := s.findWithdrawal(ctx, tenantID, withdrawalID, nil)
	if err != nil {
		return nil, err
	}

	if err := withdrawal.Approve(adminID); err != nil {
		return nil, err
	}
	if err := s.withdrawalRepo.SaveWithLock(ctx, withdrawal); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, withdrawal)

	if err := s.executePayout(ctx, withdrawal); err != nil {
		response := ToWithdrawalResponse(withdrawal)
		return &response, err
	}

	response := ToWithdrawalResponse(withdrawal)
	return &response, nil
}

// RetryPayout re-attempts the gateway transfer for an approved request
// whose previous transfer failed. The withdrawal number doubles as the
// gateway idempotency key, so retries never double-pay.
func (s *WithdrawalService) RetryPayout(ctx context.Context, tenantID, withdrawalID uuid.UUID) (*WithdrawalResponse, error) {
	withdrawal, err := s.findWithdrawal(ctx, tenantID, withdrawalID, nil)
	if err != nil {
		return nil, err
	}

	if withdrawal.Status != wallet.WithdrawalStatusApproved {
		return nil, shared.NewDomainError("INVALID_STATE", "Only approved withdrawals can be retried")
	}

	if err := s.executePayout(ctx, withdrawal); err != nil {
		response := ToWithdrawalResponse(withdrawal)
		return &response, err
	}

	response := ToWithdrawalResponse(withdrawal)
	return &response, nil
}

// Reject declines a pending request with a reason, releasing the
// reserved funds back to the available balance
func (s *WithdrawalService) Reject(ctx context.Context, tenantID, adminID, withdrawalID uuid.UUID, req RejectWithdrawalRequest) (*WithdrawalResponse, error) {
	withdrawal, err := s.findWithdrawal(ctx, tenantID, withdrawalID, nil)
	if err != nil {
		return nil, err
	}

	if err := withdrawal.Reject(adminID, req.Reason); err != nil {
		return nil, err
	}

	balance, err := s.balanceRepo.GetOrCreate(ctx, tenantID, withdrawal.UserID)
	if err != nil {
		return nil, err
	}
	entry, err := balance.Release(withdrawal.Amount, withdrawal.ID)
	if err != nil {
		return nil, err
	}
	entry.WithDescription("Withdrawal " + withdrawal.Number + " rejected").WithOperatorID(adminID)

	if err := s.withdrawalRepo.SaveWithBalanceAndEntries(ctx, withdrawal, balance, []*wallet.Transaction{entry}); err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal rejected",
		zap.String("withdrawal_id", withdrawal.ID.String()),
		zap.String("number", withdrawal.Number),
		zap.String("reason", req.Reason),
	)

	s.publishEvents(ctx, withdrawal)

	response := ToWithdrawalResponse(withdrawal)
	return &response, nil
}

// GetStatusSummary returns withdrawal counts per status for the admin dashboard
func (s *WithdrawalService) GetStatusSummary(ctx context.Context, tenantID uuid.UUID) (*WithdrawalStatusSummary, error) {
	summary := &WithdrawalStatusSummary{}

	statuses := []struct {
		status wallet.WithdrawalStatus
		target *int64
	}{
		{wallet.WithdrawalStatusPending, &summary.Pending},
		{wallet.WithdrawalStatusApproved, &summary.Approved},
		{wallet.WithdrawalStatusPaid, &summary.Paid},
		{wallet.WithdrawalStatusRejected, &summary.Rejected},
		{wallet.WithdrawalStatusCancelled, &summary.Cancelled},
	}
	for _, st := range statuses {
		n, err := s.withdrawalRepo.CountByStatus(ctx, tenantID, st.status)
		if err != nil {
			return nil, err
		}
		*st.target = n
		summary.Total += n
	}

	return summary, nil
}

// executePayout sends the transfer and, on success, marks the request
// paid and settles the reservation. On failure the request stays
// approved with the gateway error recorded.
func (s *WithdrawalService) executePayout(ctx context.Context, withdrawal *wallet.Withdrawal) error {
	result, err := s.gateway.CreateTransfer(ctx, &wallet.PayoutRequest{
		TenantID:     withdrawal.TenantID,
		WithdrawalID: withdrawal.ID,
		Number:       withdrawal.Number,
		Method:       withdrawal.Method,
		AccountRef:   withdrawal.AccountRef,
		Amount:       withdrawal.Amount,
		Currency:     withdrawal.Currency,
		Description:  "Withdrawal " + withdrawal.Number,
	})
	if err != nil {
		s.logger.Error("payout transfer failed",
			zap.String("withdrawal_id", withdrawal.ID.String()),
			zap.String("number", withdrawal.Number),
			zap.Error(err),
		)
		if recordErr := withdrawal.RecordGatewayError(err.Error()); recordErr == nil {
			_ = s.withdrawalRepo.SaveWithLock(ctx, withdrawal)
		}
		return shared.NewDomainError("GATEWAY_ERROR", "Payout transfer failed: "+err.Error())
	}

	if err := withdrawal.MarkPaid(result.TransferRef); err != nil {
		return err
	}

	balance, err := s.balanceRepo.GetOrCreate(ctx, withdrawal.TenantID, withdrawal.UserID)
	if err != nil {
		return err
	}
	if err := balance.Settle(withdrawal.Amount); err != nil {
		return err
	}

	if err := s.withdrawalRepo.SaveWithBalanceAndEntries(ctx, withdrawal, balance, nil); err != nil {
		return err
	}

	s.logger.Info("withdrawal paid",
		zap.String("withdrawal_id", withdrawal.ID.String()),
		zap.String("number", withdrawal.Number),
		zap.String("gateway_ref", result.TransferRef),
	)

	s.publishEvents(ctx, withdrawal)

	return nil
}

// findWithdrawal loads a withdrawal and enforces owner scope
func (s *WithdrawalService) findWithdrawal(ctx context.Context, tenantID, withdrawalID uuid.UUID, userScope *uuid.UUID) (*wallet.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.FindByIDForTenant(ctx, tenantID, withdrawalID)
	if err != nil {
		return nil, err
	}
	if userScope != nil && withdrawal.UserID != *userScope {
		return nil, shared.ErrNotFound
	}
	return withdrawal, nil
}

// toDomainFilter builds the repository filter from the API filter
func (s *WithdrawalService) toDomainFilter(filter WithdrawalListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.UserID != nil {
		domainFilter.Filters["user_id"] = *filter.UserID
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	return domainFilter
}

// publishEvents forwards accumulated domain events to the event bus
func (s *WithdrawalService) publishEvents(ctx context.Context, withdrawal *wallet.Withdrawal) {
	if s.eventPublisher == nil {
		return
	}
	events := withdrawal.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	withdrawal.ClearDomainEvents()
}
