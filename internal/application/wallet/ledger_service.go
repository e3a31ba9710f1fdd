package wallet

import (
	"context"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/wallet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService serves the wallet ledger: transaction history, balance
// summaries and operator adjustments. The ledger itself is append-only;
// every balance change goes through the Balance aggregate so the stored
// balance and the entries can never disagree.
type LedgerService struct {
	balanceRepo     wallet.BalanceRepository
	transactionRepo wallet.TransactionRepository
	logger          *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	balanceRepo wallet.BalanceRepository,
	transactionRepo wallet.TransactionRepository,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		balanceRepo:     balanceRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

// ListTransactions returns a page of the user's ledger, most recent first
func (s *LedgerService) ListTransactions(ctx context.Context, tenantID, userID uuid.UUID, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	domainFilter := s.toDomainFilter(filter)

	transactions, total, err := s.transactionRepo.FindByUser(ctx, tenantID, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToTransactionResponses(transactions), total, nil
}

// ListAllTransactions returns a page of the tenant-wide ledger for admins
func (s *LedgerService) ListAllTransactions(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	domainFilter := s.toDomainFilter(filter)
	domainFilter.UserID = userID

	transactions, total, err := s.transactionRepo.List(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToTransactionResponses(transactions), total, nil
}

// GetBalanceSummary returns the user's balance with lifetime totals
func (s *LedgerService) GetBalanceSummary(ctx context.Context, tenantID, userID uuid.UUID) (*BalanceSummaryResponse, error) {
	balance, err := s.balanceRepo.GetOrCreate(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	earned, err := s.transactionRepo.SumByUserAndType(ctx, tenantID, userID, wallet.TransactionTypeCredit, time.Time{}, now)
	if err != nil {
		return nil, err
	}
	withdrawn, err := s.transactionRepo.SumByUserAndType(ctx, tenantID, userID, wallet.TransactionTypeWithdrawal, time.Time{}, now)
	if err != nil {
		return nil, err
	}
	reversed, err := s.transactionRepo.SumByUserAndType(ctx, tenantID, userID, wallet.TransactionTypeWithdrawalReversal, time.Time{}, now)
	if err != nil {
		return nil, err
	}

	return &BalanceSummaryResponse{
		Available:         balance.Available,
		Pending:           balance.Pending,
		Total:             balance.Total(),
		LifetimeEarned:    earned,
		LifetimeWithdrawn: withdrawn.Sub(reversed),
	}, nil
}

// Adjust applies an operator's manual balance correction. Positive
// amounts credit the user, negative amounts debit them; the available
// balance can never go below zero.
func (s *LedgerService) Adjust(ctx context.Context, tenantID, operatorID uuid.UUID, req AdjustBalanceRequest) (*TransactionResponse, error) {
	if req.Amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Adjustment amount cannot be zero")
	}

	balance, err := s.balanceRepo.GetOrCreate(ctx, tenantID, req.UserID)
	if err != nil {
		return nil, err
	}

	increase := req.Amount.IsPositive()
	entry, err := balance.Adjust(req.Amount.Abs(), increase, operatorID)
	if err != nil {
		return nil, err
	}
	entry.WithDescription(req.Description)

	if err := s.balanceRepo.SaveWithEntries(ctx, balance, []*wallet.Transaction{entry}); err != nil {
		return nil, err
	}

	s.logger.Info("wallet balance adjusted",
		zap.String("user_id", req.UserID.String()),
		zap.String("operator_id", operatorID.String()),
		zap.String("amount", req.Amount.String()),
	)

	response := ToTransactionResponse(entry)
	return &response, nil
}

// toDomainFilter builds the repository filter from the API filter
func (s *LedgerService) toDomainFilter(filter TransactionListFilter) wallet.TransactionFilter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := wallet.TransactionFilter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
	}

	if filter.Type != "" {
		txType := wallet.TransactionType(filter.Type)
		domainFilter.Type = &txType
	}
	if filter.Source != "" {
		source := wallet.TransactionSource(filter.Source)
		domainFilter.Source = &source
	}

	return domainFilter
}
