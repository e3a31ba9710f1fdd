package wallet

import (
	"net/mail"
	"strings"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Method represents how a payout wallet receives money
type Method string

const (
	MethodBank   Method = "BANK"
	MethodCard   Method = "CARD"
	MethodPayPal Method = "PAYPAL"
	MethodUSDT   Method = "USDT"
	MethodStripe Method = "STRIPE"
)

// String returns the string representation of Method
func (m Method) String() string {
	return string(m)
}

// IsValid returns true if the method is a known payout method
func (m Method) IsValid() bool {
	switch m {
	case MethodBank, MethodCard, MethodPayPal, MethodUSDT, MethodStripe:
		return true
	}
	return false
}

// Wallet is a seller's registered payout destination. A seller may keep
// several wallets; exactly one is the default for new withdrawals.
type Wallet struct {
	shared.TenantAggregateRoot
	UserID     uuid.UUID
	Method     Method
	Label      string
	AccountRef string // IBAN, card number, e-mail address, crypto address or connected account ID
	Currency   string // ISO 4217
	IsDefault  bool
}

// NewWallet registers a payout wallet for a user
func NewWallet(tenantID, userID uuid.UUID, method Method, label, accountRef, currency string) (*Wallet, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payout method")
	}
	if err := validateLabel(label); err != nil {
		return nil, err
	}
	if err := validateAccountRef(method, accountRef); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = "USD"
	}
	if err := validateCurrencyCode(currency); err != nil {
		return nil, err
	}

	wallet := &Wallet{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, userID),
		UserID:              userID,
		Method:              method,
		Label:               strings.TrimSpace(label),
		AccountRef:          strings.TrimSpace(accountRef),
		Currency:            strings.ToUpper(currency),
	}

	wallet.AddDomainEvent(NewWalletCreatedEvent(wallet))

	return wallet, nil
}

// Update changes the wallet label and account reference
func (w *Wallet) Update(label, accountRef string) error {
	if err := validateLabel(label); err != nil {
		return err
	}
	if err := validateAccountRef(w.Method, accountRef); err != nil {
		return err
	}

	w.Label = strings.TrimSpace(label)
	w.AccountRef = strings.TrimSpace(accountRef)
	w.UpdatedAt = time.Now()
	w.IncrementVersion()

	w.AddDomainEvent(NewWalletUpdatedEvent(w))

	return nil
}

// MarkDefault flags the wallet as the user's default payout destination.
// The repository enforces that at most one wallet per user carries the flag.
func (w *Wallet) MarkDefault() {
	if w.IsDefault {
		return
	}
	w.IsDefault = true
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// UnmarkDefault clears the default flag
func (w *Wallet) UnmarkDefault() {
	if !w.IsDefault {
		return
	}
	w.IsDefault = false
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// MaskedAccountRef returns the account reference with the middle hidden,
// for listings and logs
func (w *Wallet) MaskedAccountRef() string {
	ref := w.AccountRef
	if len(ref) <= 8 {
		return strings.Repeat("*", len(ref))
	}
	return ref[:4] + strings.Repeat("*", len(ref)-8) + ref[len(ref)-4:]
}

func validateLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return shared.NewDomainError("INVALID_LABEL", "Wallet label cannot be empty")
	}
	if len(label) > 100 {
		return shared.NewDomainError("INVALID_LABEL", "Wallet label cannot exceed 100 characters")
	}
	return nil
}

func validateAccountRef(method Method, accountRef string) error {
	accountRef = strings.TrimSpace(accountRef)
	if accountRef == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_REF", "Account reference cannot be empty")
	}
	if len(accountRef) > 200 {
		return shared.NewDomainError("INVALID_ACCOUNT_REF", "Account reference cannot exceed 200 characters")
	}

	switch method {
	case MethodPayPal:
		if _, err := mail.ParseAddress(accountRef); err != nil {
			return shared.NewDomainError("INVALID_ACCOUNT_REF", "PayPal wallets require a valid e-mail address")
		}
	case MethodBank:
		if len(accountRef) < 8 {
			return shared.NewDomainError("INVALID_ACCOUNT_REF", "Bank account reference is too short")
		}
	case MethodCard:
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, accountRef)
		if len(digits) < 12 || len(digits) > 19 {
			return shared.NewDomainError("INVALID_ACCOUNT_REF", "Card number must contain 12 to 19 digits")
		}
	case MethodUSDT:
		if len(accountRef) < 20 {
			return shared.NewDomainError("INVALID_ACCOUNT_REF", "USDT address is too short")
		}
	}

	return nil
}

func validateCurrencyCode(currency string) error {
	if len(currency) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a three-letter ISO code")
	}
	for _, r := range currency {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a three-letter ISO code")
		}
	}
	return nil
}
