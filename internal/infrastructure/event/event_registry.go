package event

import (
	"github.com/dropship/backoffice/internal/domain/catalog"
	"github.com/dropship/backoffice/internal/domain/identity"
	"github.com/dropship/backoffice/internal/domain/postback"
	"github.com/dropship/backoffice/internal/domain/trade"
	"github.com/dropship/backoffice/internal/domain/wallet"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table back into their concrete types.
func RegisterAllEvents(serializer *EventSerializer) {
	// Trade domain - lead lifecycle
	serializer.Register(trade.EventTypeLeadCreated, &trade.LeadCreatedEvent{})
	serializer.Register(trade.EventTypeLeadStatusChanged, &trade.LeadStatusChangedEvent{})

	// Catalog domain - products
	serializer.Register(catalog.EventTypeProductCreated, &catalog.ProductCreatedEvent{})
	serializer.Register(catalog.EventTypeProductUpdated, &catalog.ProductUpdatedEvent{})
	serializer.Register(catalog.EventTypeProductVisibilityChanged, &catalog.ProductVisibilityChangedEvent{})
	serializer.Register(catalog.EventTypeProductPriceChanged, &catalog.ProductPriceChangedEvent{})
	serializer.Register(catalog.EventTypeProductStockAdjusted, &catalog.ProductStockAdjustedEvent{})
	serializer.Register(catalog.EventTypeProductDeleted, &catalog.ProductDeletedEvent{})

	// Catalog domain - categories
	serializer.Register(catalog.EventTypeCategoryCreated, &catalog.CategoryCreatedEvent{})
	serializer.Register(catalog.EventTypeCategoryUpdated, &catalog.CategoryUpdatedEvent{})
	serializer.Register(catalog.EventTypeCategoryDeleted, &catalog.CategoryDeletedEvent{})

	// Catalog domain - product attachments
	serializer.Register(catalog.EventTypeProductAttachmentCreated, &catalog.ProductAttachmentCreatedEvent{})
	serializer.Register(catalog.EventTypeProductAttachmentConfirmed, &catalog.ProductAttachmentConfirmedEvent{})
	serializer.Register(catalog.EventTypeProductAttachmentDeleted, &catalog.ProductAttachmentDeletedEvent{})
	serializer.Register(catalog.EventTypeProductAttachmentTypeChanged, &catalog.ProductAttachmentTypeChangedEvent{})

	// Wallet domain
	serializer.Register(wallet.EventTypeWalletCreated, &wallet.WalletCreatedEvent{})
	serializer.Register(wallet.EventTypeWalletUpdated, &wallet.WalletUpdatedEvent{})
	serializer.Register(wallet.EventTypeWithdrawalRequested, &wallet.WithdrawalRequestedEvent{})
	serializer.Register(wallet.EventTypeWithdrawalApproved, &wallet.WithdrawalApprovedEvent{})
	serializer.Register(wallet.EventTypeWithdrawalRejected, &wallet.WithdrawalRejectedEvent{})
	serializer.Register(wallet.EventTypeWithdrawalCancelled, &wallet.WithdrawalCancelledEvent{})
	serializer.Register(wallet.EventTypeWithdrawalPaid, &wallet.WithdrawalPaidEvent{})

	// Postback domain
	serializer.Register(postback.EventTypeConfigCreated, &postback.ConfigCreatedEvent{})
	serializer.Register(postback.EventTypeConfigAutoDisabled, &postback.ConfigAutoDisabledEvent{})

	// Identity domain - users
	serializer.Register(identity.EventTypeUserCreated, &identity.UserCreatedEvent{})
	serializer.Register(identity.EventTypeUserApproved, &identity.UserApprovedEvent{})
	serializer.Register(identity.EventTypeUserRejected, &identity.UserRejectedEvent{})
	serializer.Register(identity.EventTypeUserDeactivated, &identity.UserDeactivatedEvent{})
	serializer.Register(identity.EventTypeUserPasswordChanged, &identity.UserPasswordChangedEvent{})
	serializer.Register(identity.EventTypeUserStatusChanged, &identity.UserStatusChangedEvent{})

	// Identity domain - tenants
	serializer.Register(identity.EventTypeTenantCreated, &identity.TenantCreatedEvent{})
	serializer.Register(identity.EventTypeTenantUpdated, &identity.TenantUpdatedEvent{})
	serializer.Register(identity.EventTypeTenantStatusChanged, &identity.TenantStatusChangedEvent{})
}
