package postback

import (
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// DeliveryStatus represents the lifecycle state of a postback delivery
type DeliveryStatus string

const (
	DeliveryStatusPending    DeliveryStatus = "PENDING"
	DeliveryStatusProcessing DeliveryStatus = "PROCESSING"
	DeliveryStatusSent       DeliveryStatus = "SENT"
	DeliveryStatusFailed     DeliveryStatus = "FAILED"
	DeliveryStatusDead       DeliveryStatus = "DEAD"
)

const (
	// DefaultMaxAttempts is how many HTTP attempts a delivery gets
	// before it is parked as DEAD
	DefaultMaxAttempts = 5

	// DefaultBaseBackoff seeds the exponential retry delay:
	// backoff = base * 2^(attempts-1)
	DefaultBaseBackoff = time.Second

	// MaxResponseBodySize caps how much of the remote response is
	// retained on the delivery record
	MaxResponseBodySize = 2048
)

// Delivery is one postback HTTP call owed to a subscriber. The URL and
// body are rendered at enqueue time so the dispatcher can send without
// reloading the lead; the config is consulted only for the secret token
// and the failure streak.
type Delivery struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	ConfigID       uuid.UUID
	LeadID         uuid.UUID
	EventID        uuid.UUID // Lead status-change event that triggered this delivery
	LeadStatus     string
	Method         Method
	URL            string
	RequestBody    []byte
	Status         DeliveryStatus
	AttemptCount   int
	MaxAttempts    int
	ResponseStatus int
	ResponseBody   string
	LastError      string
	NextRetryAt    *time.Time
	SentAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewDelivery renders a pending delivery for one config/event pair
func NewDelivery(config *Config, leadID, eventID uuid.UUID, leadStatus string, values MacroValues) (*Delivery, error) {
	if config == nil {
		return nil, shared.NewDomainError("INVALID_CONFIG", "Postback config cannot be nil")
	}
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID cannot be empty")
	}
	if eventID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EVENT", "Event ID cannot be empty")
	}

	body, err := config.RenderBody(values)
	if err != nil {
		return nil, shared.NewDomainError("RENDER_FAILED", "Failed to render postback body: "+err.Error())
	}

	now := time.Now()
	return &Delivery{
		ID:          uuid.New(),
		TenantID:    config.TenantID,
		ConfigID:    config.ID,
		LeadID:      leadID,
		EventID:     eventID,
		LeadStatus:  leadStatus,
		Method:      config.Method,
		URL:         config.RenderURL(values),
		RequestBody: body,
		Status:      DeliveryStatusPending,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkProcessing claims the delivery for an HTTP attempt
func (d *Delivery) MarkProcessing() error {
	if d.Status != DeliveryStatusPending && d.Status != DeliveryStatusFailed {
		return shared.NewDomainError("INVALID_STATUS", "Delivery can only be processed from PENDING or FAILED status")
	}
	d.Status = DeliveryStatusProcessing
	d.UpdatedAt = time.Now()
	return nil
}

// MarkSent records a 2xx response
func (d *Delivery) MarkSent(httpStatus int, responseBody string) {
	now := time.Now()
	d.Status = DeliveryStatusSent
	d.AttemptCount++
	d.ResponseStatus = httpStatus
	d.ResponseBody = truncateResponseBody(responseBody)
	d.LastError = ""
	d.NextRetryAt = nil
	d.SentAt = &now
	d.UpdatedAt = now
}

// MarkFailed records a failed attempt and either schedules a retry with
// exponential backoff or parks the delivery as DEAD once the attempt
// budget is spent
func (d *Delivery) MarkFailed(httpStatus int, responseBody, errMsg string) {
	d.AttemptCount++
	d.ResponseStatus = httpStatus
	d.ResponseBody = truncateResponseBody(responseBody)
	d.LastError = errMsg
	d.UpdatedAt = time.Now()

	if d.AttemptCount >= d.MaxAttempts {
		d.Status = DeliveryStatusDead
		d.NextRetryAt = nil
		return
	}

	backoff := DefaultBaseBackoff * time.Duration(1<<uint(d.AttemptCount-1))
	nextRetry := time.Now().Add(backoff)
	d.Status = DeliveryStatusFailed
	d.NextRetryAt = &nextRetry
}

// ResetForRetry re-queues a DEAD delivery with a fresh attempt budget
func (d *Delivery) ResetForRetry() error {
	if d.Status != DeliveryStatusDead {
		return shared.NewDomainError("INVALID_STATUS", "Only DEAD deliveries can be reset for retry")
	}
	d.Status = DeliveryStatusPending
	d.AttemptCount = 0
	d.LastError = ""
	d.NextRetryAt = nil
	d.UpdatedAt = time.Now()
	return nil
}

// IsDue reports whether the dispatcher should attempt this delivery now
func (d *Delivery) IsDue(now time.Time) bool {
	switch d.Status {
	case DeliveryStatusPending:
		return true
	case DeliveryStatusFailed:
		return d.NextRetryAt != nil && !d.NextRetryAt.After(now)
	default:
		return false
	}
}

// IsDead returns true when the delivery has exhausted its attempts
func (d *Delivery) IsDead() bool {
	return d.Status == DeliveryStatusDead
}

func truncateResponseBody(body string) string {
	if len(body) <= MaxResponseBodySize {
		return body
	}
	return body[:MaxResponseBodySize]
}
