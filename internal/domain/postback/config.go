package postback

import (
	"net/url"
	"strings"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Method represents the HTTP method used for postback delivery
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// String returns the string representation of Method
func (m Method) String() string {
	return string(m)
}

// IsValid returns true if the method is supported
func (m Method) IsValid() bool {
	return m == MethodGet || m == MethodPost
}

// DefaultDisableThreshold is how many consecutive delivery failures
// switch a config off automatically
const DefaultDisableThreshold = 20

// Config is a seller's postback (webhook) subscription. The URL template
// carries {macro} placeholders that are substituted per delivery; POST
// configs additionally receive the macro fields as a JSON body.
type Config struct {
	shared.TenantAggregateRoot
	UserID       uuid.UUID
	Name         string
	URLTemplate  string
	Method       Method
	Statuses     []string // Lead statuses to fire on; empty means all
	SecretToken  string   // Sent as X-Postback-Token when set
	Enabled      bool
	FailureCount int // Consecutive failures, reset on success
	LastError    string
	LastFiredAt  *time.Time
}

// NewConfig creates an enabled postback subscription
func NewConfig(tenantID, userID uuid.UUID, name, urlTemplate string, method Method) (*Config, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ValidateTemplate(urlTemplate); err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Postback method must be GET or POST")
	}

	config := &Config{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, userID),
		UserID:              userID,
		Name:                strings.TrimSpace(name),
		URLTemplate:         strings.TrimSpace(urlTemplate),
		Method:              method,
		Statuses:            make([]string, 0),
		Enabled:             true,
	}

	config.AddDomainEvent(NewConfigCreatedEvent(config))

	return config, nil
}

// Update changes the subscription's name, template and method
func (c *Config) Update(name, urlTemplate string, method Method) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := ValidateTemplate(urlTemplate); err != nil {
		return err
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_METHOD", "Postback method must be GET or POST")
	}

	c.Name = strings.TrimSpace(name)
	c.URLTemplate = strings.TrimSpace(urlTemplate)
	c.Method = method
	c.touch()

	return nil
}

// SetStatuses replaces the lead status filter. An empty filter fires on
// every status change.
func (c *Config) SetStatuses(statuses []string) error {
	if len(statuses) > 20 {
		return shared.NewDomainError("INVALID_STATUSES", "Status filter cannot exceed 20 entries")
	}

	seen := make(map[string]bool)
	normalized := make([]string, 0, len(statuses))
	for _, status := range statuses {
		status = strings.ToUpper(strings.TrimSpace(status))
		if status == "" {
			return shared.NewDomainError("INVALID_STATUSES", "Status filter entries cannot be empty")
		}
		if !seen[status] {
			seen[status] = true
			normalized = append(normalized, status)
		}
	}

	c.Statuses = normalized
	c.touch()

	return nil
}

// SetSecretToken sets the shared secret sent with each delivery
func (c *Config) SetSecretToken(token string) error {
	if len(token) > 200 {
		return shared.NewDomainError("INVALID_TOKEN", "Secret token cannot exceed 200 characters")
	}

	c.SecretToken = token
	c.touch()

	return nil
}

// Enable switches the subscription on and clears the failure streak
func (c *Config) Enable() {
	if c.Enabled {
		return
	}
	c.Enabled = true
	c.FailureCount = 0
	c.LastError = ""
	c.touch()
}

// Disable switches the subscription off
func (c *Config) Disable() {
	if !c.Enabled {
		return
	}
	c.Enabled = false
	c.touch()
}

// MatchesStatus reports whether the subscription fires for a lead status
func (c *Config) MatchesStatus(status string) bool {
	if len(c.Statuses) == 0 {
		return true
	}
	for _, s := range c.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// RecordSuccess resets the failure streak after a delivered postback
func (c *Config) RecordSuccess() {
	now := time.Now()
	c.FailureCount = 0
	c.LastError = ""
	c.LastFiredAt = &now
	c.touch()
}

// RecordFailure counts a failed delivery attempt and disables the
// subscription once the streak reaches the threshold. Returns true if
// the config was auto-disabled.
func (c *Config) RecordFailure(errMsg string, disableThreshold int) bool {
	if disableThreshold <= 0 {
		disableThreshold = DefaultDisableThreshold
	}

	c.FailureCount++
	c.LastError = errMsg
	c.touch()

	if c.Enabled && c.FailureCount >= disableThreshold {
		c.Enabled = false
		c.AddDomainEvent(NewConfigAutoDisabledEvent(c))
		return true
	}
	return false
}

func (c *Config) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Postback name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Postback name cannot exceed 100 characters")
	}
	return nil
}

// ValidateTemplate checks that the URL template is an absolute http(s)
// URL and that every {placeholder} it carries is a known macro.
func ValidateTemplate(urlTemplate string) error {
	urlTemplate = strings.TrimSpace(urlTemplate)
	if urlTemplate == "" {
		return shared.NewDomainError("INVALID_TEMPLATE", "URL template cannot be empty")
	}
	if len(urlTemplate) > 2000 {
		return shared.NewDomainError("INVALID_TEMPLATE", "URL template cannot exceed 2000 characters")
	}

	parsed, err := url.Parse(stripMacros(urlTemplate))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return shared.NewDomainError("INVALID_TEMPLATE", "URL template must be an absolute http(s) URL")
	}

	for _, macro := range extractMacros(urlTemplate) {
		if !isKnownMacro(macro) {
			return shared.NewDomainError("UNKNOWN_MACRO", "Unknown macro {"+macro+"} in URL template")
		}
	}

	return nil
}
