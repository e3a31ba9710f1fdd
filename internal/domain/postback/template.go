package postback

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

// Macro names substitutable in URL templates
const (
	MacroLeadID     = "lead_id"
	MacroNumber     = "number"
	MacroExternalID = "external_id"
	MacroStatus     = "status"
	MacroPayout     = "payout"
	MacroTotal      = "total"
	MacroCurrency   = "currency"
	MacroSKU        = "sku"
	MacroSub1       = "sub1"
	MacroSub2       = "sub2"
	MacroSub3       = "sub3"
	MacroSub4       = "sub4"
	MacroSub5       = "sub5"
	MacroChangedAt  = "changed_at"
)

var macroPattern = regexp.MustCompile(`\{([a-z0-9_]+)\}`)

var knownMacros = map[string]bool{
	MacroLeadID:     true,
	MacroNumber:     true,
	MacroExternalID: true,
	MacroStatus:     true,
	MacroPayout:     true,
	MacroTotal:      true,
	MacroCurrency:   true,
	MacroSKU:        true,
	MacroSub1:       true,
	MacroSub2:       true,
	MacroSub3:       true,
	MacroSub4:       true,
	MacroSub5:       true,
	MacroChangedAt:  true,
}

// MacroValues holds the per-delivery substitution values. All fields are
// pre-rendered strings so the same set feeds both URL substitution and
// the POST JSON body.
type MacroValues struct {
	LeadID     string `json:"lead_id"`
	Number     string `json:"number"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Payout     string `json:"payout"`
	Total      string `json:"total"`
	Currency   string `json:"currency"`
	SKU        string `json:"sku"`
	Sub1       string `json:"sub1"`
	Sub2       string `json:"sub2"`
	Sub3       string `json:"sub3"`
	Sub4       string `json:"sub4"`
	Sub5       string `json:"sub5"`
	ChangedAt  string `json:"changed_at"`
}

func (v MacroValues) lookup(macro string) string {
	switch macro {
	case MacroLeadID:
		return v.LeadID
	case MacroNumber:
		return v.Number
	case MacroExternalID:
		return v.ExternalID
	case MacroStatus:
		return v.Status
	case MacroPayout:
		return v.Payout
	case MacroTotal:
		return v.Total
	case MacroCurrency:
		return v.Currency
	case MacroSKU:
		return v.SKU
	case MacroSub1:
		return v.Sub1
	case MacroSub2:
		return v.Sub2
	case MacroSub3:
		return v.Sub3
	case MacroSub4:
		return v.Sub4
	case MacroSub5:
		return v.Sub5
	case MacroChangedAt:
		return v.ChangedAt
	default:
		return ""
	}
}

// RenderURL substitutes every macro in the config's URL template with
// its query-escaped value
func (c *Config) RenderURL(values MacroValues) string {
	return macroPattern.ReplaceAllStringFunc(c.URLTemplate, func(match string) string {
		macro := strings.Trim(match, "{}")
		if !knownMacros[macro] {
			return match
		}
		return url.QueryEscape(values.lookup(macro))
	})
}

// RenderBody builds the JSON request body for POST deliveries. GET
// deliveries carry no body.
func (c *Config) RenderBody(values MacroValues) ([]byte, error) {
	if c.Method != MethodPost {
		return nil, nil
	}
	return json.Marshal(values)
}

func extractMacros(urlTemplate string) []string {
	matches := macroPattern.FindAllStringSubmatch(urlTemplate, -1)
	macros := make([]string, 0, len(matches))
	for _, m := range matches {
		macros = append(macros, m[1])
	}
	return macros
}

// stripMacros removes macro placeholders so the bare template can be
// checked with url.Parse (braces are not valid URL characters)
func stripMacros(urlTemplate string) string {
	return macroPattern.ReplaceAllString(urlTemplate, "x")
}

func isKnownMacro(macro string) bool {
	return knownMacros[macro]
}
