package notification

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/octobees/lead-intel/internal/entity"
)

const (
	placeholderCompany = "Company Name"
	placeholderProduct = "Product TBD"
	placeholderReason  = "Market Signal"
	placeholderField   = "N/A"

	outreachBaseURL = "https://wa.me/"
)

// UrgencyLevel maps a lead score onto High (> 75), Medium (> 50) or Low.
func UrgencyLevel(score float64) string {
	switch {
	case score > 75:
		return "High"
	case score > 50:
		return "Medium"
	default:
		return "Low"
	}
}

func urgencyIndicator(level string) string {
	switch level {
	case "High":
		return "High 🔴"
	case "Medium":
		return "Medium 🟡"
	default:
		return "Low 🟢"
	}
}

// NextAction recommends the sales step for a lead status.
func NextAction(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case entity.StatusHot:
		return "Schedule immediate site visit"
	case entity.StatusWarm:
		return "Initial outreach call"
	case entity.StatusCold:
		return "Research and qualification"
	default:
		return "Initial contact"
	}
}

// ComposeLeadAlert renders the WhatsApp lead alert for lead, linking to leadURL.
func ComposeLeadAlert(lead entity.Lead, leadURL string) string {
	var b strings.Builder
	b.WriteString("🚨 NEW HIGH-INTENT LEAD\n\n")
	fmt.Fprintf(&b, "Target: %s\n", entity.ValueOr(lead.CompanyName, placeholderCompany))
	fmt.Fprintf(&b, "Need: %s (Based on %s)\n\n",
		entity.ValueOr(lead.ProductRecommendations, placeholderProduct),
		entity.ValueOr(lead.ReasonCodes, placeholderReason),
	)
	fmt.Fprintf(&b, "Urgency: %s\n", urgencyIndicator(UrgencyLevel(lead.Score())))
	fmt.Fprintf(&b, "Confidence Score: %s%%\n\n", formatScore(lead.Trust()))
	fmt.Fprintf(&b, "Dossier Link: %s\n", leadURL)
	fmt.Fprintf(&b, "Next Best Action: %s\n\n", NextAction(entity.Value(lead.Status)))
	fmt.Fprintf(&b, "Industry: %s\n", entity.ValueOr(lead.IndustryType, placeholderField))
	fmt.Fprintf(&b, "Location: %s\n", entity.ValueOr(lead.PlantLocations, placeholderField))
	fmt.Fprintf(&b, "Contact: %s", entity.ValueOr(lead.ContactInformation, placeholderField))
	return b.String()
}

// OutreachLink builds a click-to-chat link that pre-fills message.
func OutreachLink(message string) string {
	return outreachBaseURL + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
