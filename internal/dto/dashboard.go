package dto

// NamedCount is one slice of a distribution chart.
type NamedCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ScoreBucket counts leads whose score falls in Range.
type ScoreBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// ScatterPoint plots a lead's score against its trust score.
type ScatterPoint struct {
	LeadScore  float64 `json:"leadScore"`
	TrustScore float64 `json:"trustScore"`
	Company    string  `json:"company"`
}

// TopLead is a short entry in the top opportunities list.
type TopLead struct {
	ID          string  `json:"_id"`
	CompanyName string  `json:"companyName"`
	Industry    string  `json:"industryType,omitempty"`
	LeadScore   float64 `json:"leadScore"`
	Status      string  `json:"status,omitempty"`
}

// DashboardTotals holds the headline metrics.
type DashboardTotals struct {
	TotalLeads     int     `json:"totalLeads"`
	HotLeads       int     `json:"hotLeads"`
	AcceptedLeads  int     `json:"acceptedLeads"`
	ConversionRate float64 `json:"conversionRate"`
	AvgLeadScore   float64 `json:"avgLeadScore"`
}

// Dashboard aggregates lead analytics for the executive view.
type Dashboard struct {
	Totals               DashboardTotals `json:"totals"`
	StatusDistribution   []NamedCount    `json:"statusDistribution"`
	IndustryDistribution []NamedCount    `json:"industryDistribution"`
	ScoreDistribution    []ScoreBucket   `json:"scoreDistribution"`
	RegionalDistribution []NamedCount    `json:"regionalDistribution"`
	Scatter              []ScatterPoint  `json:"scatter"`
	TopLeads             []TopLead       `json:"topLeads"`
}

// StateSummary groups leads by the state named in their plant location.
type StateSummary struct {
	State    string  `json:"state"`
	Count    int     `json:"count"`
	HotLeads int     `json:"hotLeads"`
	AvgScore float64 `json:"avgScore"`
}
