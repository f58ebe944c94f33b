package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/lead-intel/internal/cache"
	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/repository"
)

const (
	dashboardCacheKey = "dashboard"
	statesCacheKey    = "states"

	dashboardLeadLimit   = 1000
	dashboardOfficeLimit = 100
	topIndustries        = 8
	scatterPoints        = 50
	topLeadCount         = 5
	topLeadMinScore      = 70
)

var statusOrder = []struct {
	name string
	key  string
}{
	{"Hot", entity.StatusHot},
	{"Warm", entity.StatusWarm},
	{"Cold", entity.StatusCold},
	{"Accepted", entity.StatusAccepted},
	{"Rejected", entity.StatusRejected},
}

// DashboardService computes lead analytics, caching the results when a cache is set.
type DashboardService struct {
	leads   *repository.Collection[entity.Lead]
	offices *repository.Collection[entity.RegionalOffice]
	cache   cache.Cache
	ttl     time.Duration
	log     *zap.SugaredLogger
}

// NewDashboardService builds a DashboardService. A nil cache or a zero ttl disables caching.
func NewDashboardService(items repository.ItemsRepository, c cache.Cache, ttl time.Duration, log *zap.SugaredLogger) *DashboardService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DashboardService{
		leads:   repository.NewCollection[entity.Lead](items, repository.CollectionLeads),
		offices: repository.NewCollection[entity.RegionalOffice](items, repository.CollectionOffices),
		cache:   c,
		ttl:     ttl,
		log:     log,
	}
}

// Dashboard returns the executive dashboard aggregates.
func (s *DashboardService) Dashboard(ctx context.Context) (*dto.Dashboard, error) {
	var out dto.Dashboard
	if s.fromCache(ctx, dashboardCacheKey, &out) {
		return &out, nil
	}

	leads, _, err := s.leads.List(ctx, nil, repository.ListOptions{Limit: dashboardLeadLimit})
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}
	offices, _, err := s.offices.List(ctx, nil, repository.ListOptions{Limit: dashboardOfficeLimit})
	if err != nil {
		return nil, fmt.Errorf("load offices: %w", err)
	}

	out = BuildDashboard(leads, offices)
	s.toCache(ctx, dashboardCacheKey, out)
	return &out, nil
}

// States returns leads grouped by state.
func (s *DashboardService) States(ctx context.Context) ([]dto.StateSummary, error) {
	var out []dto.StateSummary
	if s.fromCache(ctx, statesCacheKey, &out) {
		return out, nil
	}

	leads, _, err := s.leads.List(ctx, nil, repository.ListOptions{Limit: dashboardLeadLimit})
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}

	out = BuildStates(leads)
	s.toCache(ctx, statesCacheKey, out)
	return out, nil
}

func (s *DashboardService) fromCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil || s.ttl <= 0 {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warnw("dashboard_cache_read_failed", "key", key, "error", err)
	}
	return false
}

func (s *DashboardService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.Warnw("dashboard_cache_write_failed", "key", key, "error", err)
	}
}

// BuildDashboard aggregates leads and offices into dashboard metrics.
func BuildDashboard(leads []entity.Lead, offices []entity.RegionalOffice) dto.Dashboard {
	var out dto.Dashboard

	statusCounts := make(map[string]int)
	var scoreSum float64
	for _, lead := range leads {
		statusCounts[lead.StatusKey()]++
		scoreSum += lead.Score()
	}

	total := len(leads)
	out.Totals = dto.DashboardTotals{
		TotalLeads:    total,
		HotLeads:      statusCounts[entity.StatusHot],
		AcceptedLeads: statusCounts[entity.StatusAccepted],
	}
	if total > 0 {
		out.Totals.ConversionRate = round1(float64(statusCounts[entity.StatusAccepted]) / float64(total) * 100)
		out.Totals.AvgLeadScore = round1(scoreSum / float64(total))
	}

	out.StatusDistribution = make([]dto.NamedCount, 0, len(statusOrder))
	for _, st := range statusOrder {
		if n := statusCounts[st.key]; n > 0 {
			out.StatusDistribution = append(out.StatusDistribution, dto.NamedCount{Name: st.name, Value: n})
		}
	}

	out.IndustryDistribution = industryDistribution(leads)
	out.ScoreDistribution = scoreDistribution(leads)
	out.RegionalDistribution = regionalDistribution(leads, offices)

	n := min(len(leads), scatterPoints)
	out.Scatter = make([]dto.ScatterPoint, 0, n)
	for _, lead := range leads[:n] {
		out.Scatter = append(out.Scatter, dto.ScatterPoint{
			LeadScore:  lead.Score(),
			TrustScore: lead.Trust(),
			Company:    entity.ValueOr(lead.CompanyName, "Unknown"),
		})
	}

	out.TopLeads = topLeads(leads)
	return out
}

// BuildStates groups leads by the last comma-separated part of their plant
// location, largest group first.
func BuildStates(leads []entity.Lead) []dto.StateSummary {
	type acc struct {
		count, hot int
		scoreSum   float64
	}
	var order []string
	groups := make(map[string]*acc)

	for _, lead := range leads {
		location := strings.TrimSpace(entity.Value(lead.PlantLocations))
		if location == "" {
			continue
		}
		parts := strings.Split(location, ",")
		state := strings.TrimSpace(parts[len(parts)-1])
		if state == "" {
			continue
		}

		g, ok := groups[state]
		if !ok {
			g = &acc{}
			groups[state] = g
			order = append(order, state)
		}
		g.count++
		g.scoreSum += lead.Score()
		if lead.StatusKey() == entity.StatusHot {
			g.hot++
		}
	}

	out := make([]dto.StateSummary, 0, len(order))
	for _, state := range order {
		g := groups[state]
		out = append(out, dto.StateSummary{
			State:    state,
			Count:    g.count,
			HotLeads: g.hot,
			AvgScore: round1(g.scoreSum / float64(g.count)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func industryDistribution(leads []entity.Lead) []dto.NamedCount {
	var counts []dto.NamedCount
	index := make(map[string]int)
	for _, lead := range leads {
		industry := entity.ValueOr(lead.IndustryType, "Unknown")
		if i, ok := index[industry]; ok {
			counts[i].Value++
			continue
		}
		index[industry] = len(counts)
		counts = append(counts, dto.NamedCount{Name: industry, Value: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Value > counts[j].Value })
	if len(counts) > topIndustries {
		counts = counts[:topIndustries]
	}
	if counts == nil {
		counts = []dto.NamedCount{}
	}
	return counts
}

func scoreDistribution(leads []entity.Lead) []dto.ScoreBucket {
	buckets := []dto.ScoreBucket{
		{Range: "0-20"},
		{Range: "21-40"},
		{Range: "41-60"},
		{Range: "61-80"},
		{Range: "81-100"},
	}
	for _, lead := range leads {
		score := lead.Score()
		switch {
		case score <= 20:
			buckets[0].Count++
		case score <= 40:
			buckets[1].Count++
		case score <= 60:
			buckets[2].Count++
		case score <= 80:
			buckets[3].Count++
		default:
			buckets[4].Count++
		}
	}
	return buckets
}

func regionalDistribution(leads []entity.Lead, offices []entity.RegionalOffice) []dto.NamedCount {
	regions := make([]dto.NamedCount, 0, len(offices))
	index := make(map[string]int)
	for _, office := range offices {
		region := entity.ValueOr(office.StateProvince, "Unknown")
		needle := strings.ToLower(region)
		count := 0
		for _, lead := range leads {
			if strings.Contains(strings.ToLower(entity.Value(lead.PlantLocations)), needle) {
				count++
			}
		}
		if i, ok := index[region]; ok {
			regions[i].Value = count
			continue
		}
		index[region] = len(regions)
		regions = append(regions, dto.NamedCount{Name: region, Value: count})
	}
	sort.SliceStable(regions, func(i, j int) bool { return regions[i].Value > regions[j].Value })
	return regions
}

func topLeads(leads []entity.Lead) []dto.TopLead {
	var top []entity.Lead
	for _, lead := range leads {
		if lead.LeadScore != nil && *lead.LeadScore >= topLeadMinScore {
			top = append(top, lead)
		}
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Score() > top[j].Score() })
	if len(top) > topLeadCount {
		top = top[:topLeadCount]
	}

	out := make([]dto.TopLead, 0, len(top))
	for _, lead := range top {
		out = append(out, dto.TopLead{
			ID:          lead.ID,
			CompanyName: entity.ValueOr(lead.CompanyName, "Unknown"),
			Industry:    entity.Value(lead.IndustryType),
			LeadScore:   lead.Score(),
			Status:      entity.Value(lead.Status),
		})
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
