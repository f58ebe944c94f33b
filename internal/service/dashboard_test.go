package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/repository"
)

func lead(id, company, industry, location, status string, score *float64) entity.Lead {
	l := entity.Lead{ID: id, LeadScore: score}
	if company != "" {
		l.CompanyName = stringPtr(company)
	}
	if industry != "" {
		l.IndustryType = stringPtr(industry)
	}
	if location != "" {
		l.PlantLocations = stringPtr(location)
	}
	if status != "" {
		l.Status = stringPtr(status)
	}
	return l
}

func sampleLeads() []entity.Lead {
	return []entity.Lead{
		lead("1", "Acme Oils", "Edible Oil", "Nagpur, Maharashtra", "hot", floatPtr(82)),
		lead("2", "Beta Steel", "Steel", "Pune, Maharashtra", "Warm", floatPtr(55)),
		lead("3", "Gamma Chem", "Chemicals", "Surat, Gujarat", "accepted", floatPtr(71)),
		lead("4", "", "", "Chennai, Tamil Nadu", "HOT", floatPtr(95)),
		lead("5", "Delta Foods", "Edible Oil", "", "cold", nil),
	}
}

func TestBuildDashboard(t *testing.T) {
	offices := []entity.RegionalOffice{
		{ID: "o1", StateProvince: stringPtr("Maharashtra")},
		{ID: "o2", StateProvince: stringPtr("Gujarat")},
		{ID: "o3"},
	}
	d := BuildDashboard(sampleLeads(), offices)

	want := dto.DashboardTotals{TotalLeads: 5, HotLeads: 2, AcceptedLeads: 1, ConversionRate: 20, AvgLeadScore: 60.6}
	if d.Totals != want {
		t.Fatalf("unexpected totals: %+v", d.Totals)
	}

	if fmt.Sprint(d.StatusDistribution) != "[{Hot 2} {Warm 1} {Cold 1} {Accepted 1}]" {
		t.Fatalf("unexpected status distribution: %v", d.StatusDistribution)
	}
	if fmt.Sprint(d.IndustryDistribution) != "[{Edible Oil 2} {Steel 1} {Chemicals 1} {Unknown 1}]" {
		t.Fatalf("unexpected industry distribution: %v", d.IndustryDistribution)
	}
	if fmt.Sprint(d.ScoreDistribution) != "[{0-20 1} {21-40 0} {41-60 1} {61-80 1} {81-100 2}]" {
		t.Fatalf("unexpected score distribution: %v", d.ScoreDistribution)
	}
	if fmt.Sprint(d.RegionalDistribution) != "[{Maharashtra 2} {Gujarat 1} {Unknown 0}]" {
		t.Fatalf("unexpected regional distribution: %v", d.RegionalDistribution)
	}
	if len(d.Scatter) != 5 || d.Scatter[3].Company != "Unknown" || d.Scatter[4].LeadScore != 0 {
		t.Fatalf("unexpected scatter: %+v", d.Scatter)
	}

	if len(d.TopLeads) != 3 || d.TopLeads[0].ID != "4" || d.TopLeads[1].ID != "1" || d.TopLeads[2].ID != "3" {
		t.Fatalf("unexpected top leads: %+v", d.TopLeads)
	}
}

func TestBuildDashboard_Limits(t *testing.T) {
	var leads []entity.Lead
	for i := 0; i < 60; i++ {
		leads = append(leads, lead(fmt.Sprint(i), "c", fmt.Sprintf("industry-%d", i%10), "", "", floatPtr(float64(70+i%30))))
	}
	d := BuildDashboard(leads, nil)
	if len(d.Scatter) != 50 || len(d.IndustryDistribution) != 8 || len(d.TopLeads) != 5 {
		t.Fatalf("unexpected sizes: scatter=%d industries=%d top=%d", len(d.Scatter), len(d.IndustryDistribution), len(d.TopLeads))
	}
	if d.TopLeads[0].LeadScore != 99 {
		t.Fatalf("expected highest score first, got %v", d.TopLeads[0].LeadScore)
	}

	empty := BuildDashboard(nil, nil)
	if empty.Totals.ConversionRate != 0 || empty.Totals.AvgLeadScore != 0 || len(empty.StatusDistribution) != 0 {
		t.Fatalf("unexpected empty dashboard: %+v", empty)
	}
}

func TestBuildStates(t *testing.T) {
	states := BuildStates(sampleLeads())
	if len(states) != 3 {
		t.Fatalf("unexpected states: %+v", states)
	}
	if states[0] != (dto.StateSummary{State: "Maharashtra", Count: 2, HotLeads: 1, AvgScore: 68.5}) {
		t.Fatalf("unexpected first state: %+v", states[0])
	}
	if states[1].State != "Gujarat" || states[2].State != "Tamil Nadu" || states[2].HotLeads != 1 {
		t.Fatalf("unexpected ordering: %+v", states)
	}
}

func dashboardItems(t *testing.T, calls *int) *mockItemsRepository {
	return &mockItemsRepository{
		getAll: func(ctx context.Context, collection string, filters []repository.Filter, opts repository.ListOptions) (repository.Page, error) {
			*calls++
			switch collection {
			case repository.CollectionLeads:
				if opts.Limit != 1000 {
					t.Fatalf("expected 1000 leads requested, got %d", opts.Limit)
				}
				items := make([]any, 0)
				for _, l := range sampleLeads() {
					items = append(items, l)
				}
				return repository.Page{Items: rawItems(t, items...)}, nil
			case repository.CollectionOffices:
				if opts.Limit != 100 {
					t.Fatalf("expected 100 offices requested, got %d", opts.Limit)
				}
				return repository.Page{Items: rawItems(t, entity.RegionalOffice{ID: "o1", StateProvince: stringPtr("Gujarat")})}, nil
			}
			t.Fatalf("unexpected collection %s", collection)
			return repository.Page{}, nil
		},
	}
}

func TestDashboardService_Caches(t *testing.T) {
	calls := 0
	c := newMemoryCache()
	svc := NewDashboardService(dashboardItems(t, &calls), c, time.Minute, nil)

	first, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected leads and offices loaded, got %d calls", calls)
	}
	second, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected cached dashboard, got %d calls", calls)
	}
	if second.Totals != first.Totals || fmt.Sprint(second.RegionalDistribution) != "[{Gujarat 1}]" {
		t.Fatalf("cached dashboard differs: %+v vs %+v", second, first)
	}

	states, err := svc.States(context.Background())
	if err != nil || len(states) != 3 {
		t.Fatalf("unexpected states: %+v (%v)", states, err)
	}
	if _, err := svc.States(context.Background()); err != nil || calls != 3 {
		t.Fatalf("expected cached states, got %d calls (%v)", calls, err)
	}
}

func TestDashboardService_CacheErrorsDoNotFail(t *testing.T) {
	calls := 0
	c := newMemoryCache()
	c.getErr = errors.New("redis down")
	c.setErr = errors.New("redis down")
	core, logs := observer.New(zapcore.WarnLevel)

	svc := NewDashboardService(dashboardItems(t, &calls), c, time.Minute, zap.New(core).Sugar())
	if _, err := svc.Dashboard(context.Background()); err != nil {
		t.Fatalf("cache errors must not fail the request: %v", err)
	}
	if logs.FilterMessage("dashboard_cache_read_failed").Len() != 1 || logs.FilterMessage("dashboard_cache_write_failed").Len() != 1 {
		t.Fatalf("expected cache failures logged, got %d entries", logs.Len())
	}
}

func TestDashboardService_WithoutCache(t *testing.T) {
	calls := 0
	svc := NewDashboardService(dashboardItems(t, &calls), nil, time.Minute, nil)
	for i := 0; i < 2; i++ {
		if _, err := svc.Dashboard(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 4 {
		t.Fatalf("expected every call to hit the repository, got %d", calls)
	}

	failing := &mockItemsRepository{}
	if _, err := NewDashboardService(failing, nil, 0, nil).Dashboard(context.Background()); err == nil {
		t.Fatalf("expected repository error")
	}
}
