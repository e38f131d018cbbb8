package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mediadeck/crm/backend/internal/cache"
	"github.com/mediadeck/crm/backend/internal/models"
	"github.com/mediadeck/crm/backend/internal/repository"
	"github.com/mediadeck/crm/backend/internal/search"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	searchOperation     = "enhanced_search"
	quickFilterCountKey = "aggregates:quick_filter_counts"

	TagSearch     = "search"
	TagContacts   = "contacts"
	TagCompanies  = "companies"
	TagAggregates = "aggregates"
)

// preferenceWindow bounds how far back the personalization engine looks
// into a user's search history.
const preferenceWindow = 30 * 24 * time.Hour

// SearchService orchestrates the enhanced search pipeline: normalize,
// cache-wrapped fetch+rank, fan-out aggregation, response assembly.
type SearchService struct {
	repos        *repository.RepositoryManager
	cache        *cache.Cache
	engine       *search.Engine
	logger       *logrus.Logger
	resultTTL    time.Duration
	aggregateTTL time.Duration
}

func NewSearchService(
	repos *repository.RepositoryManager,
	searchCache *cache.Cache,
	engine *search.Engine,
	logger *logrus.Logger,
	resultTTL, aggregateTTL time.Duration,
) *SearchService {
	if resultTTL <= 0 {
		resultTTL = 15 * time.Minute
	}
	if aggregateTTL <= 0 {
		aggregateTTL = 10 * time.Minute
	}
	return &SearchService{
		repos:        repos,
		cache:        searchCache,
		engine:       engine,
		logger:       logger,
		resultTTL:    resultTTL,
		aggregateTTL: aggregateTTL,
	}
}

// searchPayload is the cached unit: the fetched, ranked result set.
type searchPayload struct {
	Contacts       []models.ContactResult `json:"contacts"`
	Companies      []models.CompanyResult `json:"companies"`
	TotalContacts  int64                  `json:"totalContacts"`
	TotalCompanies int64                  `json:"totalCompanies"`
}

// EnhancedSearch runs the full pipeline for one normalized request.
func (s *SearchService) EnhancedSearch(ctx context.Context, req search.SearchRequest, user *search.UserContext, requestID, sessionID string) (*models.EnhancedSearchResponse, error) {
	started := time.Now()
	key := req.CacheKey(searchOperation)
	tags := []string{TagSearch, TagContacts, TagCompanies, req.SearchType}

	result, err := s.cache.Do(ctx, key, s.resultTTL, tags, func(ctx context.Context) ([]byte, error) {
		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"key":        key,
		}).Debug("Executing fresh search")

		payload, err := s.fetchAndRank(ctx, req, user)
		if err != nil {
			if req.HasQuery() {
				go s.trackInteraction(req, user, sessionID, 0, time.Since(started), false)
			}
			return nil, err
		}

		total := payload.TotalContacts + payload.TotalCompanies
		if req.HasQuery() {
			go s.trackInteraction(req, user, sessionID, total, time.Since(started), total > 0)
		}

		return json.Marshal(payload)
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var payload searchPayload
	if err := json.Unmarshal(result.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode search payload: %w", err)
	}

	// Filter options, stats and quick-filter counts are independent
	// read-only aggregations; run them concurrently and join before
	// assembly.
	var (
		available    models.AvailableFilters
		stats        models.SearchStats
		quickFilters []models.QuickFilterInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		available, err = s.availableFilters(gctx, payload.Contacts, payload.Companies)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.searchStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		quickFilters, err = s.quickFiltersWithCounts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to assemble search response: %w", err)
	}

	total := payload.TotalContacts + payload.TotalCompanies

	return &models.EnhancedSearchResponse{
		Success: true,
		Results: models.SearchResults{
			Contacts:       payload.Contacts,
			Companies:      payload.Companies,
			TotalContacts:  payload.TotalContacts,
			TotalCompanies: payload.TotalCompanies,
			TotalResults:   total,
		},
		Cache: models.CacheInfo{
			Cached: result.Cached,
			Key:    truncateKey(key),
		},
		Filters: models.FiltersSection{
			Applied:   appliedFilters(req),
			Available: available,
		},
		Stats:        stats,
		QuickFilters: quickFilters,
		Pagination: models.Pagination{
			Limit:   req.Limit,
			Offset:  req.Offset,
			HasMore: total > int64(req.Offset+req.Limit),
		},
		Metadata: models.Metadata{
			RequestID:  requestID,
			Duration:   time.Since(started).Milliseconds(),
			SearchType: req.SearchType,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// fetchAndRank pulls raw rows from the store and runs the ranking engine
// over them. This is the expensive unit the cache wraps.
func (s *SearchService) fetchAndRank(ctx context.Context, req search.SearchRequest, user *search.UserContext) (*searchPayload, error) {
	payload := &searchPayload{
		Contacts:  []models.ContactResult{},
		Companies: []models.CompanyResult{},
	}

	if req.IncludesContacts() {
		contacts, total, err := s.repos.Contacts.Search(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("contact search failed: %w", err)
		}
		payload.TotalContacts = total

		if req.SortBy == "relevance" && len(contacts) > 0 {
			ranked := s.engine.RankContacts(contacts, req, user)
			for _, r := range ranked {
				payload.Contacts = append(payload.Contacts, models.ContactResult{
					Contact: r.Data,
					Ranking: r.RankingInfo(),
				})
			}
		} else {
			for _, c := range contacts {
				payload.Contacts = append(payload.Contacts, models.ContactResult{Contact: c})
			}
		}
	}

	if req.IncludesCompanies() {
		companies, total, err := s.repos.Companies.Search(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("company search failed: %w", err)
		}
		payload.TotalCompanies = total

		if req.SortBy == "relevance" && len(companies) > 0 {
			ranked := s.engine.RankCompanies(companies, req, user)
			for _, r := range ranked {
				payload.Companies = append(payload.Companies, models.CompanyResult{
					Company: r.Data,
					Ranking: r.RankingInfo(),
				})
			}
		} else {
			for _, co := range companies {
				payload.Companies = append(payload.Companies, models.CompanyResult{Company: co})
			}
		}
	}

	return payload, nil
}

// FilterOptions serves POST /api/search getFilterOptions: the selectable
// filter values, directory stats and quick filters, with no ranking pass.
func (s *SearchService) FilterOptions(ctx context.Context) (*models.FilterOptionsResponse, error) {
	var (
		available    models.AvailableFilters
		stats        models.SearchStats
		quickFilters []models.QuickFilterInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		available, err = s.availableFilters(gctx, nil, nil)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.searchStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		quickFilters, err = s.quickFiltersWithCounts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.FilterOptionsResponse{
		Success:      true,
		Filters:      available,
		Stats:        stats,
		QuickFilters: quickFilters,
	}, nil
}

// InvalidateEntity expires cached searches that may contain stale rows of
// the given entity type ("contacts" or "companies"). Call after directory
// mutations.
func (s *SearchService) InvalidateEntity(ctx context.Context, entityType string) error {
	return s.cache.InvalidateByTag(ctx, entityType)
}

// UserContextFor assembles the personalization inputs for a user. Missing
// history is not an error; personalization simply stays off.
func (s *SearchService) UserContextFor(ctx context.Context, userID string, location *search.Location) *search.UserContext {
	if userID == "" && location == nil {
		return nil
	}

	user := &search.UserContext{UserID: userID, Location: location}

	if userID != "" {
		prefs, err := s.userPreferences(ctx, userID)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load user preferences")
		} else {
			user.Preferences = prefs
		}
	}

	return user
}

// userPreferences derives filter affinities from the user's recent search
// history: the five most used values per dimension.
func (s *SearchService) userPreferences(ctx context.Context, userID string) (*search.UserPreferences, error) {
	since := time.Now().Add(-preferenceWindow)
	interactions, err := s.repos.Interactions.RecentByUser(ctx, userID, since, 100)
	if err != nil {
		return nil, err
	}
	if len(interactions) == 0 {
		return nil, nil
	}

	industries := map[string]int{}
	locations := map[string]int{}
	companyTypes := map[string]int{}
	seniorities := map[string]int{}

	for _, interaction := range interactions {
		if interaction.Filters == "" {
			continue
		}
		var filters map[string][]string
		if err := json.Unmarshal([]byte(interaction.Filters), &filters); err != nil {
			continue
		}
		for _, v := range filters["industry"] {
			industries[v]++
		}
		for _, v := range filters["location"] {
			locations[v]++
		}
		for _, v := range filters["companyType"] {
			companyTypes[v]++
		}
		for _, v := range filters["seniority"] {
			seniorities[v]++
		}
	}

	return &search.UserPreferences{
		Industries:   topValues(industries, 5),
		Locations:    topValues(locations, 5),
		CompanyTypes: topValues(companyTypes, 5),
		Seniorities:  topValues(seniorities, 5),
	}, nil
}

// availableFilters lists the selectable values per filter dimension with
// occurrence counts computed from the active result set. With no active
// results every count is zero.
func (s *SearchService) availableFilters(ctx context.Context, contacts []models.ContactResult, companies []models.CompanyResult) (models.AvailableFilters, error) {
	var (
		departments  []string
		seniorities  []string
		companyTypes []string
		industries   []string
		locations    []repository.LocationValue
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		departments, err = s.repos.Contacts.DistinctDepartments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		seniorities, err = s.repos.Contacts.DistinctSeniorities(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		companyTypes, err = s.repos.Companies.DistinctCompanyTypes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		industries, err = s.repos.Companies.DistinctIndustries(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		locations, err = s.repos.Companies.DistinctLocations(gctx, 20)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.AvailableFilters{}, fmt.Errorf("failed to load filter options: %w", err)
	}

	departmentCounts := map[string]int{}
	seniorityCounts := map[string]int{}
	companyTypeCounts := map[string]int{}
	industryCounts := map[string]int{}
	locationCounts := map[string]int{}

	for _, c := range contacts {
		departmentCounts[c.Department]++
		seniorityCounts[c.Seniority]++
		if c.Company != nil {
			companyTypeCounts[c.Company.CompanyType]++
			industryCounts[c.Company.Industry]++
			locationCounts[c.Company.City+", "+c.Company.State]++
		}
	}
	for _, co := range companies {
		companyTypeCounts[co.CompanyType]++
		industryCounts[co.Industry]++
		locationCounts[co.City+", "+co.State]++
	}

	available := models.AvailableFilters{
		Departments:  filterOptions(departments, departmentCounts),
		Seniorities:  filterOptions(seniorities, seniorityCounts),
		CompanyTypes: filterOptions(companyTypes, companyTypeCounts),
		Industries:   filterOptions(industries, industryCounts),
	}
	available.Locations = make([]models.FilterOption, 0, len(locations))
	for _, loc := range locations {
		value := loc.City + ", " + loc.State
		available.Locations = append(available.Locations, models.FilterOption{
			Value: value,
			Label: value,
			City:  loc.City,
			State: loc.State,
			Count: locationCounts[value],
		})
	}

	return available, nil
}

// searchStats computes the directory headline numbers.
func (s *SearchService) searchStats(ctx context.Context) (models.SearchStats, error) {
	var stats models.SearchStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.TotalContacts, err = s.repos.Contacts.CountActive(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalCompanies, err = s.repos.Companies.CountAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.CLevelContacts, err = s.repos.Contacts.CountBySeniority(gctx, models.SeniorityCLevel)
		return err
	})
	g.Go(func() error {
		var err error
		stats.AgencyContacts, err = s.repos.Contacts.CountByCompanyTypes(gctx, models.AgencyCompanyTypes)
		return err
	})
	g.Go(func() error {
		var err error
		stats.BrandContacts, err = s.repos.Contacts.CountByCompanyTypes(gctx, models.BrandCompanyTypes)
		return err
	})
	g.Go(func() error {
		var err error
		stats.DecisionMakers, err = s.repos.Contacts.CountDecisionMakers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.SearchStats{}, fmt.Errorf("failed to load search stats: %w", err)
	}
	return stats, nil
}

// quickFiltersWithCounts returns the presets annotated with how many
// contacts each currently matches. Counts are periodically refreshed
// aggregates cached under the aggregates tag; they may be stale by up to
// the aggregate TTL.
func (s *SearchService) quickFiltersWithCounts(ctx context.Context) ([]models.QuickFilterInfo, error) {
	result, err := s.cache.Do(ctx, quickFilterCountKey, s.aggregateTTL, []string{TagAggregates}, func(ctx context.Context) ([]byte, error) {
		counts := make(map[string]int64, len(search.QuickFilters()))
		for _, qf := range search.QuickFilters() {
			req := qf.Apply(search.SearchRequest{SearchType: search.SearchTypeContacts})
			count, err := s.repos.Contacts.Count(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("quick filter count %s: %w", qf.ID, err)
			}
			counts[qf.ID] = count
		}
		return json.Marshal(counts)
	})
	if err != nil {
		return nil, err
	}

	var counts map[string]int64
	if err := json.Unmarshal(result.Payload, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode quick filter counts: %w", err)
	}

	infos := make([]models.QuickFilterInfo, 0, len(search.QuickFilters()))
	for _, qf := range search.QuickFilters() {
		infos = append(infos, models.QuickFilterInfo{
			ID:          qf.ID,
			Label:       qf.Label,
			Description: qf.Description,
			Icon:        qf.Icon,
			Count:       counts[qf.ID],
		})
	}
	return infos, nil
}

// trackInteraction records one search event, fire-and-forget. Analytics
// failures are logged and swallowed; they never fail the search.
func (s *SearchService) trackInteraction(req search.SearchRequest, user *search.UserContext, sessionID string, resultCount int64, duration time.Duration, successful bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filters, err := json.Marshal(req.FilterDimensions())
	if err != nil {
		filters = []byte("{}")
	}

	userID := ""
	if user != nil {
		userID = user.UserID
	}

	interaction := &models.SearchInteraction{
		UserID:      userID,
		SessionID:   sessionID,
		Query:       req.Query,
		SearchType:  req.SearchType,
		Filters:     string(filters),
		ResultCount: int(resultCount),
		QueryTimeMs: int(duration.Milliseconds()),
		Successful:  successful,
	}

	if err := s.repos.Interactions.Create(ctx, interaction); err != nil {
		s.logger.WithError(err).Warn("Failed to track search interaction")
	}
}

func appliedFilters(req search.SearchRequest) []models.AppliedFilter {
	applied := []models.AppliedFilter{}

	for _, role := range req.Roles {
		applied = append(applied, models.AppliedFilter{Type: "role", Value: role, Label: role})
	}
	for _, seniority := range req.Seniority {
		applied = append(applied, models.AppliedFilter{Type: "seniority", Value: seniority, Label: humanize(seniority)})
	}
	for _, dept := range req.Department {
		applied = append(applied, models.AppliedFilter{Type: "department", Value: dept, Label: humanize(dept)})
	}
	for _, ct := range req.CompanyType {
		applied = append(applied, models.AppliedFilter{Type: "companyType", Value: ct, Label: humanize(ct)})
	}
	for _, industry := range req.Industry {
		applied = append(applied, models.AppliedFilter{Type: "industry", Value: industry, Label: humanize(industry)})
	}
	for _, city := range req.City {
		applied = append(applied, models.AppliedFilter{Type: "location", Value: city, Label: city})
	}
	if req.IsDecisionMaker {
		applied = append(applied, models.AppliedFilter{Type: "isDecisionMaker", Value: "true", Label: "Decision Makers"})
	}

	return applied
}

func filterOptions(values []string, counts map[string]int) []models.FilterOption {
	options := make([]models.FilterOption, 0, len(values))
	for _, v := range values {
		options = append(options, models.FilterOption{
			Value: v,
			Label: humanize(v),
			Count: counts[v],
		})
	}
	return options
}

func humanize(value string) string {
	return strings.ReplaceAll(value, "_", " ")
}

func topValues(counts map[string]int, limit int) []string {
	type entry struct {
		value string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for v, c := range counts {
		entries = append(entries, entry{v, c})
	}
	// Ties broken alphabetically so the derived preferences are stable.
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].count > entries[i].count ||
				(entries[j].count == entries[i].count && entries[j].value < entries[i].value) {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}
	out := make([]string, 0, limit)
	for _, e := range entries {
		if len(out) == limit {
			break
		}
		out = append(out, e.value)
	}
	return out
}

func truncateKey(key string) string {
	if len(key) <= 16 {
		return key
	}
	return key[:16] + "..."
}
