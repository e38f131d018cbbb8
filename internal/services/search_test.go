package services

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mediadeck/crm/backend/internal/cache"
	"github.com/mediadeck/crm/backend/internal/models"
	"github.com/mediadeck/crm/backend/internal/repository"
	"github.com/mediadeck/crm/backend/internal/search"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContactRepo struct {
	contacts    []models.Contact
	searchCalls int32
	err         error
}

func (f *fakeContactRepo) Search(ctx context.Context, req search.SearchRequest) ([]models.Contact, int64, error) {
	atomic.AddInt32(&f.searchCalls, 1)
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.contacts, int64(len(f.contacts)), nil
}

func (f *fakeContactRepo) Count(ctx context.Context, req search.SearchRequest) (int64, error) {
	return int64(len(f.contacts)), nil
}

func (f *fakeContactRepo) DistinctDepartments(ctx context.Context) ([]string, error) {
	return []string{models.DepartmentLeadership, models.DepartmentMediaPlanning}, nil
}

func (f *fakeContactRepo) DistinctSeniorities(ctx context.Context) ([]string, error) {
	return []string{models.SeniorityCLevel, models.SeniorityDirector}, nil
}

func (f *fakeContactRepo) CountActive(ctx context.Context) (int64, error) { return 120, nil }

func (f *fakeContactRepo) CountBySeniority(ctx context.Context, seniority string) (int64, error) {
	return 12, nil
}

func (f *fakeContactRepo) CountDecisionMakers(ctx context.Context) (int64, error) { return 30, nil }

func (f *fakeContactRepo) CountByCompanyTypes(ctx context.Context, companyTypes []string) (int64, error) {
	return 45, nil
}

func (f *fakeContactRepo) Create(ctx context.Context, contact *models.Contact) error { return nil }

type fakeCompanyRepo struct {
	companies   []models.Company
	searchCalls int32
}

func (f *fakeCompanyRepo) Search(ctx context.Context, req search.SearchRequest) ([]models.Company, int64, error) {
	atomic.AddInt32(&f.searchCalls, 1)
	return f.companies, int64(len(f.companies)), nil
}

func (f *fakeCompanyRepo) DistinctCompanyTypes(ctx context.Context) ([]string, error) {
	return []string{models.CompanyTypeIndependentAgency, models.CompanyTypeNationalAdvertiser}, nil
}

func (f *fakeCompanyRepo) DistinctIndustries(ctx context.Context) ([]string, error) {
	return []string{"advertising", "consumer_goods"}, nil
}

func (f *fakeCompanyRepo) DistinctLocations(ctx context.Context, limit int) ([]repository.LocationValue, error) {
	return []repository.LocationValue{{City: "New York", State: "NY"}}, nil
}

func (f *fakeCompanyRepo) CountAll(ctx context.Context) (int64, error) { return 40, nil }

func (f *fakeCompanyRepo) Create(ctx context.Context, company *models.Company) error { return nil }

type fakeInteractionRepo struct {
	mu           sync.Mutex
	interactions []models.SearchInteraction
	recent       []models.SearchInteraction
}

func (f *fakeInteractionRepo) Create(ctx context.Context, interaction *models.SearchInteraction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interactions = append(f.interactions, *interaction)
	return nil
}

func (f *fakeInteractionRepo) RecentByUser(ctx context.Context, userID string, since time.Time, limit int) ([]models.SearchInteraction, error) {
	return f.recent, nil
}

func (f *fakeInteractionRepo) created() []models.SearchInteraction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.SearchInteraction, len(f.interactions))
	copy(out, f.interactions)
	return out
}

type serviceFixture struct {
	service      *SearchService
	contacts     *fakeContactRepo
	companies    *fakeCompanyRepo
	interactions *fakeInteractionRepo
	store        *cache.MemoryStore
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	contacts := &fakeContactRepo{contacts: []models.Contact{
		{
			BaseModel:       models.BaseModel{ID: 1, UpdatedAt: time.Now().Add(-24 * time.Hour)},
			FirstName:       "Maria",
			LastName:        "Delgado",
			FullName:        "Maria Delgado",
			Title:           "Chief Executive Officer",
			Department:      models.DepartmentLeadership,
			Seniority:       models.SeniorityCLevel,
			IsDecisionMaker: true,
			Verified:        true,
			IsActive:        true,
			Company: &models.Company{
				Name:        "Horizon Media Group",
				CompanyType: models.CompanyTypeIndependentAgency,
				Industry:    "advertising",
				City:        "New York",
				State:       "NY",
			},
		},
		{
			BaseModel: models.BaseModel{ID: 2},
			FirstName: "Tom",
			LastName:  "Nguyen",
			FullName:  "Tom Nguyen",
			Title:     "Media Buyer",
			Seniority: models.SeniorityAssociate,
			IsActive:  true,
		},
	}}
	companies := &fakeCompanyRepo{companies: []models.Company{
		{
			BaseModel:   models.BaseModel{ID: 1},
			Name:        "Horizon Media Group",
			CompanyType: models.CompanyTypeIndependentAgency,
			Industry:    "advertising",
			City:        "New York",
			State:       "NY",
			Verified:    true,
		},
	}}
	interactions := &fakeInteractionRepo{}

	store := cache.NewMemoryStore()
	repos := &repository.RepositoryManager{
		Contacts:     contacts,
		Companies:    companies,
		Interactions: interactions,
	}
	engine := search.NewEngine(search.DefaultRankingConfig(), logger)
	service := NewSearchService(repos, cache.New(store, logger), engine, logger, 15*time.Minute, 10*time.Minute)

	return &serviceFixture{
		service:      service,
		contacts:     contacts,
		companies:    companies,
		interactions: interactions,
		store:        store,
	}
}

func TestEnhancedSearch_AssemblesFullResponse(t *testing.T) {
	f := newFixture(t)
	req := search.ParseSearchRequest(url.Values{"q": {"media"}, "seniority": {"C_LEVEL"}})

	resp, err := f.service.EnhancedSearch(context.Background(), req, nil, "req-1", "session-1")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Len(t, resp.Results.Contacts, 2)
	assert.Len(t, resp.Results.Companies, 1)
	assert.Equal(t, int64(3), resp.Results.TotalResults)
	assert.False(t, resp.Cache.Cached)
	assert.NotEmpty(t, resp.Cache.Key)

	assert.Equal(t, "req-1", resp.Metadata.RequestID)
	assert.Equal(t, search.SearchTypeBoth, resp.Metadata.SearchType)

	assert.Len(t, resp.QuickFilters, 6)
	assert.Equal(t, int64(120), resp.Stats.TotalContacts)
	assert.Equal(t, int64(40), resp.Stats.TotalCompanies)

	require.NotEmpty(t, resp.Filters.Applied)
	assert.Equal(t, "seniority", resp.Filters.Applied[0].Type)
	assert.NotEmpty(t, resp.Filters.Available.Departments)
	assert.NotEmpty(t, resp.Filters.Available.Locations)

	assert.Equal(t, 50, resp.Pagination.Limit)
	assert.False(t, resp.Pagination.HasMore)
}

func TestEnhancedSearch_RanksByRelevance(t *testing.T) {
	f := newFixture(t)
	req := search.ParseSearchRequest(url.Values{"q": {"maria"}})

	resp, err := f.service.EnhancedSearch(context.Background(), req, nil, "req-1", "session-1")
	require.NoError(t, err)

	require.Len(t, resp.Results.Contacts, 2)
	assert.Equal(t, uint(1), resp.Results.Contacts[0].ID)
	require.NotNil(t, resp.Results.Contacts[0].Ranking)
	assert.Greater(t, resp.Results.Contacts[0].Ranking.RelevanceScore,
		resp.Results.Contacts[1].Ranking.RelevanceScore)
	assert.NotEmpty(t, resp.Results.Contacts[0].Ranking.Explanation)
}

func TestEnhancedSearch_SecondCallHitsCache(t *testing.T) {
	f := newFixture(t)
	req := search.ParseSearchRequest(url.Values{"q": {"media"}})
	ctx := context.Background()

	first, err := f.service.EnhancedSearch(ctx, req, nil, "req-1", "session-1")
	require.NoError(t, err)
	assert.False(t, first.Cache.Cached)

	second, err := f.service.EnhancedSearch(ctx, req, nil, "req-2", "session-1")
	require.NoError(t, err)
	assert.True(t, second.Cache.Cached)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.contacts.searchCalls))

	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, "req-2", second.Metadata.RequestID)
}

func TestEnhancedSearch_InvalidationForcesRecompute(t *testing.T) {
	f := newFixture(t)
	req := search.ParseSearchRequest(url.Values{"q": {"media"}})
	ctx := context.Background()

	_, err := f.service.EnhancedSearch(ctx, req, nil, "req-1", "session-1")
	require.NoError(t, err)

	require.NoError(t, f.service.InvalidateEntity(ctx, TagContacts))

	resp, err := f.service.EnhancedSearch(ctx, req, nil, "req-2", "session-1")
	require.NoError(t, err)
	assert.False(t, resp.Cache.Cached)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.contacts.searchCalls))
}

func TestEnhancedSearch_ContactsOnlySkipsCompanies(t *testing.T) {
	f := newFixture(t)
	req := search.ParseSearchRequest(url.Values{"q": {"media"}, "searchType": {"contacts"}})

	resp, err := f.service.EnhancedSearch(context.Background(), req, nil, "req-1", "session-1")
	require.NoError(t, err)

	assert.Len(t, resp.Results.Contacts, 2)
	assert.Empty(t, resp.Results.Companies)
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.companies.searchCalls))
}

func TestEnhancedSearch_RepoErrorPropagates(t *testing.T) {
	f := newFixture(t)
	f.contacts.err = errors.New("connection refused")
	req := search.ParseSearchRequest(url.Values{"q": {"media"}})

	_, err := f.service.EnhancedSearch(context.Background(), req, nil, "req-1", "session-1")
	require.Error(t, err)

	// Failures are never cached; a recovered backend serves fresh data.
	f.contacts.err = nil
	resp, err := f.service.EnhancedSearch(context.Background(), req, nil, "req-2", "session-1")
	require.NoError(t, err)
	assert.False(t, resp.Cache.Cached)
}

func TestEnhancedSearch_TracksInteraction(t *testing.T) {
	f := newFixture(t)
	req := search.ParseSearchRequest(url.Values{"q": {"media"}, "seniority": {"C_LEVEL"}})

	_, err := f.service.EnhancedSearch(context.Background(), req, nil, "req-1", "session-1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(f.interactions.created()) == 1
	}, time.Second, 10*time.Millisecond)

	interaction := f.interactions.created()[0]
	assert.Equal(t, "media", interaction.Query)
	assert.Equal(t, "session-1", interaction.SessionID)
	assert.Equal(t, 3, interaction.ResultCount)
	assert.True(t, interaction.Successful)
	assert.Contains(t, interaction.Filters, "seniority")
}

func TestEnhancedSearch_FailureTrackedOnlyWithQuery(t *testing.T) {
	f := newFixture(t)
	f.contacts.err = errors.New("connection refused")
	ctx := context.Background()

	noQuery := search.ParseSearchRequest(url.Values{"seniority": {"C_LEVEL"}})
	_, err := f.service.EnhancedSearch(ctx, noQuery, nil, "req-1", "session-1")
	require.Error(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.interactions.created())

	withQuery := search.ParseSearchRequest(url.Values{"q": {"media"}})
	_, err = f.service.EnhancedSearch(ctx, withQuery, nil, "req-2", "session-1")
	require.Error(t, err)

	require.Eventually(t, func() bool {
		return len(f.interactions.created()) == 1
	}, time.Second, 10*time.Millisecond)

	interaction := f.interactions.created()[0]
	assert.False(t, interaction.Successful)
	assert.Equal(t, 0, interaction.ResultCount)
}

func TestEnhancedSearch_NoQueryNotTracked(t *testing.T) {
	f := newFixture(t)
	req := search.ParseSearchRequest(url.Values{"seniority": {"C_LEVEL"}})

	_, err := f.service.EnhancedSearch(context.Background(), req, nil, "req-1", "session-1")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.interactions.created())
}

func TestEnhancedSearch_PersonalizedScoresWithUserContext(t *testing.T) {
	f := newFixture(t)
	req := search.ParseSearchRequest(url.Values{"q": {"media"}})
	user := &search.UserContext{
		UserID:   "user-1",
		Location: &search.Location{City: "New York", State: "NY"},
	}

	resp, err := f.service.EnhancedSearch(context.Background(), req, user, "req-1", "session-1")
	require.NoError(t, err)

	require.NotEmpty(t, resp.Results.Contacts)
	first := resp.Results.Contacts[0]
	require.NotNil(t, first.Ranking)
	assert.NotNil(t, first.Ranking.PersonalizedScore)
}

func TestFilterOptions_ReturnsCatalog(t *testing.T) {
	f := newFixture(t)

	resp, err := f.service.FilterOptions(context.Background())
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Len(t, resp.QuickFilters, 6)
	assert.NotEmpty(t, resp.Filters.Departments)
	assert.NotEmpty(t, resp.Filters.Seniorities)
	assert.NotEmpty(t, resp.Filters.CompanyTypes)
	assert.NotEmpty(t, resp.Filters.Industries)
	assert.Equal(t, int64(120), resp.Stats.TotalContacts)

	// With no active result set every option count is zero.
	for _, opt := range resp.Filters.Departments {
		assert.Equal(t, 0, opt.Count)
	}
}

func TestUserContextFor_DerivesPreferencesFromHistory(t *testing.T) {
	f := newFixture(t)
	f.interactions.recent = []models.SearchInteraction{
		{Filters: `{"industry":["advertising"],"seniority":["C_LEVEL"]}`},
		{Filters: `{"industry":["advertising"],"seniority":["VP"]}`},
		{Filters: `{"industry":["retail"]}`},
		{Filters: `not-json`},
	}

	user := f.service.UserContextFor(context.Background(), "user-1", nil)
	require.NotNil(t, user)
	require.NotNil(t, user.Preferences)

	assert.Equal(t, "advertising", user.Preferences.Industries[0])
	assert.Contains(t, user.Preferences.Seniorities, "C_LEVEL")
	assert.Contains(t, user.Preferences.Seniorities, "VP")
}

func TestUserContextFor_AnonymousWithoutLocationIsNil(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.service.UserContextFor(context.Background(), "", nil))
}

func TestUserContextFor_NoHistoryLeavesPreferencesNil(t *testing.T) {
	f := newFixture(t)
	user := f.service.UserContextFor(context.Background(), "user-1", &search.Location{City: "Austin", State: "TX"})
	require.NotNil(t, user)
	assert.Nil(t, user.Preferences)
	require.NotNil(t, user.Location)
	assert.Equal(t, "Austin", user.Location.City)
}
