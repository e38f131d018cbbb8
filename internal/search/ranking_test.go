package search

import (
	"net/url"
	"testing"
	"time"

	"github.com/mediadeck/crm/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	engine := NewEngine(DefaultRankingConfig(), logger)
	engine.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return engine
}

func mediaDirector() models.Contact {
	updated := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	return models.Contact{
		BaseModel:       models.BaseModel{ID: 1, UpdatedAt: updated},
		FirstName:       "James",
		LastName:        "Okafor",
		FullName:        "James Okafor",
		Title:           "Media Director",
		Email:           "james.okafor@horizon.example.com",
		Phone:           "+1-212-555-0100",
		LinkedinURL:     "https://linkedin.com/in/jokafor",
		Department:      models.DepartmentMediaPlanning,
		Seniority:       models.SeniorityDirector,
		IsDecisionMaker: true,
		Verified:        true,
		IsActive:        true,
		Company: &models.Company{
			Name:          "Horizon Media Group",
			CompanyType:   models.CompanyTypeIndependentAgency,
			Industry:      "advertising",
			City:          "New York",
			State:         "NY",
			EmployeeCount: models.EmployeeRangeEnterprise,
			RevenueRange:  models.RevenueRange100M,
		},
	}
}

func juniorContact() models.Contact {
	return models.Contact{
		BaseModel: models.BaseModel{ID: 2, UpdatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		FirstName: "Pat",
		LastName:  "Jones",
		FullName:  "Pat Jones",
		Title:     "Coordinator",
		Seniority: models.SeniorityCoordinator,
		IsActive:  true,
	}
}

func TestRankContacts_StrongMatchRanksFirst(t *testing.T) {
	engine := testEngine(t)
	req := ParseSearchRequest(url.Values{"q": {"media director"}})

	ranked := engine.RankContacts([]models.Contact{juniorContact(), mediaDirector()}, req, nil)
	require.Len(t, ranked, 2)

	assert.Equal(t, uint(1), ranked[0].Data.ID)
	assert.Greater(t, ranked[0].RelevanceScore, ranked[1].RelevanceScore)
	for _, r := range ranked {
		assert.GreaterOrEqual(t, r.RelevanceScore, 0.0)
		assert.LessOrEqual(t, r.RelevanceScore, 100.0)
	}
}

func TestRankContacts_Deterministic(t *testing.T) {
	engine := testEngine(t)
	req := ParseSearchRequest(url.Values{"q": {"media"}, "seniority": {"DIRECTOR"}})
	contacts := []models.Contact{mediaDirector(), juniorContact()}

	first := engine.RankContacts(contacts, req, nil)
	second := engine.RankContacts(contacts, req, nil)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Data.ID, second[i].Data.ID)
		assert.Equal(t, first[i].RelevanceScore, second[i].RelevanceScore)
		assert.Equal(t, first[i].Explanation, second[i].Explanation)
	}
}

func TestRankContacts_VerificationOnlyRaisesScore(t *testing.T) {
	engine := testEngine(t)
	req := ParseSearchRequest(url.Values{"q": {"media director"}})

	verified := mediaDirector()
	unverified := mediaDirector()
	unverified.Verified = false

	vScore := engine.RankContacts([]models.Contact{verified}, req, nil)[0].RelevanceScore
	uScore := engine.RankContacts([]models.Contact{unverified}, req, nil)[0].RelevanceScore

	assert.GreaterOrEqual(t, vScore, uScore)
}

func TestRankContacts_DecisionMakerOnlyRaisesScore(t *testing.T) {
	engine := testEngine(t)
	req := ParseSearchRequest(url.Values{"seniority": {"DIRECTOR"}})

	dm := mediaDirector()
	nonDM := mediaDirector()
	nonDM.IsDecisionMaker = false

	dmScore := engine.RankContacts([]models.Contact{dm}, req, nil)[0].RelevanceScore
	plainScore := engine.RankContacts([]models.Contact{nonDM}, req, nil)[0].RelevanceScore

	assert.GreaterOrEqual(t, dmScore, plainScore)
}

func TestRankContacts_EqualScoresKeepInputOrder(t *testing.T) {
	engine := testEngine(t)
	req := SearchRequest{SearchType: SearchTypeContacts, SortBy: "relevance"}

	a := mediaDirector()
	a.ID = 10
	b := mediaDirector()
	b.ID = 20

	ranked := engine.RankContacts([]models.Contact{a, b}, req, nil)
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].RelevanceScore, ranked[1].RelevanceScore)
	assert.Equal(t, uint(10), ranked[0].Data.ID)
	assert.Equal(t, uint(20), ranked[1].Data.ID)
}

func TestRankContacts_NoQueryUsesNeutralTextSignal(t *testing.T) {
	engine := testEngine(t)
	ranked := engine.RankContacts([]models.Contact{mediaDirector()}, SearchRequest{}, nil)
	require.Len(t, ranked, 1)

	var textSignal *RankingSignal
	for i := range ranked[0].Signals {
		if ranked[0].Signals[i].Name == "text_match" {
			textSignal = &ranked[0].Signals[i]
		}
	}
	require.NotNil(t, textSignal)
	assert.Equal(t, NeutralBaseline, textSignal.Score)
}

func TestRankContacts_SparseRowGetsBaselineExplanation(t *testing.T) {
	engine := testEngine(t)
	ranked := engine.RankContacts([]models.Contact{{}}, SearchRequest{}, nil)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Basic relevance match", ranked[0].Explanation)
}

func TestRankContacts_PersonalizationAddsSecondScore(t *testing.T) {
	engine := testEngine(t)
	req := ParseSearchRequest(url.Values{"q": {"media"}})
	user := &UserContext{
		UserID:   "user-1",
		Location: &Location{City: "New York", State: "NY"},
		Preferences: &UserPreferences{
			Industries:  []string{"advertising"},
			Seniorities: []string{"DIRECTOR"},
		},
	}

	ranked := engine.RankContacts([]models.Contact{mediaDirector()}, req, user)
	require.Len(t, ranked, 1)
	require.NotNil(t, ranked[0].PersonalizedScore)
	assert.Contains(t, ranked[0].Explanation, "Personalized based on your search patterns")

	baseline := engine.RankContacts([]models.Contact{mediaDirector()}, req, nil)
	assert.Equal(t, baseline[0].RelevanceScore, ranked[0].RelevanceScore)
	assert.Nil(t, baseline[0].PersonalizedScore)
}

func TestRankContacts_NilUserContextSkipsPersonalization(t *testing.T) {
	engine := testEngine(t)
	ranked := engine.RankContacts([]models.Contact{mediaDirector()}, SearchRequest{}, &UserContext{UserID: "user-1"})
	require.Len(t, ranked, 1)
	assert.Nil(t, ranked[0].PersonalizedScore)
}

func TestRankContacts_TitleAndSeniorityOverlapWins(t *testing.T) {
	engine := testEngine(t)
	req := ParseSearchRequest(url.Values{
		"q":          {"media director"},
		"searchType": {"contacts"},
		"seniority":  {"DIRECTOR"},
	})

	contact := func(id uint, title, seniority string) models.Contact {
		return models.Contact{
			BaseModel: models.BaseModel{ID: id},
			FirstName: "Contact",
			LastName:  "One",
			FullName:  "Contact One",
			Title:     title,
			Seniority: seniority,
			IsActive:  true,
		}
	}

	fixture := []models.Contact{
		contact(1, "Media Director of Planning", models.SeniorityManager),
		contact(2, "Senior Media Director", models.SeniorityVP),
		contact(3, "Account Executive", models.SeniorityDirector),
		contact(4, "Media Director", models.SeniorityDirector), // overlaps both
		contact(5, "Copywriter", models.SeniorityDirector),
	}

	ranked := engine.RankContacts(fixture, req, nil)
	require.Len(t, ranked, 5)
	assert.Equal(t, uint(4), ranked[0].Data.ID)
}

func TestRankCompanies_NameMatchBeatsDescriptionMatch(t *testing.T) {
	engine := testEngine(t)
	req := ParseSearchRequest(url.Values{"q": {"horizon"}})

	byName := models.Company{
		BaseModel: models.BaseModel{ID: 1},
		Name:      "Horizon Media Group",
	}
	byDescription := models.Company{
		BaseModel:   models.BaseModel{ID: 2},
		Name:        "Beacon Brands",
		Description: "Partners with Horizon on retail media",
	}

	ranked := engine.RankCompanies([]models.Company{byDescription, byName}, req, nil)
	require.Len(t, ranked, 2)
	assert.Equal(t, uint(1), ranked[0].Data.ID)
}

func TestRankedResult_RankingInfoTopSignals(t *testing.T) {
	engine := testEngine(t)
	req := ParseSearchRequest(url.Values{"q": {"media director"}, "seniority": {"DIRECTOR"}})

	ranked := engine.RankContacts([]models.Contact{mediaDirector()}, req, nil)
	require.Len(t, ranked, 1)

	info := ranked[0].RankingInfo()
	require.NotNil(t, info)
	assert.Equal(t, ranked[0].RelevanceScore, info.RelevanceScore)
	assert.LessOrEqual(t, len(info.TopSignals), 3)
	assert.NotEmpty(t, info.TopSignals)
	assert.NotEmpty(t, info.Explanation)
}

func TestFilterMatch_PartialMatchRatio(t *testing.T) {
	p := contactProfile(mediaDirector())
	dims := map[string][]string{
		"seniority":  {"DIRECTOR"},
		"department": {"PROGRAMMATIC"},
	}

	matched, requested := filterMatch(p, dims)
	assert.Equal(t, 1, matched)
	assert.Equal(t, 2, requested)
}

func TestRecencyScore_Tiers(t *testing.T) {
	engine := testEngine(t)
	now := engine.now()

	tests := []struct {
		daysAgo  int
		expected float64
	}{
		{3, 100},
		{20, 80},
		{60, 60},
		{120, 40},
		{300, 20},
		{400, 0},
	}
	for _, tt := range tests {
		got := engine.recencyScore(now.AddDate(0, 0, -tt.daysAgo))
		assert.Equal(t, tt.expected, got, "days ago %d", tt.daysAgo)
	}
	assert.Equal(t, 0.0, engine.recencyScore(time.Time{}))
}

func TestSeniorityScore_AllLevelsScored(t *testing.T) {
	levels := []string{
		models.SeniorityCLevel,
		models.SeniorityFounderOwner,
		models.SeniorityEVP,
		models.SenioritySVP,
		models.SeniorityVP,
		models.SenioritySeniorDirector,
		models.SeniorityDirector,
		models.SenioritySeniorManager,
		models.SeniorityManager,
		models.SenioritySeniorSpecialist,
		models.SenioritySpecialist,
		models.SeniorityAssociate,
		models.SeniorityCoordinator,
		models.SeniorityIntern,
	}

	previous := 101.0
	for _, level := range levels {
		score := seniorityScore(level)
		assert.Greater(t, score, 0.0, "seniority %s", level)
		assert.LessOrEqual(t, score, previous, "seniority %s out of rank order", level)
		previous = score
	}
	assert.Equal(t, 0.0, seniorityScore("UNKNOWN"))
}

func TestCombineSignals_WeightedAverageOverPresent(t *testing.T) {
	signals := []RankingSignal{
		{Name: "a", Weight: 0.25, Score: 80},
		{Name: "b", Weight: 0.25, Score: 40},
	}
	assert.Equal(t, 60.0, combineSignals(signals))
	assert.Equal(t, 0.0, combineSignals(nil))
}
