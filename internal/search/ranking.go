package search

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mediadeck/crm/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// NeutralBaseline is the text-match score used when no query is active and
// the relevance assigned to rows that cannot be scored at all.
const NeutralBaseline = 50.0

// RankingSignal is one named, scored factor behind a result's relevance.
type RankingSignal struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// RankedResult wraps an entity row with its computed scores. The wrapped
// row is referenced, never copied back to the store.
type RankedResult[T any] struct {
	Data              T
	RelevanceScore    float64
	PersonalizedScore *float64
	Explanation       string
	Signals           []RankingSignal
}

// EffectiveScore is the sort key: personalized when present, relevance
// otherwise.
func (r RankedResult[T]) EffectiveScore() float64 {
	if r.PersonalizedScore != nil {
		return *r.PersonalizedScore
	}
	return r.RelevanceScore
}

// RankingInfo converts the scores into the API annotation with the top
// three signal names.
func (r RankedResult[T]) RankingInfo() *models.RankingInfo {
	top := make([]string, 0, 3)
	for i, s := range r.Signals {
		if i == 3 {
			break
		}
		top = append(top, s.Name)
	}
	return &models.RankingInfo{
		RelevanceScore:    r.RelevanceScore,
		PersonalizedScore: r.PersonalizedScore,
		Explanation:       r.Explanation,
		TopSignals:        top,
	}
}

// Location is a user's known city/state, supplied via request headers.
type Location struct {
	City  string `json:"city"`
	State string `json:"state"`
}

// UserPreferences holds affinity signals derived from a user's recent
// search history.
type UserPreferences struct {
	Industries   []string
	Locations    []string
	CompanyTypes []string
	Seniorities  []string
}

// UserContext carries the optional personalization inputs. A nil context
// disables the personalization adjustment entirely.
type UserContext struct {
	UserID      string
	Location    *Location
	Preferences *UserPreferences
}

func (u *UserContext) active() bool {
	return u != nil && (u.Location != nil || u.Preferences != nil)
}

// RankingConfig holds the stable signal weights. The base relevance score
// is the weighted average of whichever signals are present for a row, so
// adding a max-score bonus signal (verification, decision maker) can only
// raise the composite.
type RankingConfig struct {
	TextMatchWeight        float64
	FilterMatchWeight      float64
	VerificationBonus      float64
	DataQualityBonus       float64
	DecisionMakerBonus     float64
	RecencyBonus           float64
	SeniorityBonus         float64
	CompanyScaleBonus      float64
	LocationProximityBonus float64
	UserPreferenceBonus    float64
}

func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		TextMatchWeight:        0.25,
		FilterMatchWeight:      0.20,
		VerificationBonus:      0.15,
		DataQualityBonus:       0.12,
		DecisionMakerBonus:     0.10,
		RecencyBonus:           0.08,
		SeniorityBonus:         0.08,
		CompanyScaleBonus:      0.07,
		LocationProximityBonus: 0.08,
		UserPreferenceBonus:    0.12,
	}
}

// Engine scores, sorts and annotates search results. Ranking is
// synchronous and in-memory; every input the engine needs is passed in, so
// two calls with the same inputs produce identical output.
type Engine struct {
	config RankingConfig
	logger *logrus.Logger
	now    func() time.Time
}

func NewEngine(config RankingConfig, logger *logrus.Logger) *Engine {
	return &Engine{
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Config returns a copy of the active weights.
func (e *Engine) Config() RankingConfig {
	return e.config
}

// RankContacts scores and orders contact rows, descending by effective
// score. Equal scores keep their input order.
func (e *Engine) RankContacts(contacts []models.Contact, req SearchRequest, user *UserContext) []RankedResult[models.Contact] {
	started := e.now()
	dims := req.FilterDimensions()

	ranked := make([]RankedResult[models.Contact], 0, len(contacts))
	for _, c := range contacts {
		ranked = append(ranked, scoreRow(e, c, contactProfile(c), req, dims, user))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EffectiveScore() > ranked[j].EffectiveScore()
	})

	e.logger.WithFields(logrus.Fields{
		"results":      len(ranked),
		"query":        req.Query,
		"entity_type":  "contact",
		"ranking_time": time.Since(started).Milliseconds(),
	}).Debug("Ranked contact results")

	return ranked
}

// RankCompanies scores and orders company rows, descending by effective
// score. Equal scores keep their input order.
func (e *Engine) RankCompanies(companies []models.Company, req SearchRequest, user *UserContext) []RankedResult[models.Company] {
	started := e.now()
	dims := req.FilterDimensions()

	ranked := make([]RankedResult[models.Company], 0, len(companies))
	for _, co := range companies {
		ranked = append(ranked, scoreRow(e, co, companyProfile(co), req, dims, user))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EffectiveScore() > ranked[j].EffectiveScore()
	})

	e.logger.WithFields(logrus.Fields{
		"results":      len(ranked),
		"query":        req.Query,
		"entity_type":  "company",
		"ranking_time": time.Since(started).Milliseconds(),
	}).Debug("Ranked company results")

	return ranked
}

// profile is the entity-type-neutral view a row is scored through.
type profile struct {
	contact bool

	name        string
	title       string
	description string
	companyName string
	email       string

	verified      bool
	decisionMaker bool

	seniority   string
	department  string
	companyType string
	industry    string
	city        string
	state       string

	employeeRange string
	revenueRange  string

	updatedAt time.Time

	filledFields int
	totalFields  int
	bonusFields  float64
}

func contactProfile(c models.Contact) profile {
	p := profile{
		contact:       true,
		name:          strings.ToLower(strings.TrimSpace(c.FullName)),
		title:         strings.ToLower(c.Title),
		email:         strings.ToLower(c.Email),
		verified:      c.Verified,
		decisionMaker: c.IsDecisionMaker,
		seniority:     c.Seniority,
		department:    c.Department,
		updatedAt:     c.UpdatedAt,
	}
	if p.name == "" {
		p.name = strings.ToLower(strings.TrimSpace(c.FirstName + " " + c.LastName))
	}
	if c.Company != nil {
		p.companyName = strings.ToLower(c.Company.Name)
		p.companyType = c.Company.CompanyType
		p.industry = c.Company.Industry
		p.city = c.Company.City
		p.state = c.Company.State
		p.employeeRange = c.Company.EmployeeCount
		p.revenueRange = c.Company.RevenueRange
	}

	fields := []string{c.FirstName, c.LastName, c.Title, c.Email, c.Phone, c.Department, c.Seniority, c.LinkedinURL}
	p.totalFields = len(fields)
	for _, f := range fields {
		if f != "" {
			p.filledFields++
		}
	}
	if c.Email != "" {
		p.bonusFields += 15
	}
	if c.LinkedinURL != "" {
		p.bonusFields += 10
	}
	if c.Phone != "" {
		p.bonusFields += 5
	}
	return p
}

func companyProfile(co models.Company) profile {
	p := profile{
		name:          strings.ToLower(strings.TrimSpace(co.Name)),
		description:   strings.ToLower(co.Description),
		verified:      co.Verified,
		companyType:   co.CompanyType,
		industry:      co.Industry,
		city:          co.City,
		state:         co.State,
		employeeRange: co.EmployeeCount,
		revenueRange:  co.RevenueRange,
		updatedAt:     co.UpdatedAt,
	}

	fields := []string{co.Name, co.Description, co.Website, co.Industry, co.CompanyType, co.City, co.State, co.EmployeeCount, co.RevenueRange}
	p.totalFields = len(fields) + 1
	for _, f := range fields {
		if f != "" {
			p.filledFields++
		}
	}
	if co.FoundedYear > 0 {
		p.filledFields++
	}
	if len(co.Description) > 100 {
		p.bonusFields += 10
	}
	if co.Website != "" {
		p.bonusFields += 10
	}
	if co.LogoURL != "" {
		p.bonusFields += 5
	}
	return p
}

// scoreRow computes every signal for a single row. A row that cannot be
// scored falls back to the neutral baseline; one bad row never aborts the
// batch.
func scoreRow[T any](e *Engine, data T, p profile, req SearchRequest, dims map[string][]string, user *UserContext) (result RankedResult[T]) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("panic", fmt.Sprint(r)).Warn("Row scoring failed, applying neutral baseline")
			result = RankedResult[T]{
				Data:           data,
				RelevanceScore: NeutralBaseline,
				Explanation:    "Basic relevance match",
			}
		}
	}()

	signals := e.baseSignals(p, req, dims)
	relevance := round2(combineSignals(signals))

	result = RankedResult[T]{
		Data:           data,
		RelevanceScore: relevance,
	}

	if user.active() {
		personal := e.personalSignals(p, user)
		if len(personal) > 0 {
			all := append(append([]RankingSignal{}, signals...), personal...)
			score := round2(combineSignals(all))
			result.PersonalizedScore = &score
			signals = all
		}
	}

	sortSignals(signals)
	result.Signals = signals
	result.Explanation = explain(signals, result.PersonalizedScore != nil && user != nil && user.Preferences != nil)
	return result
}

func (e *Engine) baseSignals(p profile, req SearchRequest, dims map[string][]string) []RankingSignal {
	signals := []RankingSignal{}

	// Text match is always present; without an active query it contributes
	// the neutral baseline.
	textScore := NeutralBaseline
	reason := "No text query supplied"
	if req.HasQuery() {
		textScore = textMatchScore(p, strings.ToLower(req.Query))
		reason = fmt.Sprintf("Query %q matches profile data", req.Query)
	}
	signals = append(signals, RankingSignal{
		Name:   "text_match",
		Weight: e.config.TextMatchWeight,
		Score:  clamp(textScore),
		Reason: reason,
	})

	if len(dims) > 0 {
		matched, requested := filterMatch(p, dims)
		signals = append(signals, RankingSignal{
			Name:   "filter_match",
			Weight: e.config.FilterMatchWeight,
			Score:  clamp(float64(matched) / float64(requested) * 100),
			Reason: fmt.Sprintf("Matches %d of %d requested filter dimensions", matched, requested),
		})
	}

	if p.verified {
		signals = append(signals, RankingSignal{
			Name:   "verification",
			Weight: e.config.VerificationBonus,
			Score:  100,
			Reason: "Verified profile with authentic data",
		})
	}

	if p.contact && p.decisionMaker {
		signals = append(signals, RankingSignal{
			Name:   "decision_maker",
			Weight: e.config.DecisionMakerBonus,
			Score:  100,
			Reason: "Flagged as a decision maker",
		})
	}

	if p.totalFields > 0 {
		completeness := float64(p.filledFields) / float64(p.totalFields) * 80
		signals = append(signals, RankingSignal{
			Name:   "data_quality",
			Weight: e.config.DataQualityBonus,
			Score:  clamp(completeness + p.bonusFields),
			Reason: "Profile completeness and data richness",
		})
	}

	if recency := e.recencyScore(p.updatedAt); recency > 0 {
		signals = append(signals, RankingSignal{
			Name:   "recency",
			Weight: e.config.RecencyBonus,
			Score:  recency,
			Reason: "Recently updated profile information",
		})
	}

	if p.contact && p.seniority != "" {
		signals = append(signals, RankingSignal{
			Name:   "seniority",
			Weight: e.config.SeniorityBonus,
			Score:  seniorityScore(p.seniority),
			Reason: fmt.Sprintf("%s level position", strings.ReplaceAll(p.seniority, "_", " ")),
		})
	}

	if scale := companyScaleScore(p.employeeRange, p.revenueRange); scale > 0 {
		signals = append(signals, RankingSignal{
			Name:   "company_scale",
			Weight: e.config.CompanyScaleBonus,
			Score:  scale,
			Reason: "Company size and market presence",
		})
	}

	return signals
}

func (e *Engine) personalSignals(p profile, user *UserContext) []RankingSignal {
	signals := []RankingSignal{}

	if user.Location != nil {
		if score := locationProximity(p, *user.Location); score > 0 {
			reason := "Located in your state"
			if score == 100 {
				reason = "Located in your city"
			}
			signals = append(signals, RankingSignal{
				Name:   "location_proximity",
				Weight: e.config.LocationProximityBonus,
				Score:  score,
				Reason: reason,
			})
		}
	}

	if user.Preferences != nil {
		if score := preferenceScore(p, *user.Preferences); score > 0 {
			signals = append(signals, RankingSignal{
				Name:   "user_preference",
				Weight: e.config.UserPreferenceBonus,
				Score:  score,
				Reason: "Matches your search patterns and preferences",
			})
		}
	}

	return signals
}

func textMatchScore(p profile, query string) float64 {
	var score float64

	if p.contact {
		if p.name == query {
			score += 100
		} else if strings.Contains(p.name, query) {
			score += 70
		}
		if p.title != "" && strings.Contains(p.title, query) {
			score += 40
		}
		if p.companyName != "" && strings.Contains(p.companyName, query) {
			score += 30
		}
		if p.email != "" && strings.Contains(p.email, query) {
			score += 20
		}
	} else {
		if p.name == query {
			score += 100
		} else if strings.HasPrefix(p.name, query) {
			score += 80
		} else if strings.Contains(p.name, query) {
			score += 60
		}
		if p.description != "" && strings.Contains(p.description, query) {
			score += 20
		}

		queryWords := strings.Fields(query)
		nameWords := strings.Fields(p.name)
		if len(queryWords) > 0 && len(nameWords) > 0 {
			matching := 0
			for _, qw := range queryWords {
				for _, nw := range nameWords {
					if strings.Contains(nw, qw) {
						matching++
						break
					}
				}
			}
			score += float64(matching) / float64(len(queryWords)) * 40
		}
	}

	return math.Min(score, 100)
}

func filterMatch(p profile, dims map[string][]string) (matched, requested int) {
	for dim, values := range dims {
		requested++
		var actual string
		switch dim {
		case "seniority":
			actual = p.seniority
		case "department":
			actual = p.department
		case "companyType":
			actual = p.companyType
		case "industry":
			actual = p.industry
		case "location":
			actual = p.city
		case "employeeSize":
			actual = p.employeeRange
		}
		for _, v := range values {
			if actual != "" && strings.EqualFold(actual, v) {
				matched++
				break
			}
		}
	}
	return matched, requested
}

func (e *Engine) recencyScore(updatedAt time.Time) float64 {
	if updatedAt.IsZero() {
		return 0
	}
	days := int(e.now().Sub(updatedAt).Hours() / 24)
	switch {
	case days <= 7:
		return 100
	case days <= 30:
		return 80
	case days <= 90:
		return 60
	case days <= 180:
		return 40
	case days <= 365:
		return 20
	default:
		return 0
	}
}

var seniorityScores = map[string]float64{
	"C_LEVEL":           100,
	"FOUNDER_OWNER":     95,
	"EVP":               90,
	"SVP":               85,
	"VP":                80,
	"SENIOR_DIRECTOR":   75,
	"DIRECTOR":          70,
	"SENIOR_MANAGER":    60,
	"MANAGER":           50,
	"SENIOR_SPECIALIST": 40,
	"SPECIALIST":        30,
	"ASSOCIATE":         25,
	"COORDINATOR":       20,
	"INTERN":            10,
}

func seniorityScore(seniority string) float64 {
	return seniorityScores[seniority]
}

var employeeScaleScores = map[string]float64{
	"MEGA_5000_PLUS":       50,
	"ENTERPRISE_1001_5000": 45,
	"LARGE_201_1000":       40,
	"MEDIUM_51_200":        30,
	"SMALL_11_50":          20,
	"STARTUP_1_10":         15,
}

var revenueScaleScores = map[string]float64{
	"OVER_1B":         50,
	"RANGE_500M_1B":   45,
	"RANGE_100M_500M": 40,
	"RANGE_25M_100M":  30,
	"RANGE_5M_25M":    20,
	"RANGE_1M_5M":     15,
	"UNDER_1M":        10,
}

func companyScaleScore(employeeRange, revenueRange string) float64 {
	score := employeeScaleScores[employeeRange] + revenueScaleScores[revenueRange]
	return math.Min(score, 100)
}

func locationProximity(p profile, loc Location) float64 {
	if p.city == "" || p.state == "" {
		return 0
	}
	if strings.EqualFold(p.city, loc.City) && strings.EqualFold(p.state, loc.State) {
		return 100
	}
	if strings.EqualFold(p.state, loc.State) {
		return 50
	}
	return 0
}

func preferenceScore(p profile, prefs UserPreferences) float64 {
	var score float64

	if p.industry != "" && containsFold(prefs.Industries, p.industry) {
		score += 30
	}
	if p.companyType != "" && containsFold(prefs.CompanyTypes, p.companyType) {
		score += 20
	}
	if p.city != "" && p.state != "" && containsFold(prefs.Locations, p.city+", "+p.state) {
		score += 25
	}
	if p.contact && p.seniority != "" && containsFold(prefs.Seniorities, p.seniority) {
		score += 25
	}

	return math.Min(score, 100)
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// combineSignals folds the signals into a weighted average on the 0-100
// scale. The average runs over present signals only.
func combineSignals(signals []RankingSignal) float64 {
	var totalScore, totalWeight float64
	for _, s := range signals {
		totalScore += s.Score * s.Weight
		totalWeight += s.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return clamp(totalScore / totalWeight)
}

// sortSignals orders signals by descending weighted contribution. Stable so
// that equal contributions keep their computation order.
func sortSignals(signals []RankingSignal) {
	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Score*signals[i].Weight > signals[j].Score*signals[j].Weight
	})
}

// explain builds the deterministic human-readable ranking summary from the
// strongest signals.
func explain(signals []RankingSignal, personalized bool) string {
	parts := make([]string, 0, 3)
	for _, s := range signals {
		if s.Score <= 50 {
			continue
		}
		parts = append(parts, s.Reason)
		if len(parts) == 3 {
			break
		}
	}

	if len(parts) == 0 {
		return "Basic relevance match"
	}

	explanation := strings.Join(parts, "; ")
	if personalized {
		explanation += "; Personalized based on your search patterns"
	}
	return explanation
}

func clamp(v float64) float64 {
	return math.Min(math.Max(v, 0), 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
