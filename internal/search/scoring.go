package search

import (
	"fmt"
	"math"
	"time"

	"github.com/mediadeck/crm/backend/internal/models"
)

// Lead scoring rates a single contact's sales potential on a 0-100 scale.
// It is a separate feature from search ranking: ranking orders a result
// set, scoring explains one contact in depth.

// Overall score weights. They must sum to 1.
const (
	influenceWeight       = 0.25
	accessibilityWeight   = 0.20
	budgetPotentialWeight = 0.25
	urgencyWeight         = 0.15
	responseRateWeight    = 0.15
)

// Connection strength classifications.
const (
	ConnectionDirect = "direct"
	ConnectionWarm   = "warm"
	ConnectionCold   = "cold"
)

// Media spend trends.
const (
	TrendIncreasing = "increasing"
	TrendStable     = "stable"
	TrendDecreasing = "decreasing"
)

type EngagementMetrics struct {
	EmailOpens    int
	EmailClicks   int
	LinkedinViews int
	WebsiteVisits int
}

type MediaSpend struct {
	Current   float64
	Potential float64
	Trend     string
	Channels  []string
}

// ContactIntelligence bundles the relationship and engagement data a
// contact is scored on, gathered outside the directory row itself.
type ContactIntelligence struct {
	ConnectionStrength     string
	MutualConnections      int
	LastActivity           time.Time
	TenureMonths           int
	Budget                 float64
	Engagement             EngagementMetrics
	MediaSpend             MediaSpend
	RecentNews             []string
	CompetitorInteractions int
}

// ContactScore is the composite lead score with its five components, each
// on a 0-100 scale.
type ContactScore struct {
	Overall         int `json:"overall"`
	Influence       int `json:"influence"`
	Accessibility   int `json:"accessibility"`
	BudgetPotential int `json:"budgetPotential"`
	Urgency         int `json:"urgency"`
	ResponseRate    int `json:"responseRate"`
}

// ScoringFactor is one named contributor to the overall score.
type ScoringFactor struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Weight      float64 `json:"weight"`
	Impact      string  `json:"impact"` // positive, negative or neutral
	Explanation string  `json:"explanation"`
}

// Recommendation is the suggested follow-up derived from the score.
type Recommendation struct {
	Action  string `json:"action"`
	Message string `json:"message"`
	Urgency string `json:"urgency"`
}

// ScoreContact computes the lead score for one contact. The now argument
// anchors recency checks so callers and tests control the clock.
func ScoreContact(contact models.Contact, intel ContactIntelligence, now time.Time) ContactScore {
	influence := influenceScore(contact, intel)
	accessibility := accessibilityScore(intel, now)
	budget := budgetPotentialScore(intel)
	urgency := urgencyScore(contact, intel)
	response := responseRateScore(intel)

	overall := math.Round(
		influence*influenceWeight +
			accessibility*accessibilityWeight +
			budget*budgetPotentialWeight +
			urgency*urgencyWeight +
			response*responseRateWeight)

	return ContactScore{
		Overall:         int(overall),
		Influence:       int(math.Round(influence)),
		Accessibility:   int(math.Round(accessibility)),
		BudgetPotential: int(math.Round(budget)),
		Urgency:         int(math.Round(urgency)),
		ResponseRate:    int(math.Round(response)),
	}
}

func influenceScore(contact models.Contact, intel ContactIntelligence) float64 {
	var seniority float64
	switch contact.Seniority {
	case models.SeniorityCLevel, models.SeniorityFounderOwner:
		seniority = 100
	case models.SeniorityEVP, models.SenioritySVP, models.SeniorityVP:
		seniority = 80
	case models.SenioritySeniorDirector, models.SeniorityDirector:
		seniority = 60
	case models.SenioritySeniorManager, models.SeniorityManager:
		seniority = 40
	default:
		seniority = 20
	}

	var companySize float64 = 10
	if contact.Company != nil {
		switch contact.Company.EmployeeCount {
		case models.EmployeeRangeMega, models.EmployeeRangeEnterprise, models.EmployeeRangeLarge:
			companySize = 30
		case models.EmployeeRangeMedium:
			companySize = 20
		}
	}

	budgetInfluence := math.Min(intel.Budget/1_000_000*20, 30)
	return math.Min(seniority+companySize+budgetInfluence, 100)
}

func accessibilityScore(intel ContactIntelligence, now time.Time) float64 {
	var connection float64
	switch intel.ConnectionStrength {
	case ConnectionDirect:
		connection = 40
	case ConnectionWarm:
		connection = 25
	case ConnectionCold:
		connection = 10
	}

	mutual := math.Min(float64(intel.MutualConnections)*5, 30)

	var activity float64
	if intel.Engagement.EmailOpens > 5 {
		activity = 20
	} else if intel.Engagement.EmailOpens > 0 {
		activity = 10
	}

	var recent float64
	if !intel.LastActivity.IsZero() && now.Sub(intel.LastActivity) < 7*24*time.Hour {
		recent = 10
	}

	return math.Min(connection+mutual+activity+recent, 100)
}

func budgetPotentialScore(intel ContactIntelligence) float64 {
	current := math.Min(intel.MediaSpend.Current/100_000*10, 30)
	potential := math.Min(intel.MediaSpend.Potential/100_000*10, 40)

	var trend float64
	switch intel.MediaSpend.Trend {
	case TrendIncreasing:
		trend = 20
	case TrendStable:
		trend = 10
	}

	diversity := math.Min(float64(len(intel.MediaSpend.Channels))*3, 15)
	return math.Min(current+potential+trend+diversity, 100)
}

func urgencyScore(contact models.Contact, intel ContactIntelligence) float64 {
	var news float64
	if len(intel.RecentNews) > 0 {
		news = 30
	}

	var competitor float64
	if intel.CompetitorInteractions > 0 {
		competitor = 25
	}

	var tenure float64
	if intel.TenureMonths < 6 {
		tenure = 20
	} else if intel.TenureMonths < 12 {
		tenure = 10
	}

	var decisionMaker float64
	if contact.IsDecisionMaker {
		decisionMaker = 25
	}

	return math.Min(news+competitor+tenure+decisionMaker, 100)
}

func responseRateScore(intel ContactIntelligence) float64 {
	var email float64
	if intel.Engagement.EmailOpens > 0 {
		email = math.Min(float64(intel.Engagement.EmailClicks)/float64(intel.Engagement.EmailOpens)*100, 40)
	}

	var linkedin float64
	if intel.Engagement.LinkedinViews > 10 {
		linkedin = 20
	} else if intel.Engagement.LinkedinViews > 0 {
		linkedin = 10
	}

	var website float64
	if intel.Engagement.WebsiteVisits > 5 {
		website = 20
	} else if intel.Engagement.WebsiteVisits > 0 {
		website = 10
	}

	var connection float64
	switch intel.ConnectionStrength {
	case ConnectionDirect:
		connection = 20
	case ConnectionWarm:
		connection = 15
	}

	return math.Min(email+linkedin+website+connection, 100)
}

// ScoringFactors returns the ordered factor breakdown behind a contact's
// score, for display next to the composite.
func ScoringFactors(contact models.Contact, intel ContactIntelligence, now time.Time) []ScoringFactor {
	var seniorityValue float64
	switch contact.Seniority {
	case models.SeniorityCLevel, models.SeniorityFounderOwner:
		seniorityValue = 100
	case models.SeniorityEVP, models.SenioritySVP, models.SeniorityVP:
		seniorityValue = 80
	default:
		seniorityValue = 60
	}

	connectionValue := 30.0
	connectionImpact := "negative"
	switch intel.ConnectionStrength {
	case ConnectionDirect:
		connectionValue = 100
		connectionImpact = "positive"
	case ConnectionWarm:
		connectionValue = 60
		connectionImpact = "positive"
	}

	trendValue := 20.0
	trendImpact := "negative"
	switch intel.MediaSpend.Trend {
	case TrendIncreasing:
		trendValue = 80
		trendImpact = "positive"
	case TrendStable:
		trendValue = 50
		trendImpact = "positive"
	}

	activityValue := 40.0
	if !intel.LastActivity.IsZero() && now.Sub(intel.LastActivity) < 7*24*time.Hour {
		activityValue = 80
	}

	competitorValue := 30.0
	competitorImpact := "neutral"
	competitorExplanation := "No competitor activity"
	if intel.CompetitorInteractions > 0 {
		competitorValue = 90
		competitorImpact = "positive"
		competitorExplanation = "Currently evaluating competitors"
	}

	return []ScoringFactor{
		{
			Name:        "Seniority Level",
			Value:       seniorityValue,
			Weight:      25,
			Impact:      "positive",
			Explanation: fmt.Sprintf("%s position indicates decision-making authority", contact.Seniority),
		},
		{
			Name:        "Budget Authority",
			Value:       math.Min(intel.Budget/1_000_000*20, 100),
			Weight:      20,
			Impact:      "positive",
			Explanation: fmt.Sprintf("Controls $%.1fM budget", intel.Budget/1_000_000),
		},
		{
			Name:        "Connection Strength",
			Value:       connectionValue,
			Weight:      15,
			Impact:      connectionImpact,
			Explanation: fmt.Sprintf("%s connection with %d mutual connections", intel.ConnectionStrength, intel.MutualConnections),
		},
		{
			Name:        "Media Spend Trend",
			Value:       trendValue,
			Weight:      20,
			Impact:      trendImpact,
			Explanation: fmt.Sprintf("Media spend is %s (%d channels)", intel.MediaSpend.Trend, len(intel.MediaSpend.Channels)),
		},
		{
			Name:        "Recent Activity",
			Value:       activityValue,
			Weight:      10,
			Impact:      "positive",
			Explanation: fmt.Sprintf("Last activity: %s", intel.LastActivity.Format("2006-01-02")),
		},
		{
			Name:        "Competitor Interaction",
			Value:       competitorValue,
			Weight:      10,
			Impact:      competitorImpact,
			Explanation: competitorExplanation,
		},
	}
}

// Recommend maps a score to a follow-up recommendation.
func Recommend(score ContactScore) Recommendation {
	switch {
	case score.Overall >= 80:
		return Recommendation{
			Action:  "High Priority",
			Message: "Immediate outreach recommended. High conversion potential.",
			Urgency: "high",
		}
	case score.Overall >= 60:
		return Recommendation{
			Action:  "Medium Priority",
			Message: "Schedule follow-up within 3-5 days. Good potential.",
			Urgency: "medium",
		}
	case score.Overall >= 40:
		return Recommendation{
			Action:  "Low Priority",
			Message: "Add to nurture campaign. Monitor for changes.",
			Urgency: "low",
		}
	default:
		return Recommendation{
			Action:  "Nurture",
			Message: "Long-term prospect. Periodic check-ins only.",
			Urgency: "low",
		}
	}
}
