package search

// QuickFilter is a named preset partial search exposed as a one-click
// shortcut. Applying one overwrites same-named fields already present on
// the request, so a preset always behaves the same regardless of what the
// client sent alongside it.
type QuickFilter struct {
	ID          string
	Label       string
	Description string
	Icon        string
	Filters     SearchRequest
}

// Apply merges the preset's filter fragment into req, preset fields
// winning (overwrite-merge, last writer wins).
func (qf QuickFilter) Apply(req SearchRequest) SearchRequest {
	f := qf.Filters
	if len(f.Seniority) > 0 {
		req.Seniority = normalizeSet(f.Seniority)
	}
	if len(f.Department) > 0 {
		req.Department = normalizeSet(f.Department)
	}
	if len(f.CompanyType) > 0 {
		req.CompanyType = normalizeSet(f.CompanyType)
	}
	if len(f.Industry) > 0 {
		req.Industry = normalizeSet(f.Industry)
	}
	if len(f.City) > 0 {
		req.City = normalizeSet(f.City)
	}
	if f.IsDecisionMaker {
		req.IsDecisionMaker = true
	}
	return req
}

// Predefined quick filters for media sellers.
var quickFilters = []QuickFilter{
	{
		ID:          "agency_ceos",
		Label:       "Agency CEOs",
		Description: "CEOs and founders at media agencies",
		Icon:        "crown",
		Filters: SearchRequest{
			Seniority:   []string{"C_LEVEL"},
			CompanyType: []string{"INDEPENDENT_AGENCY", "HOLDING_COMPANY_AGENCY", "MEDIA_HOLDING_COMPANY"},
			Department:  []string{"LEADERSHIP"},
		},
	},
	{
		ID:          "media_directors",
		Label:       "Media Directors",
		Description: "Media planning and buying directors",
		Icon:        "target",
		Filters: SearchRequest{
			Department: []string{"MEDIA_PLANNING", "MEDIA_BUYING"},
			Seniority:  []string{"DIRECTOR", "SENIOR_DIRECTOR"},
		},
	},
	{
		ID:          "brand_cmos",
		Label:       "Brand CMOs",
		Description: "Chief Marketing Officers at brand advertisers",
		Icon:        "rocket",
		Filters: SearchRequest{
			Department:  []string{"LEADERSHIP"},
			Seniority:   []string{"C_LEVEL"},
			CompanyType: []string{"NATIONAL_ADVERTISER", "LOCAL_ADVERTISER"},
		},
	},
	{
		ID:          "programmatic_buyers",
		Label:       "Programmatic Buyers",
		Description: "Programmatic advertising specialists",
		Icon:        "robot",
		Filters: SearchRequest{
			Department: []string{"PROGRAMMATIC", "MEDIA_BUYING"},
			Seniority:  []string{"SPECIALIST", "SENIOR_SPECIALIST", "MANAGER", "SENIOR_MANAGER"},
		},
	},
	{
		ID:          "nyc_media_pros",
		Label:       "NYC Media Pros",
		Description: "Media professionals in New York City",
		Icon:        "city",
		Filters: SearchRequest{
			City:       []string{"New York"},
			Department: []string{"MEDIA_PLANNING", "MEDIA_BUYING", "PROGRAMMATIC", "DIGITAL_MARKETING"},
		},
	},
	{
		ID:          "decision_makers",
		Label:       "Decision Makers",
		Description: "Contacts marked as decision makers",
		Icon:        "briefcase",
		Filters: SearchRequest{
			IsDecisionMaker: true,
			Seniority:       []string{"DIRECTOR", "SENIOR_DIRECTOR", "VP", "SVP", "C_LEVEL"},
		},
	},
}

// QuickFilters returns all presets in display order.
func QuickFilters() []QuickFilter {
	out := make([]QuickFilter, len(quickFilters))
	copy(out, quickFilters)
	return out
}

// QuickFilterByID resolves a preset by id.
func QuickFilterByID(id string) (QuickFilter, bool) {
	for _, qf := range quickFilters {
		if qf.ID == id {
			return qf, true
		}
	}
	return QuickFilter{}, false
}
