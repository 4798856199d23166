package orcid

import "strings"

// Record is the subset of an ORCID v3.0 record that publist reads.
type Record struct {
	Identifier struct {
		Path string `json:"path"`
	} `json:"orcid-identifier"`
	Person     Person            `json:"person"`
	Activities ActivitiesSummary `json:"activities-summary"`

	Raw []byte `json:"-"`
}

// Person holds the researcher's name.
type Person struct {
	Name *struct {
		GivenNames *Value `json:"given-names"`
		FamilyName *Value `json:"family-name"`
	} `json:"name"`
}

// Value is ORCID's {"value": ...} wrapper.
type Value struct {
	Value string `json:"value"`
}

// ActivitiesSummary wraps the works section.
type ActivitiesSummary struct {
	Works struct {
		Group []WorkGroup `json:"group"`
	} `json:"works"`
}

// WorkGroup is one listed publication. Its summaries are alternative
// versions ordered by display index, the preferred one first.
type WorkGroup struct {
	WorkSummary []WorkSummary `json:"work-summary"`
}

// WorkSummary describes one version of a work.
type WorkSummary struct {
	Title *struct {
		Title *Value `json:"title"`
	} `json:"title"`
	Type        string `json:"type"`
	ExternalIDs struct {
		ExternalID []ExternalID `json:"external-id"`
	} `json:"external-ids"`
}

// ExternalID is a typed identifier attached to a work.
type ExternalID struct {
	Type  string `json:"external-id-type"`
	Value string `json:"external-id-value"`
}

// Name returns "Given Family" from the person section, or "".
func (r *Record) Name() string {
	if r == nil || r.Person.Name == nil {
		return ""
	}
	var parts []string
	if g := r.Person.Name.GivenNames; g != nil && strings.TrimSpace(g.Value) != "" {
		parts = append(parts, strings.TrimSpace(g.Value))
	}
	if f := r.Person.Name.FamilyName; f != nil && strings.TrimSpace(f.Value) != "" {
		parts = append(parts, strings.TrimSpace(f.Value))
	}
	return strings.Join(parts, " ")
}

// Groups returns the work groups of the record.
func (r *Record) Groups() []WorkGroup {
	if r == nil {
		return nil
	}
	return r.Activities.Works.Group
}

// Title returns the preferred summary's title, or "".
func (g WorkGroup) Title() string {
	if len(g.WorkSummary) == 0 {
		return ""
	}
	t := g.WorkSummary[0].Title
	if t == nil || t.Title == nil {
		return ""
	}
	return t.Title.Value
}

// ExtractDOI returns the value of the first external id of type "doi" on the
// group's preferred summary. ok is false for works without a DOI.
func ExtractDOI(g WorkGroup) (doi string, ok bool) {
	if len(g.WorkSummary) == 0 {
		return "", false
	}
	for _, id := range g.WorkSummary[0].ExternalIDs.ExternalID {
		if strings.EqualFold(strings.TrimSpace(id.Type), "doi") {
			v := strings.TrimSpace(id.Value)
			if v == "" {
				return "", false
			}
			return v, true
		}
	}
	return "", false
}

// ExtractDOIs applies ExtractDOI to every work group in order, skipping
// groups without a DOI.
func ExtractDOIs(r *Record) []string {
	var out []string
	for _, g := range r.Groups() {
		if d, ok := ExtractDOI(g); ok {
			out = append(out, d)
		}
	}
	return out
}
