package category

import "strings"

// FallbackCodes is the broad category filter used when neither a preset
// nor a keyword group matches. The upstream call must never run with an
// empty category filter, so resolution always falls through to this list.
const FallbackCodes = "catering,commercial,accommodation,tourism,public_transport"

// Resolver maps a user-facing category label or a free-text query to
// Geoapify category codes. It is a pure lookup over an explicitly
// provided preset table: no network access, no shared state.
type Resolver struct {
	presets map[string]string // presets maps lowercase labels to provider category codes.
	groups  []keywordGroup    // groups are checked in order against the query text.
}

// keywordGroup ties a set of query keywords to a preset label. A query
// matches the group if it contains any of the keywords as a substring.
type keywordGroup struct {
	preset   string
	keywords []string
}

// DefaultPresets returns the built-in preset table. The codes are tuned
// for dense urban areas and include the long-tail accommodation and
// transit subtypes Geoapify splits out.
func DefaultPresets() map[string]string {
	return map[string]string{
		"restaurants": "catering.restaurant",
		"cafes":       "catering.cafe",
		"food":        "catering.cafe,catering.restaurant,catering.fast_food",

		"hotels": "accommodation.hotel," +
			"accommodation.hostel," +
			"accommodation.guest_house," +
			"accommodation.motel," +
			"accommodation.apartment",

		"bus":     "public_transport.bus",
		"metro":   "public_transport.subway,railway.subway,railway.light_rail",
		"train":   "public_transport.train,railway.train",
		"transit": "public_transport",

		"groceries": "commercial.supermarket," +
			"commercial.grocery," +
			"commercial.marketplace," +
			"commercial.food",

		"hospital": "healthcare.hospital," +
			"healthcare.hospital.emergency," +
			"healthcare.clinic",
		"pharmacy": "healthcare.pharmacy",

		"mall":    "commercial.shopping_mall,commercial.department_store",
		"atm":     "service.atm",
		"gas":     "service.fuel",
		"parking": "parking",
		"school":  "education.school",
		"college": "education.university,education.college",
		"police":  "service.police",
		"park":    "leisure.park",
		"cinema":  "entertainment.cinema",
	}
}

// NewResolver creates a Resolver over the given preset table. Pass
// DefaultPresets() unless a test needs a fixture table.
//
// The keyword groups are ordered from specific to broad: "metro" must be
// checked before the generic transit terms, and cafe terms before the
// general restaurant terms, otherwise narrow intents get swallowed by
// the broader group.
func NewResolver(presets map[string]string) *Resolver {
	return &Resolver{
		presets: presets,
		groups: []keywordGroup{
			{preset: "hotels", keywords: []string{"hotel", "stay", "room", "lodging", "hostel", "pg"}},
			{preset: "metro", keywords: []string{"metro"}},
			{preset: "train", keywords: []string{"train", "railway"}},
			{preset: "bus", keywords: []string{"bus"}},
			{preset: "cafes", keywords: []string{"cafe", "coffee"}},
			{preset: "food", keywords: []string{"restaurant", "food", "eat", "dinner", "lunch"}},
			{preset: "hospital", keywords: []string{"hospital"}},
			{preset: "pharmacy", keywords: []string{"pharmacy", "medical", "chemist"}},
			{preset: "groceries", keywords: []string{"grocery", "supermarket", "mart", "hypermarket"}},
		},
	}
}

// Resolve returns the provider category codes for the given query text
// and optional category label.
//
// An explicit category that matches a preset (case-insensitive) wins
// outright. Otherwise the query text is scanned against the keyword
// groups in order and the first match decides. When nothing matches,
// FallbackCodes is returned; the result is never empty.
func (r *Resolver) Resolve(query, category string) string {
	if category != "" {
		if codes, ok := r.presets[strings.ToLower(category)]; ok {
			return codes
		}
	}

	q := strings.ToLower(query)
	for _, group := range r.groups {
		for _, kw := range group.keywords {
			if strings.Contains(q, kw) {
				if codes, ok := r.presets[group.preset]; ok {
					return codes
				}
				return FallbackCodes
			}
		}
	}

	return FallbackCodes
}
