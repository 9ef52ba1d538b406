package importer

import (
	"regexp"
	"sort"
	"strings"

	"registry-web/internal/models"
)

// DefaultSuggestionLimit bounds resolver output when the caller does not ask
// for a specific count.
const DefaultSuggestionLimit = 5

// Confidence levels for the non-exact match rungs. Levenshtein matches score
// by similarity instead, so their confidence stays below these.
const (
	confidenceExact     = 100
	confidenceInitials  = 90
	confidenceAlias     = 85
	confidenceSubstring = 75
)

// "X.Surname" or "X Surname": one leading letter, a separator, then the
// surname.
var initialSurnamePattern = regexp.MustCompile(`^(\p{L})[.\s]+(\p{L}[\p{L}'-]*)$`)

// UserResolver resolves free-text person references against the active user
// set. It holds no mutable state, so one resolver is safe to share across
// concurrent jobs.
type UserResolver struct {
	users   []models.User
	aliases map[string]string // case-folded alias -> canonical full name
}

// nicknameAliases maps curated short first names to the formal name they
// stand for, so "Bill Jones" resolves to William Jones without a literal
// string match.
var nicknameAliases = map[string]string{
	"alex":  "alexander",
	"andy":  "andrew",
	"bill":  "william",
	"bob":   "robert",
	"chris": "christopher",
	"dan":   "daniel",
	"dave":  "david",
	"jim":   "james",
	"kate":  "katherine",
	"liz":   "elizabeth",
	"matt":  "matthew",
	"mike":  "michael",
	"nick":  "nicholas",
	"sam":   "samuel",
	"steve": "stephen",
	"tom":   "thomas",
	"tony":  "anthony",
}

func NewUserResolver(users []models.User) *UserResolver {
	return NewUserResolverWithAliases(users, nil)
}

// NewUserResolverWithAliases also installs tenant-curated full-string
// aliases (case-folded misspelling -> canonical full name).
func NewUserResolverWithAliases(users []models.User, aliases map[string]string) *UserResolver {
	merged := make(map[string]string, len(aliases))
	for k, v := range aliases {
		merged[strings.ToLower(k)] = v
	}

	active := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			active = append(active, u)
		}
	}

	return &UserResolver{users: active, aliases: merged}
}

// Resolve returns ranked identity suggestions for a free-text reference.
// Empty input yields an empty result; an exact name or email match
// short-circuits everything else.
func (r *UserResolver) Resolve(input string, limit int) []models.UserSuggestion {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	folded := strings.ToLower(input)

	for _, u := range r.users {
		if strings.EqualFold(u.Name, input) || strings.EqualFold(u.Email, input) {
			return []models.UserSuggestion{{
				UserID:      u.ID,
				DisplayName: u.Name,
				Confidence:  confidenceExact,
				MatchType:   "exact",
			}}
		}
	}

	// Best suggestion per user; a stronger rung replaces a weaker one.
	best := make(map[int]models.UserSuggestion)
	record := func(u models.User, confidence int, matchType string) {
		if existing, ok := best[u.ID]; ok && existing.Confidence >= confidence {
			return
		}
		best[u.ID] = models.UserSuggestion{
			UserID:      u.ID,
			DisplayName: u.Name,
			Confidence:  confidence,
			MatchType:   matchType,
		}
	}

	if m := initialSurnamePattern.FindStringSubmatch(input); m != nil {
		initial, surname := strings.ToLower(m[1]), strings.ToLower(m[2])
		for _, u := range r.users {
			first, last := splitName(u.Name)
			if first == "" || last == "" {
				continue
			}
			if strings.HasPrefix(strings.ToLower(first), initial) &&
				strings.ToLower(last) == surname {
				record(u, confidenceInitials, "initial_expansion")
			}
		}
	}

	if canonical, ok := r.aliases[folded]; ok {
		for _, u := range r.users {
			if strings.EqualFold(u.Name, canonical) {
				record(u, confidenceAlias, "alias")
			}
		}
	}

	// Nickname expansion: "Bill Jones" -> users named William Jones.
	if inFirst, inLast := splitName(folded); inLast != "" {
		if formal, ok := nicknameAliases[inFirst]; ok {
			for _, u := range r.users {
				first, last := splitName(u.Name)
				if strings.ToLower(last) == inLast &&
					strings.HasPrefix(strings.ToLower(first), formal) {
					record(u, confidenceAlias, "alias")
				}
			}
		}
	}

	if len(folded) >= 3 {
		for _, u := range r.users {
			name := strings.ToLower(u.Name)
			if strings.Contains(name, folded) || strings.Contains(folded, name) {
				record(u, confidenceSubstring, "substring")
			}
		}
	}

	for _, u := range r.users {
		name := strings.ToLower(u.Name)
		tolerance := len([]rune(name)) / 3
		if tolerance < 1 {
			tolerance = 1
		}
		if LevenshteinDistance(folded, name) <= tolerance {
			confidence := int(SimilarityPercent(folded, name))
			if confidence > confidenceSubstring {
				confidence = confidenceSubstring - 1
			}
			record(u, confidence, "levenshtein")
		}
	}

	suggestions := make([]models.UserSuggestion, 0, len(best))
	for _, s := range best {
		suggestions = append(suggestions, s)
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return suggestions[i].DisplayName < suggestions[j].DisplayName
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// ResolveWithOverrides consults a caller-supplied raw-value to user-id map
// before any matching.
func (r *UserResolver) ResolveWithOverrides(input string, overrides map[string]int, limit int) []models.UserSuggestion {
	if id, ok := overrides[input]; ok {
		for _, u := range r.users {
			if u.ID == id {
				return []models.UserSuggestion{{
					UserID:      u.ID,
					DisplayName: u.Name,
					Confidence:  confidenceExact,
					MatchType:   "exact",
				}}
			}
		}
		return []models.UserSuggestion{{UserID: id, Confidence: confidenceExact, MatchType: "exact"}}
	}
	return r.Resolve(input, limit)
}

// ResolveExact returns the single user whose name or email matches exactly,
// or nil. The orchestrator's foreign-key lookups use this path only.
func (r *UserResolver) ResolveExact(input string) *models.User {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	for i := range r.users {
		if strings.EqualFold(r.users[i].Name, input) || strings.EqualFold(r.users[i].Email, input) {
			return &r.users[i]
		}
	}
	return nil
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[len(parts)-1]
}
