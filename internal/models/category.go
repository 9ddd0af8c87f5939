package models

import "strings"

// Category is one of the five MyCSD thematic tracks.
type Category string

const (
	CategoryInnovation       Category = "REKA CIPTA DAN INOVASI"
	CategoryEntrepreneurship Category = "KEUSAHAWANAN"
	CategoryCulture          Category = "KEBUDAYAAN"
	CategorySports           Category = "SUKAN / REKREASI / SUKARELAWAN"
	CategoryLeadership       Category = "KEPIMPINAN"
)

var Categories = []Category{
	CategoryInnovation,
	CategoryEntrepreneurship,
	CategoryCulture,
	CategorySports,
	CategoryLeadership,
}

// english track names accepted as aliases
var categoryAliases = map[string]Category{
	"innovation":       CategoryInnovation,
	"entrepreneurship": CategoryEntrepreneurship,
	"culture":          CategoryCulture,
	"sports":           CategorySports,
	"recreation":       CategorySports,
	"volunteering":     CategorySports,
	"leadership":       CategoryLeadership,
}

func normalizeLabel(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "/", " / ")
	return strings.Join(strings.Fields(s), " ")
}

// ParseCategory matches a label against the closed set ignoring case and spacing.
func ParseCategory(s string) (Category, bool) {
	n := normalizeLabel(s)
	if n == "" {
		return "", false
	}
	for _, c := range Categories {
		if string(c) == n {
			return c, true
		}
	}
	if c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, true
	}
	return "", false
}

func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

func (c Category) String() string { return string(c) }
