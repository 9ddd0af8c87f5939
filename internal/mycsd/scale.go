package mycsd

import (
	"strings"

	"github.com/Spok95/mycsd-points/internal/models"
)

const (
	PointsInternational = 8
	PointsNational      = 4
	PointsCampus        = 2
)

// Маркеры проверяются по порядку: международный уровень всегда важнее университетского.
var (
	internationalMarkers = []string{"international", "antarabangsa"}
	nationalMarkers      = []string{"university", "universiti", "state", "negeri"}
)

// PointsForLevel maps a free-form participation level label to its MyCSD point value.
func PointsForLevel(level string) int {
	l := strings.ToLower(level)
	if containsAny(l, internationalMarkers) {
		return PointsInternational
	}
	if containsAny(l, nationalMarkers) {
		return PointsNational
	}
	return PointsCampus
}

// Scale is the scoring function applied at approval time. Ledger entries keep
// the value computed here and are never recomputed.
var Scale = PointsForLevel

// CanonicalLevel returns the reporting bucket for a level label.
func CanonicalLevel(level string) models.Level {
	switch PointsForLevel(level) {
	case PointsInternational:
		return models.LevelInternational
	case PointsNational:
		return models.LevelNational
	default:
		return models.LevelCampus
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
