package mycsd

import (
	"strings"

	"github.com/Spok95/mycsd-points/internal/models"
)

// Значения по умолчанию для событий без явных метаданных MyCSD.
const (
	FallbackCategory = models.CategoryInnovation
	FallbackLevel    = "kampus"
)

func EffectiveCategory(c *models.Category) models.Category {
	if c == nil {
		return FallbackCategory
	}
	if parsed, ok := models.ParseCategory(string(*c)); ok {
		return parsed
	}
	return FallbackCategory
}

func EffectiveLevel(level string) string {
	if strings.TrimSpace(level) == "" {
		return FallbackLevel
	}
	return level
}

// bucketCategory keeps aggregation inside the five fixed buckets.
func bucketCategory(c models.Category) models.Category {
	return EffectiveCategory(&c)
}

func bucketLevel(l models.Level) models.Level {
	for _, known := range models.Levels {
		if l == known {
			return l
		}
	}
	return CanonicalLevel(EffectiveLevel(string(l)))
}
