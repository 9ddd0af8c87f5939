package mycsd

import (
	"errors"
	"testing"

	"github.com/Spok95/mycsd-points/internal/models"
)

func TestPointsForLevel(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{"Antarabangsa", 8},
		{"INTERNATIONAL", 8},
		{"Peringkat antarabangsa (online)", 8},
		{"Universiti", 4},
		{"Kebangsaan/Antara Universiti", 4},
		{"Kebangsaan / Antara University", 4},
		{"State", 4},
		{"Negeri", 4},
		{"Kampus", 2},
		{"kampus", 2},
		{"Persatuan / Kelab", 2},
		{"Fakulti", 2},
		{"", 2},
		{"   ", 2},
		// international always wins over the university marker
		{"International inter-university championship", 8},
		{"Antarabangsa / Universiti", 8},
		{"university of the state (international track)", 8},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := PointsForLevel(tt.level); got != tt.want {
				t.Fatalf("PointsForLevel(%q) = %d, want %d", tt.level, got, tt.want)
			}
		})
	}
}

func TestPointsForLevel_Ordering(t *testing.T) {
	intl := PointsForLevel("Antarabangsa")
	uni := PointsForLevel("Universiti")
	campus := PointsForLevel("Kampus")
	none := PointsForLevel("")
	if !(intl > uni && uni > campus && campus == none) {
		t.Fatalf("unexpected ordering: intl=%d uni=%d campus=%d none=%d", intl, uni, campus, none)
	}
	if intl != 8 || uni != 4 || campus != 2 {
		t.Fatalf("unexpected values: %d %d %d", intl, uni, campus)
	}
}

func TestPointsForLevel_ClosedRange(t *testing.T) {
	labels := []string{"x", "Kelab", "STATE university", "antarabangsaX", "??", "Daerah", "universe", "Negara"}
	for _, l := range labels {
		switch PointsForLevel(l) {
		case 2, 4, 8:
		default:
			t.Fatalf("PointsForLevel(%q) outside {2,4,8}", l)
		}
	}
}

func TestCanonicalLevel(t *testing.T) {
	tests := map[string]models.Level{
		"Kebangsaan/Antara Universiti": models.LevelNational,
		"Antarabangsa":                 models.LevelInternational,
		"kampus":                       models.LevelCampus,
		"":                             models.LevelCampus,
	}
	for in, want := range tests {
		if got := CanonicalLevel(in); got != want {
			t.Errorf("CanonicalLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEffectiveDefaults(t *testing.T) {
	if got := EffectiveCategory(nil); got != models.CategoryInnovation {
		t.Fatalf("fallback category = %q", got)
	}
	bogus := models.Category("whatever")
	if got := EffectiveCategory(&bogus); got != FallbackCategory {
		t.Fatalf("unknown category should fall back, got %q", got)
	}
	if got := EffectiveLevel("  "); got != FallbackLevel {
		t.Fatalf("fallback level = %q", got)
	}
	if got := PreviewPoints(""); got != PointsCampus {
		t.Fatalf("preview for empty level = %d", got)
	}
}

func TestKindMatching(t *testing.T) {
	err := E(NotFound, opApprove, "claim x")
	if KindOf(err) != NotFound {
		t.Fatalf("KindOf = %v", KindOf(err))
	}
	if !errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		t.Fatal("sentinel matching by kind is broken")
	}
	wrapped := dependency(opApprove, err)
	if KindOf(wrapped) != NotFound {
		t.Fatal("dependency must not rewrap kinded errors")
	}
	if KindOf(dependency(opApprove, ErrDuplicate)) != DependencyFailure {
		t.Fatal("plain store errors must become DependencyFailure")
	}
}
