package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/Spok95/mycsd-points/internal/mycsd"
)

func TestMapErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		dup  bool
	}{
		{"pgx unique", &pgconn.PgError{Code: "23505", ConstraintName: "claims_event_id_key"}, true},
		{"pq unique", &pq.Error{Code: "23505", Constraint: "ledger_entries_claim_id_key"}, true},
		{"wrapped pgx", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"fk violation", &pgconn.PgError{Code: "23503"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapErr(tc.err)
			if errors.Is(got, mycsd.ErrDuplicate) != tc.dup {
				t.Fatalf("mapErr(%v) = %v, duplicate=%v", tc.err, got, tc.dup)
			}
		})
	}
	if mapErr(nil) != nil {
		t.Fatal("nil must stay nil")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	ents, err := MigrationsFS().ReadDir("migrations")
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) < 2 {
		t.Fatalf("expected embedded migrations, got %d", len(ents))
	}
}
