//go:build testutil
// +build testutil

package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Spok95/mycsd-points/internal/db"
	"github.com/Spok95/mycsd-points/internal/models"
)

// DBHandle — одноразовый Postgres в контейнере с применёнными миграциями.
type DBHandle struct {
	DB  *sql.DB
	DSN string

	terminate func(context.Context) error
}

func (h *DBHandle) Close() {
	_ = h.DB.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = h.terminate(ctx)
}

// Start поднимает postgres:17 и накатывает goose-миграции из internal/db.
// Готовность ждём по логу: initdb перезапускает сервер, поэтому строка встречается дважды.
func Start(ctx context.Context) (*DBHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:17-alpine"),
		postgres.WithDatabase("mycsd"),
		postgres.WithUsername("mycsd"),
		postgres.WithPassword("mycsd"),
		tc.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}
	h := &DBHandle{terminate: pg.Terminate}
	fail := func(err error) (*DBHandle, error) {
		if h.DB != nil {
			_ = h.DB.Close()
		}
		_ = pg.Terminate(context.Background())
		return nil, err
	}

	if h.DSN, err = pg.ConnectionString(ctx, "sslmode=disable"); err != nil {
		return fail(err)
	}
	if h.DB, err = sql.Open("postgres", h.DSN); err != nil {
		return fail(err)
	}
	if err := h.DB.PingContext(ctx); err != nil {
		return fail(fmt.Errorf("ping: %w", err))
	}
	if err := db.Migrate(ctx, h.DB); err != nil {
		return fail(fmt.Errorf("migrate: %w", err))
	}
	return h, nil
}

// Сидеры для интеграционных тестов.

func (h *DBHandle) SeedUser(ctx context.Context, name string, role models.Role, matric *string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := h.DB.ExecContext(ctx, `
		INSERT INTO users (id, telegram_id, name, role, matric_no)
		VALUES ($1, floor(random()*1e12)::bigint, $2, $3, $4)`, id, name, string(role), matric)
	return id, err
}

func (h *DBHandle) SeedEvent(ctx context.Context, title, level string, organizer uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	_, err := h.DB.ExecContext(ctx, `
		INSERT INTO events (id, title, status, organizer_id, level)
		VALUES ($1, $2, 'completed', $3, $4)`, id, title, organizer, level)
	return id, err
}

func (h *DBHandle) SeedRegistration(ctx context.Context, eventID, userID uuid.UUID, att models.Attendance) error {
	_, err := h.DB.ExecContext(ctx, `
		INSERT INTO registrations (event_id, user_id, attendance) VALUES ($1, $2, $3)`,
		eventID, userID, string(att))
	return err
}
