package order

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"onlinestore/internal/domain"
	"onlinestore/internal/migrate"
)

func TestPostgres_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if _, err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	in := domain.Order{
		ID: uuid.NewString(),
		Lines: []domain.OrderLine{
			{ProductID: 1, Title: "test1", UnitPrice: decimal.RequireFromString("123.12"), Quantity: 3, Total: decimal.RequireFromString("369.36")},
			{ProductID: 4, Title: "sale", UnitPrice: decimal.RequireFromString("80"), Quantity: 2, Total: decimal.RequireFromString("160")},
		},
		Total:      decimal.RequireFromString("529.36"),
		TotalLabel: "$529.36",
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != in.ID || !got.Total.Equal(in.Total) || got.TotalLabel != "$529.36" {
		t.Fatalf("unexpected order %+v", got)
	}
	if len(got.Lines) != 2 || got.Lines[0].ProductID != 1 || got.Lines[1].Quantity != 2 {
		t.Fatalf("unexpected lines %+v", got.Lines)
	}
	if !got.Lines[1].Total.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("unexpected line total %s", got.Lines[1].Total)
	}
}

func TestPostgres_CreateKeepsFullPrecision(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if _, err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	// 19.99 at 12.34% off.
	unit := decimal.RequireFromString("17.523234")
	lineTotal := decimal.RequireFromString("35.046468")
	repo := NewPostgres(pool, nil)
	in := domain.Order{
		ID: uuid.NewString(),
		Lines: []domain.OrderLine{
			{ProductID: 7, Title: "odd discount", UnitPrice: unit, Quantity: 2, Total: lineTotal},
		},
		Total:      lineTotal,
		TotalLabel: "$35.05",
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Total.Equal(in.Total) {
		t.Fatalf("total changed on round trip: stored %s, sent %s", got.Total, in.Total)
	}
	if len(got.Lines) != 1 || !got.Lines[0].UnitPrice.Equal(unit) || !got.Lines[0].Total.Equal(lineTotal) {
		t.Fatalf("line amounts changed on round trip: %+v", got.Lines)
	}
}

func TestPostgres_GetByIDNotFound(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if _, err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	_, err := NewPostgres(pool, nil).GetByID(ctx, uuid.NewString())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_lines, orders RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
