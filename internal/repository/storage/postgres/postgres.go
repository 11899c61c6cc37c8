package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

var ErrEmptyDSN = errors.New("postgres dsn is required")

type Storage struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Storage, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrEmptyDSN
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &Storage{Pool: pool}, nil
}

// Init applies the embedded migrations in file name order.
func (that *Storage) Init(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("can't list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		query, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("can't read migration %s: %w", name, err)
		}

		if _, err = that.Pool.Exec(ctx, string(query)); err != nil {
			return fmt.Errorf("can't apply migration %s: %w", name, err)
		}
	}

	return nil
}

func (that *Storage) Close() error {
	that.Pool.Close()
	return nil
}
