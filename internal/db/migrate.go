package db

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed schema/postgres.sql schema/sqlite.sql
var schemaFS embed.FS

// pgExecer es lo que usa MigratePostgres de un pgxpool.Pool.
type pgExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// MigratePostgres crea la tabla e índices si no existen.
func MigratePostgres(ctx context.Context, conn pgExecer) error {
	stmts, err := schemaStatements("schema/postgres.sql")
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply postgres schema: %w", err)
		}
	}
	return nil
}

// schemaStatements separa el archivo en sentencias. Los .sql no tienen ';' dentro de strings.
func schemaStatements(name string) ([]string, error) {
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var stmts []string
	for _, part := range strings.Split(string(raw), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}
