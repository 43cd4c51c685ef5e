package migrations

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	chstore "order-ledger/internal/storage/clickhouse"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// RunClickhouseMigrations creates the database named in dsn if needed and
// applies the embedded schema to it. The returned connection targets that
// database and belongs to the caller.
func RunClickhouseMigrations(ctx context.Context, dsn string, opts ...chstore.ConnOption) (*chstore.Conn, error) {
	db, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}
	files, err := load(ClickhouseFS, "clickhouse")
	if err != nil {
		return nil, err
	}

	if err := createDatabase(ctx, dsn, db, opts); err != nil {
		return nil, err
	}

	conn, err := chstore.NewConn(ctx, dsn, append(opts, chstore.WithDatabase(db))...)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse database %s: %w", db, err)
	}
	for _, m := range files {
		if err := execScript(ctx, conn, m); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

func createDatabase(ctx context.Context, dsn, db string, opts []chstore.ConnOption) error {
	conn, err := chstore.NewConn(ctx, dsn, append(opts, chstore.WithDatabase(""))...)
	if err != nil {
		return fmt.Errorf("connect clickhouse server: %w", err)
	}
	defer conn.Close()

	if err := conn.Exec(ctx, "CREATE DATABASE IF NOT EXISTS `"+db+"`"); err != nil {
		return fmt.Errorf("create database %s: %w", db, err)
	}
	return nil
}

// execScript runs one statement per Exec; the native protocol rejects
// multi-statement queries.
func execScript(ctx context.Context, conn *chstore.Conn, m migration) error {
	for i, stmt := range splitStatements(m.sql) {
		if err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %s statement %d: %w", m.name, i+1, err)
		}
	}
	return nil
}

// splitStatements cuts a script on semicolons outside single-quoted
// literals. Line comments are dropped; a doubled quote is an escaped quote.
func splitStatements(script string) []string {
	var (
		stmts    []string
		current  strings.Builder
		inString bool
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			stmts = append(stmts, s)
		}
		current.Reset()
	}

	for i := 0; i < len(script); i++ {
		ch := script[i]
		switch {
		case inString && ch == '\'' && i+1 < len(script) && script[i+1] == '\'':
			current.WriteString("''")
			i++
		case ch == '\'':
			inString = !inString
			current.WriteByte(ch)
		case !inString && ch == '-' && i+1 < len(script) && script[i+1] == '-':
			for i < len(script) && script[i] != '\n' {
				i++
			}
			current.WriteByte('\n')
		case !inString && ch == ';':
			flush()
		default:
			current.WriteByte(ch)
		}
	}
	flush()
	return stmts
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.Trim(u.Path, "/")
	switch {
	case db == "":
		return "", fmt.Errorf("clickhouse dsn names no database")
	case !identifier.MatchString(db):
		return "", fmt.Errorf("clickhouse database %q is not a plain identifier", db)
	}
	return db, nil
}
