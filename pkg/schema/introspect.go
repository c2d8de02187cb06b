// Package schema discovers the connected database's tables, columns, and
// foreign keys and renders them as the plain-text summary handed to the
// model. Audit columns and migration bookkeeping tables are filtered out
// so the prompt stays focused on answerable data.
package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Column describes one column of a user table.
type Column struct {
	Name     string
	DataType string
	Nullable bool
}

// ForeignKey describes one outgoing FK edge of a table.
type ForeignKey struct {
	Column       string
	TargetTable  string
	TargetColumn string
}

// Table is one user table with its columns in ordinal order.
type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// Introspector reads catalog metadata from a live connection pool.
type Introspector struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewIntrospector(pool *pgxpool.Pool, logger *zap.Logger) *Introspector {
	return &Introspector{pool: pool, logger: logger.Named("schema")}
}

// Snapshot returns all user tables in the public schema with their columns
// and foreign keys. System schemas are excluded at the catalog level.
func (in *Introspector) Snapshot(ctx context.Context) ([]Table, error) {
	tables, err := in.discoverTables(ctx)
	if err != nil {
		return nil, err
	}

	fksByTable, err := in.discoverForeignKeys(ctx)
	if err != nil {
		return nil, err
	}

	for i := range tables {
		columns, err := in.discoverColumns(ctx, tables[i].Name)
		if err != nil {
			return nil, err
		}
		tables[i].Columns = columns
		tables[i].ForeignKeys = fksByTable[tables[i].Name]
	}

	in.logger.Debug("schema snapshot taken", zap.Int("tables", len(tables)))
	return tables, nil
}

// Summary renders a fresh snapshot as prompt text.
func (in *Introspector) Summary(ctx context.Context) (string, error) {
	tables, err := in.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return Render(tables), nil
}

func (in *Introspector) discoverTables(ctx context.Context) ([]Table, error) {
	const query = `
		SELECT t.table_name
		FROM information_schema.tables t
		WHERE t.table_type = 'BASE TABLE'
		  AND t.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY t.table_name
	`

	rows, err := in.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.Name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

func (in *Introspector) discoverColumns(ctx context.Context, tableName string) ([]Column, error) {
	const query = `
		SELECT c.column_name, c.data_type, c.is_nullable = 'YES'
		FROM information_schema.columns c
		WHERE c.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		  AND c.table_name = $1
		ORDER BY c.ordinal_position
	`

	rows, err := in.pool.Query(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns for %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return columns, nil
}

func (in *Introspector) discoverForeignKeys(ctx context.Context) (map[string][]ForeignKey, error) {
	const query = `
		SELECT
			kcu.table_name,
			kcu.column_name,
			ccu.table_name AS target_table,
			ccu.column_name AS target_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
			AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY kcu.table_name, kcu.ordinal_position
	`

	rows, err := in.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	fks := make(map[string][]ForeignKey)
	for rows.Next() {
		var table string
		var fk ForeignKey
		if err := rows.Scan(&table, &fk.Column, &fk.TargetTable, &fk.TargetColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		fks[table] = append(fks[table], fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys: %w", err)
	}
	return fks, nil
}
