package tabular

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/timesheet/internal/dbx"
	"github.com/dmitrijs2005/timesheet/internal/server/migrations"
)

// Postgres stores each table as a header row in "sheets" and its data rows
// as JSONB string arrays in "sheet_rows", numbered from 1.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// OpenPostgres opens a pgx-backed *sql.DB.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate creates the backend's own tables.
func (p *Postgres) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, p.db, "."); err != nil {
		return unavailable(fmt.Errorf("migrate: %w", err))
	}
	return nil
}

func (p *Postgres) header(ctx context.Context, db dbx.DBTX, table string, lock bool) ([]string, error) {
	query := `SELECT header FROM sheets WHERE name = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	var raw []byte
	if err := db.QueryRowContext(ctx, query, table).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tableNotFound(table)
		}
		return nil, unavailable(fmt.Errorf("db error: %w", err))
	}

	var header []string
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("decode header of %q: %w", table, err)
	}
	return header, nil
}

func (p *Postgres) ReadAll(ctx context.Context, table string) (*Table, error) {
	header, err := p.header(ctx, p.db, table, false)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT row_no, cells FROM sheet_rows WHERE sheet = $1 ORDER BY row_no`, table)
	if err != nil {
		return nil, unavailable(fmt.Errorf("db error: %w", err))
	}
	defer rows.Close()

	raw := [][]string{header}
	for rows.Next() {
		var (
			rowNo int
			cells []byte
		)
		if err := rows.Scan(&rowNo, &cells); err != nil {
			return nil, unavailable(fmt.Errorf("db error: %w", err))
		}
		var values []string
		if err := json.Unmarshal(cells, &values); err != nil {
			return nil, fmt.Errorf("decode row %d of %q: %w", rowNo, table, err)
		}
		// Keep Index aligned with row_no if numbering has gaps.
		for len(raw) < rowNo {
			raw = append(raw, nil)
		}
		raw = append(raw, values)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(fmt.Errorf("db error: %w", err))
	}

	return NewTable(table, raw), nil
}

func (p *Postgres) AppendRows(ctx context.Context, table string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := p.header(ctx, tx, table, true); err != nil {
			return err
		}

		var last int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(row_no), 0) FROM sheet_rows WHERE sheet = $1`, table).Scan(&last); err != nil {
			return unavailable(fmt.Errorf("db error: %w", err))
		}

		for i, r := range rows {
			cells, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sheet_rows (sheet, row_no, cells) VALUES ($1, $2, $3)`,
				table, last+i+1, cells); err != nil {
				return unavailable(fmt.Errorf("db error: %w", err))
			}
		}
		return nil
	})
}

func (p *Postgres) UpdateCell(ctx context.Context, table string, rowIndex int, column, value string) error {
	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		header, err := p.header(ctx, tx, table, false)
		if err != nil {
			return err
		}
		col := NewTable(table, [][]string{header}).ColumnIndex(column)
		if col < 0 {
			return columnNotFound(table, column)
		}

		var raw []byte
		err = tx.QueryRowContext(ctx,
			`SELECT cells FROM sheet_rows WHERE sheet = $1 AND row_no = $2 FOR UPDATE`,
			table, rowIndex).Scan(&raw)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return rowNotFound(table, rowIndex)
			}
			return unavailable(fmt.Errorf("db error: %w", err))
		}

		var cells []string
		if err := json.Unmarshal(raw, &cells); err != nil {
			return fmt.Errorf("decode row %d of %q: %w", rowIndex, table, err)
		}
		for len(cells) <= col {
			cells = append(cells, "")
		}
		cells[col] = value

		updated, err := json.Marshal(cells)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE sheet_rows SET cells = $3 WHERE sheet = $1 AND row_no = $2`,
			table, rowIndex, updated); err != nil {
			return unavailable(fmt.Errorf("db error: %w", err))
		}
		return nil
	})
}

func (p *Postgres) EnsureTable(ctx context.Context, table string, header []string) error {
	raw, err := json.Marshal(header)
	if err != nil {
		return err
	}
	if _, err := p.db.ExecContext(ctx,
		`INSERT INTO sheets (name, header) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		table, raw); err != nil {
		return unavailable(fmt.Errorf("db error: %w", err))
	}
	return nil
}
