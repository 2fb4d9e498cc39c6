package sink

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ru-addr/internal/db"
	"github.com/ru-addr/internal/debug"
)

// SQL loads rows into a table. Each sink run is tagged with a fresh batch
// id so repeated loads into the same table can be told apart. Postgres
// rows are streamed with COPY; SQLite rows go through a prepared INSERT.
// Rows are committed on Flush and Close.
type SQL struct {
	db         *sql.DB
	driver     string
	table      string
	batchID    string
	columns    []string
	tx         *sql.Tx
	stmt       *sql.Stmt
	rowNum     int
	pending    int
	localDebug bool
}

// NewSQL creates a sink writing to table through conn
func NewSQL(conn *db.Connection, table string, localDebug bool) *SQL {
	return &SQL{
		db:         conn.DB,
		driver:     conn.Driver,
		table:      table,
		batchID:    uuid.NewString(),
		localDebug: localDebug,
	}
}

// BatchID returns the identifier stored in the batch_id column
func (s *SQL) BatchID() string {
	return s.batchID
}

// WriteHeader fixes the column list and creates the table if needed
func (s *SQL) WriteHeader(columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns for table %s", s.table)
	}
	s.columns = append([]string(nil), columns...)

	defs := []string{"batch_id TEXT NOT NULL", "row_num INTEGER NOT NULL"}
	for _, c := range s.columns {
		defs = append(defs, pq.QuoteIdentifier(c)+" TEXT")
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pq.QuoteIdentifier(s.table), strings.Join(defs, ", "))

	debug.DebugOutput(s.localDebug, "Creating table: %s", query)
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// Write queues one row in the current transaction
func (s *SQL) Write(row []string) error {
	if s.columns == nil {
		return fmt.Errorf("WriteHeader must be called before Write")
	}
	if len(row) != len(s.columns) {
		return fmt.Errorf("row has %d fields, table %s has %d columns", len(row), s.table, len(s.columns))
	}
	if err := s.begin(); err != nil {
		return err
	}

	s.rowNum++
	args := make([]interface{}, 0, len(row)+2)
	args = append(args, s.batchID, s.rowNum)
	for _, v := range row {
		if v == "" {
			args = append(args, nil)
		} else {
			args = append(args, v)
		}
	}
	if _, err := s.stmt.Exec(args...); err != nil {
		return fmt.Errorf("failed to insert row %d: %w", s.rowNum, err)
	}
	s.pending++
	return nil
}

func (s *SQL) begin() error {
	if s.tx != nil {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	all := append([]string{"batch_id", "row_num"}, s.columns...)
	var query string
	if s.driver == db.DriverPostgres {
		query = pq.CopyIn(s.table, all...)
	} else {
		quoted := make([]string, len(all))
		marks := make([]string, len(all))
		for i, c := range all {
			quoted[i] = pq.QuoteIdentifier(c)
			marks[i] = "?"
		}
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			pq.QuoteIdentifier(s.table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	}

	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	s.tx, s.stmt = tx, stmt
	return nil
}

// Flush commits queued rows
func (s *SQL) Flush() error {
	if s.tx == nil {
		return nil
	}

	if s.driver == db.DriverPostgres {
		// an argument-less Exec ends the COPY
		if _, err := s.stmt.Exec(); err != nil {
			s.abort()
			return fmt.Errorf("failed to finish copy: %w", err)
		}
	}
	if err := s.stmt.Close(); err != nil {
		s.abort()
		return fmt.Errorf("failed to close statement: %w", err)
	}
	if err := s.tx.Commit(); err != nil {
		s.tx, s.stmt = nil, nil
		return fmt.Errorf("failed to commit batch at row %d: %w", s.rowNum, err)
	}

	debug.DebugOutput(s.localDebug, "Committed batch: %d rows (%d total)", s.pending, s.rowNum)
	s.tx, s.stmt, s.pending = nil, nil, 0
	return nil
}

func (s *SQL) abort() {
	s.stmt.Close()
	s.tx.Rollback()
	s.tx, s.stmt, s.pending = nil, nil, 0
}

// Close commits any queued rows. The connection stays open.
func (s *SQL) Close() error {
	return s.Flush()
}
