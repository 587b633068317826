package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/progcdc/internal/program"
)

// DefaultPoolSize bounds concurrent source queries.
const DefaultPoolSize = 16

// Fetcher reads program state from the source database.
type Fetcher struct {
	db       *sql.DB
	poolSize int
	codes    ArchiveCodes
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithPoolSize bounds the number of programs fetched concurrently.
func WithPoolSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.poolSize = n
		}
	}
}

// WithArchiveCodes sets the transaction codes used by Classify.
func WithArchiveCodes(codes ArchiveCodes) Option {
	return func(f *Fetcher) {
		f.codes = codes
	}
}

// New creates a Fetcher over an open source database.
func New(db *sql.DB, opts ...Option) *Fetcher {
	f := &Fetcher{
		db:       db,
		poolSize: DefaultPoolSize,
		codes:    DefaultArchiveCodes(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open connects to the source database and bounds its connection pool.
// The driver must already be registered (see cmd/progcdc).
func Open(driver, dsn string, poolSize int) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open source database: %w", err)
	}
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)
	return db, nil
}

// PoolSize returns the fetch concurrency bound.
func (f *Fetcher) PoolSize() int {
	return f.poolSize
}

// ListActiveProgramIDs returns the id of every program currently posted.
func (f *Fetcher) ListActiveProgramIDs(ctx context.Context) ([]program.ProgramID, error) {
	rows, err := f.db.QueryContext(ctx, `SELECT ProgramName FROM Program`)
	if err != nil {
		return nil, fmt.Errorf("list active programs: %w", err)
	}
	defer rows.Close()

	ids := []program.ProgramID{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list active programs: %w", err)
		}
		id, err := program.ParseProgramID(normalize(name))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active programs: %w", err)
	}
	return ids, nil
}

// FetchState reads the current state of one program.
// Returns a NotFound error when the program is no longer in the Program table.
func (f *Fetcher) FetchState(ctx context.Context, id program.ProgramID) (program.MaterializedState, error) {
	state, err := f.fetchHeader(ctx, id)
	if err != nil {
		return program.MaterializedState{}, err
	}

	parts, err := f.fetchParts(ctx, id)
	if err != nil {
		return program.MaterializedState{}, err
	}
	state.Parts = parts
	return state, nil
}

func (f *Fetcher) fetchHeader(ctx context.Context, id program.ProgramID) (program.MaterializedState, error) {
	row := f.db.QueryRowContext(ctx, `
		SELECT
			Program.ProgramName,
			Program.MachineName,
			Program.PostDateTime,
			Stock.SheetName,
			Stock.Material,
			Stock.PrimeCode,
			Stock.HeatNumber,
			Stock.BinNumber
		FROM Program
		INNER JOIN Stock
			ON Program.SheetName = Stock.SheetName
		WHERE Program.ProgramName = @p1
	`, id.String())

	var (
		name, machine, sheet  string
		postedAt              time.Time
		grade, material, heat sql.NullString
		po                    sql.NullString
	)
	err := row.Scan(&name, &machine, &postedAt, &sheet, &grade, &material, &heat, &po)
	if errors.Is(err, sql.ErrNoRows) {
		return program.MaterializedState{}, program.NewNotFoundError(id, "program")
	}
	if err != nil {
		return program.MaterializedState{}, fmt.Errorf("fetch program %s: %w", id, err)
	}

	parsedID, err := program.ParseProgramID(normalize(name))
	if err != nil {
		return program.MaterializedState{}, err
	}

	poNumber, err := parsePONumber(id, po)
	if err != nil {
		return program.MaterializedState{}, err
	}

	return program.MaterializedState{
		ProgramID: parsedID,
		Machine:   normalize(machine),
		Sheet: program.Sheet{
			Name:           normalize(sheet),
			Grade:          normalize(grade.String),
			MaterialMaster: normalize(material.String),
			HeatNumber:     normalize(heat.String),
			PONumber:       poNumber,
		},
		Status: program.Status{Kind: program.StatusPosted, At: postedAt.UTC()},
	}, nil
}

func (f *Fetcher) fetchParts(ctx context.Context, id program.ProgramID) (program.Parts, error) {
	rows, err := f.db.QueryContext(ctx, `
		SELECT PartName, WONumber, QtyInProcess
		FROM PIP
		WHERE ProgramName = @p1
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("fetch parts %s: %w", id, err)
	}
	defer rows.Close()

	parts := program.Parts{}
	for rows.Next() {
		var name, workOrder string
		var qty int64
		if err := rows.Scan(&name, &workOrder, &qty); err != nil {
			return nil, fmt.Errorf("fetch parts %s: %w", id, err)
		}
		if qty < 0 {
			qty = -qty
		}
		if qty > math.MaxUint32 {
			return nil, program.NewMalformedError(id, "qty", strconv.FormatInt(qty, 10))
		}
		parts.Put(program.Part{
			Name:      normalize(name),
			WorkOrder: normalize(workOrder),
			Qty:       uint32(qty),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parts %s: %w", id, err)
	}
	return parts, nil
}

// parsePONumber reads the purchase order stored in the stock bin number.
func parsePONumber(id program.ProgramID, raw sql.NullString) (uint64, error) {
	if !raw.Valid {
		return 0, program.NewMalformedError(id, "po number", "")
	}
	n, err := strconv.ParseUint(strings.TrimSpace(raw.String), 10, 64)
	if err != nil {
		return 0, program.NewMalformedError(id, "po number", raw.String)
	}
	return n, nil
}

func normalize(s string) string {
	return norm.NFC.String(s)
}
