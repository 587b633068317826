package source

import (
	"database/sql"
	_ "embed"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/schema.sql
var fixtureSchema string

var t0 = time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

// fixture is a SQLite database laid out like the production source.
type fixture struct {
	t  *testing.T
	db *sql.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "source.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(fixtureSchema)
	require.NoError(t, err)
	return &fixture{t: t, db: db}
}

func (f *fixture) exec(query string, args ...any) {
	f.t.Helper()
	_, err := f.db.Exec(query, args...)
	require.NoError(f.t, err)
}

func (f *fixture) sheet(name, grade, material, heat, po string) {
	f.exec(`INSERT INTO Stock (SheetName, Material, PrimeCode, HeatNumber, BinNumber) VALUES (?, ?, ?, ?, ?)`,
		name, grade, material, heat, po)
}

func (f *fixture) program(name, machine, sheet string, postedAt time.Time) {
	f.exec(`INSERT INTO Program (ProgramName, MachineName, PostDateTime, SheetName) VALUES (?, ?, ?, ?)`,
		name, machine, postedAt, sheet)
}

func (f *fixture) part(programName, part, workOrder string, qty int) {
	f.exec(`INSERT INTO PIP (ProgramName, PartName, WONumber, QtyInProcess) VALUES (?, ?, ?, ?)`,
		programName, part, workOrder, qty)
}

func (f *fixture) archive(programName, code string, at time.Time) {
	f.exec(`INSERT INTO ProgArchive (ProgramName, ArcDateTime, TransType) VALUES (?, ?, ?)`,
		programName, at, code)
}

func (f *fixture) removeProgram(name string) {
	f.exec(`DELETE FROM Program WHERE ProgramName = ?`, name)
	f.exec(`DELETE FROM PIP WHERE ProgramName = ?`, name)
}

// standard seeds one active program with two parts.
func (f *fixture) standard() {
	f.sheet("S12345", "50/50W", "50/50W-0100", "A4A100", "4500252867")
	f.program("51234", "Titan", "S12345", t0)
	f.part("51234", "x1a", "1200055", 2)
	f.part("51234", "x1b", "1200055", 1)
}
