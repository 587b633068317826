// Package source reads program state from the nesting system's database.
//
// The source is read-only. Four tables are consulted:
//   - Program: one row per active (posted) program
//   - Stock: the sheet a program is cut from, joined on SheetName
//   - PIP: parts in process, one row per part on a program
//   - ProgArchive: archival transactions, used to classify a program that
//     vanished from Program as deleted or completed
//
// Queries use ordinal @pN placeholders so the same text runs against
// SQL Server in production and SQLite fixtures in tests.
//
// All text read from the source is NFC-normalized before it reaches the
// domain types, so visually identical names compare equal.
package source
