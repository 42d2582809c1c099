// Package sqlite provides SQLite database writing for search results
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
	"github.com/ChrisMcGann/pepsearch/pkg/psm"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"

	// SchemaVersion is stored in HeaderTable.version
	SchemaVersion = 1
)

// Header describes the search that produced the stored PSMs.
type Header struct {
	Engine   string
	Acceptor string
}

// Writer handles writing PSMs to SQLite database files
type Writer struct {
	db            *sql.DB
	tx            *sql.Tx
	outputPath    string
	header        Header
	psmStmt       *sql.Stmt
	ambiguityStmt *sql.Stmt
	candidates    map[uint32]*core.CandidatePeptide
	psmID         int
	finalized     bool
}

// ErrOutputExists is returned by NewWriter when the output file is already
// present.
var ErrOutputExists = errors.New("output database already exists")

// NewWriter creates a new SQLite database at outputPath, which must not exist.
// Candidate IDs found in PSMs are resolved against the given candidate list
// for sequences and proteins.
func NewWriter(outputPath string, candidates []*core.CandidatePeptide, header Header) (*Writer, error) {
	if _, err := os.Stat(outputPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrOutputExists, outputPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to check output path: %w", err)
	}

	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		header:     header,
		candidates: make(map[uint32]*core.CandidatePeptide, len(candidates)),
		psmID:      1,
	}
	for _, c := range candidates {
		w.candidates[c.ID] = c
	}

	if err := w.createTables(); err != nil {
		db.Close()
		os.Remove(outputPath)
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		os.Remove(outputPath)
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS PsmTable (
		PsmId INTEGER PRIMARY KEY,
		ScanId TEXT,
		OneBasedIndex INTEGER,
		Notch INTEGER,
		Score DOUBLE,
		PrecursorMass DOUBLE,
		PrecursorCharge INTEGER,
		BestCandidateId INTEGER,
		BestSequence TEXT,
		Decoy BOOL,
		NumCandidates INTEGER,
		blobMatchedIons BLOB
	);

	CREATE TABLE IF NOT EXISTS AmbiguityTable (
		PsmId INTEGER REFERENCES PsmTable(PsmId),
		CandidateId INTEGER,
		Sequence TEXT,
		Protein TEXT,
		Decoy BOOL
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		Engine TEXT,
		Acceptor TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion inside one
// transaction
func (w *Writer) prepareStatements() error {
	var err error

	w.tx, err = w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.psmStmt, err = w.tx.Prepare(`
		INSERT INTO PsmTable (
			PsmId, ScanId, OneBasedIndex, Notch, Score, PrecursorMass,
			PrecursorCharge, BestCandidateId, BestSequence, Decoy,
			NumCandidates, blobMatchedIons
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		return fmt.Errorf("failed to prepare psm statement: %w", err)
	}

	w.ambiguityStmt, err = w.tx.Prepare(`
		INSERT INTO AmbiguityTable (PsmId, CandidateId, Sequence, Protein, Decoy)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		return fmt.Errorf("failed to prepare ambiguity statement: %w", err)
	}

	return nil
}

// WritePSM writes a single PSM and its ambiguity group to the database
func (w *Writer) WritePSM(p *psm.PSM) error {
	if w.finalized {
		return fmt.Errorf("writer for %s is already finalized", w.outputPath)
	}

	best := w.candidates[p.BestID]
	var sequence string
	var decoy bool
	if best != nil {
		sequence = best.Sequence
		decoy = best.Decoy
	}

	blob, err := EncodeIons(p.MatchedIons)
	if err != nil {
		return fmt.Errorf("failed to encode ions for %s: %w", p.Scan.Name(), err)
	}

	_, err = w.psmStmt.Exec(
		w.psmID,                // PsmId
		p.Scan.ID,              // ScanId
		p.Scan.OneBasedIndex,   // OneBasedIndex
		p.Notch,                // Notch
		p.Score,                // Score
		p.Scan.PrecursorMass,   // PrecursorMass
		p.Scan.PrecursorCharge, // PrecursorCharge
		int64(p.BestID),        // BestCandidateId
		sequence,               // BestSequence
		decoy,                  // Decoy
		p.NumCandidates(),      // NumCandidates
		blob,                   // blobMatchedIons
	)
	if err != nil {
		return fmt.Errorf("failed to insert psm: %w", err)
	}

	for _, id := range p.CandidateIDs() {
		var seq, protein string
		var isDecoy bool
		if c := w.candidates[id]; c != nil {
			seq, protein, isDecoy = c.Sequence, c.Protein, c.Decoy
		}
		if _, err := w.ambiguityStmt.Exec(w.psmID, int64(id), seq, protein, isDecoy); err != nil {
			return fmt.Errorf("failed to insert ambiguity entry: %w", err)
		}
	}

	w.psmID++
	return nil
}

// WriteAll writes every non-nil PSM and returns how many were stored.
func (w *Writer) WriteAll(psms []*psm.PSM) (int, error) {
	n := 0
	for _, p := range psms {
		if p == nil {
			continue
		}
		if err := w.WritePSM(p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Finalize writes the header table, commits and closes the database
func (w *Writer) Finalize() error {
	if w.finalized {
		return nil
	}
	w.finalized = true

	// Write HeaderTable
	_, err := w.tx.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, Engine, Acceptor)
		VALUES (?, ?, ?, ?)
	`, SchemaVersion, time.Now().Format(headerDateFormat), w.header.Engine, w.header.Acceptor)
	if err != nil {
		w.finalized = false
		w.Abort()
		return fmt.Errorf("failed to insert header: %w", err)
	}

	// Close prepared statements
	w.closeStatements()

	if err := w.tx.Commit(); err != nil {
		w.db.Close()
		return fmt.Errorf("failed to commit: %w", err)
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Abort rolls back everything written so far and removes the output file.
func (w *Writer) Abort() error {
	if w.finalized {
		return nil
	}
	w.finalized = true

	w.closeStatements()
	rbErr := w.tx.Rollback()
	closeErr := w.db.Close()
	removeErr := os.Remove(w.outputPath)
	if errors.Is(removeErr, os.ErrNotExist) {
		removeErr = nil
	}
	return errors.Join(rbErr, closeErr, removeErr)
}

// Close aborts a writer that was not finalized, so a failed run never leaves
// a partial database behind. After Finalize it does nothing.
func (w *Writer) Close() error {
	return w.Abort()
}

func (w *Writer) closeStatements() {
	if w.psmStmt != nil {
		w.psmStmt.Close()
	}
	if w.ambiguityStmt != nil {
		w.ambiguityStmt.Close()
	}
}
