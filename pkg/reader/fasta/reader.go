// Package fasta provides a streaming reader for FASTA protein databases
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// UniProt headers look like ">sp|P69905|HBA_HUMAN Hemoglobin subunit alpha".
var uniprotHeader = regexp.MustCompile(`^(?:sp|tr)\|([^|]+)\|(\S*)\s*(.*)$`)

// Reader provides streaming access to FASTA files
type Reader struct {
	reader      *bufio.Reader
	decoyPrefix string
	lineNum     int
	pendingName string
	havePending bool
	currentProt *core.Protein
	err         error
}

// NewReader creates a new FASTA reader. Entries whose accession starts with
// decoyPrefix are flagged as decoys; an empty prefix disables detection.
func NewReader(r io.Reader, decoyPrefix string) *Reader {
	return &Reader{
		reader:      bufio.NewReader(r),
		decoyPrefix: decoyPrefix,
	}
}

// Next advances to the next protein. Returns false when no more proteins or error.
func (r *Reader) Next() bool {
	r.currentProt = nil

	prot, err := r.readProtein()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.currentProt = prot
	return true
}

// Protein returns the current protein
func (r *Reader) Protein() *core.Protein {
	return r.currentProt
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// readProtein reads lines up to the next header
func (r *Reader) readProtein() (*core.Protein, error) {
	var seq strings.Builder
	header := r.pendingName
	inEntry := r.havePending
	r.havePending = false

	for {
		line, err := r.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		atEOF := err == io.EOF
		if line != "" {
			r.lineNum++
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "" || line[0] == ';':
			// blank or comment
		case line[0] == '>':
			if inEntry {
				r.pendingName = line[1:]
				r.havePending = true
				return r.buildProtein(header, seq.String())
			}
			header = line[1:]
			inEntry = true
		case !inEntry:
			return nil, fmt.Errorf("line %d: sequence data before the first header", r.lineNum)
		default:
			seq.WriteString(strings.ToUpper(strings.TrimRight(line, "*")))
		}

		if atEOF {
			if inEntry {
				return r.buildProtein(header, seq.String())
			}
			return nil, io.EOF
		}
	}
}

func (r *Reader) buildProtein(header, seq string) (*core.Protein, error) {
	if seq == "" {
		return nil, fmt.Errorf("line %d: entry %q has no sequence", r.lineNum, header)
	}
	accession, description := ParseHeader(header)
	return &core.Protein{
		Accession:   accession,
		Description: description,
		Sequence:    seq,
		Decoy:       r.decoyPrefix != "" && strings.HasPrefix(accession, r.decoyPrefix),
	}, nil
}

// ParseHeader splits a header line (without '>') into accession and
// description. UniProt headers yield the bare accession.
func ParseHeader(header string) (accession, description string) {
	header = strings.TrimSpace(header)
	if m := uniprotHeader.FindStringSubmatch(header); m != nil {
		return m[1], strings.TrimSpace(m[2] + " " + m[3])
	}
	accession, description, _ = strings.Cut(header, " ")
	return accession, strings.TrimSpace(description)
}

// ReadAll reads every protein from r.
func ReadAll(r io.Reader, decoyPrefix string) ([]*core.Protein, error) {
	reader := NewReader(r, decoyPrefix)
	var out []*core.Protein
	for reader.Next() {
		out = append(out, reader.Protein())
	}
	return out, reader.Err()
}
