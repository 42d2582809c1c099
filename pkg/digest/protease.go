// Package digest turns protein sequences into candidate peptides: in-silico
// cleavage, fixed modifications, reverse decoys and fragment-mass series.
package digest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// Protease cleaves after any residue in CleaveAfter unless the next residue is
// in NotBefore.
type Protease struct {
	Name        string
	CleaveAfter string
	NotBefore   string
}

var proteases = map[string]Protease{
	"trypsin":      {Name: "trypsin", CleaveAfter: "KR", NotBefore: "P"},
	"trypsin/p":    {Name: "trypsin/P", CleaveAfter: "KR"},
	"lys-c":        {Name: "Lys-C", CleaveAfter: "K", NotBefore: "P"},
	"lys-c/p":      {Name: "Lys-C/P", CleaveAfter: "K"},
	"arg-c":        {Name: "Arg-C", CleaveAfter: "R", NotBefore: "P"},
	"glu-c":        {Name: "Glu-C", CleaveAfter: "E"},
	"chymotrypsin": {Name: "chymotrypsin", CleaveAfter: "FWY", NotBefore: "P"},
}

// ParseProtease looks up a protease by name, case-insensitively. A name of
// the form "after:KR" or "after:KR!P" defines a custom protease.
func ParseProtease(name string) (Protease, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := proteases[key]; ok {
		return p, nil
	}
	if rest, ok := strings.CutPrefix(key, "after:"); ok {
		after, notBefore, _ := strings.Cut(strings.ToUpper(rest), "!")
		if after != "" {
			return Protease{Name: name, CleaveAfter: after, NotBefore: notBefore}, nil
		}
	}
	known := make([]string, 0, len(proteases))
	for k := range proteases {
		known = append(known, k)
	}
	sort.Strings(known)
	return Protease{}, &core.ConfigError{Field: "protease", Message: fmt.Sprintf("unknown protease %q (known: %s)", name, strings.Join(known, ", "))}
}

// Sites returns the cleavage positions in seq, always including 0 and
// len(seq). A site at i means a bond between seq[i-1] and seq[i].
func (p Protease) Sites(seq string) []int {
	sites := []int{0}
	for i := 0; i < len(seq)-1; i++ {
		if strings.IndexByte(p.CleaveAfter, seq[i]) >= 0 && strings.IndexByte(p.NotBefore, seq[i+1]) < 0 {
			sites = append(sites, i+1)
		}
	}
	if len(seq) > 0 {
		sites = append(sites, len(seq))
	}
	return sites
}
