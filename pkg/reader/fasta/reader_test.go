package fasta

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `;database header comment
>sp|P69905|HBA_HUMAN Hemoglobin subunit alpha
MVLSPADKTN
vkaawgk*

>DECOY_P1 reversed
KGWAAKV
>plain
MNNNKQQQ`

func TestReadProteins(t *testing.T) {
	prots, err := ReadAll(strings.NewReader(sample), "DECOY_")
	require.NoError(t, err)
	require.Len(t, prots, 3)

	assert.Equal(t, "P69905", prots[0].Accession)
	assert.Equal(t, "HBA_HUMAN Hemoglobin subunit alpha", prots[0].Description)
	assert.Equal(t, "MVLSPADKTNVKAAWGK", prots[0].Sequence)
	assert.False(t, prots[0].Decoy)

	assert.Equal(t, "DECOY_P1", prots[1].Accession)
	assert.True(t, prots[1].Decoy)

	assert.Equal(t, "plain", prots[2].Accession)
	assert.Equal(t, "", prots[2].Description)
	assert.Equal(t, "MNNNKQQQ", prots[2].Sequence)
}

func TestReadErrors(t *testing.T) {
	_, err := ReadAll(strings.NewReader("MNNNK\n>x\nAAA\n"), "")
	assert.Error(t, err)

	_, err = ReadAll(strings.NewReader(">x\n>y\nAAA\n"), "")
	assert.Error(t, err)
}

func TestEmptyInput(t *testing.T) {
	prots, err := ReadAll(strings.NewReader(""), "")
	require.NoError(t, err)
	assert.Empty(t, prots)
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		header, accession, description string
	}{
		{"tr|A0A024R161|A0A024R161_HUMAN Guanine", "A0A024R161", "A0A024R161_HUMAN Guanine"},
		{"sp|Q9|NAME", "Q9", "NAME"},
		{"ENSP0001 some protein", "ENSP0001", "some protein"},
		{"lonely", "lonely", ""},
	}
	for _, tt := range tests {
		acc, desc := ParseHeader(tt.header)
		assert.Equal(t, tt.accession, acc, tt.header)
		assert.Equal(t, tt.description, desc, tt.header)
	}
}
