package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kberrors "github.com/normakb/normakb/internal/errors"
)

const sampleDoc = `REGLAS DE JUEGO
<!-- PAGE 1 -->
Edición de prueba.

CAPÍTULO I: EL TERRENO DE JUEGO
ARTÍCULO 1: El terreno de juego
El terreno de juego es rectangular.
<!-- PAGE 2 -->
Continúa la descripción del terreno.

ARTÍCULO 2. Las porterías
Las porterías se sitúan en el centro de cada línea exterior.

<!-- PAGE 3 -->
ARTICLE 3 - Substitutions
Substitutes may enter at any time.
`

func TestParse_SplitsUnitsAtHeadings(t *testing.T) {
	units, err := Parse(sampleDoc)
	require.NoError(t, err)
	require.Len(t, units, 4)

	assert.Equal(t, PreambleID, units[0].ID)
	assert.Equal(t, "Art. 1", units[1].ID)
	assert.Equal(t, "Art. 2", units[2].ID)
	assert.Equal(t, "Art. 3", units[3].ID)

	assert.Equal(t, "El terreno de juego", units[1].Title)
	assert.Equal(t, "Las porterías", units[2].Title)
	assert.Equal(t, "Substitutions", units[3].Title)
}

func TestParse_AttributesLeadingContentToPreamble(t *testing.T) {
	units, err := Parse(sampleDoc)
	require.NoError(t, err)

	preamble := units[0]
	assert.Equal(t, PreambleID, preamble.ID)
	assert.Contains(t, preamble.Content, "REGLAS DE JUEGO")
	assert.Contains(t, preamble.Content, "<!-- PAGE 1 -->")
	assert.Equal(t, []int{1}, preamble.Pages)
}

func TestParse_RecordsPagesInEncounterOrder(t *testing.T) {
	units, err := Parse(sampleDoc)
	require.NoError(t, err)

	// Art. 1 starts on page 1 and crosses into page 2.
	assert.Equal(t, []int{1, 2}, units[1].Pages)
	// Art. 2 sits entirely on page 2.
	assert.Equal(t, []int{2}, units[2].Pages)
	// Art. 3's heading follows the page 3 marker.
	assert.Equal(t, []int{3}, units[3].Pages)
}

func TestParse_SectionLabelFromChapterHeading(t *testing.T) {
	units, err := Parse(sampleDoc)
	require.NoError(t, err)

	assert.Equal(t, "CAPÍTULO I: EL TERRENO DE JUEGO", units[1].Section)
	assert.Equal(t, "CAPÍTULO I: EL TERRENO DE JUEGO", units[2].Section)
	assert.Empty(t, units[0].Section)
}

func TestParse_ContentBelongsToPrecedingUnit(t *testing.T) {
	units, err := Parse(sampleDoc)
	require.NoError(t, err)

	assert.Contains(t, units[1].Content, "ARTÍCULO 1: El terreno de juego")
	assert.Contains(t, units[1].Content, "Continúa la descripción")
	assert.NotContains(t, units[1].Content, "porterías se sitúan")
}

func TestParse_EmptyDocument(t *testing.T) {
	units, err := Parse("")
	require.NoError(t, err)
	assert.Nil(t, units)

	units, err = Parse("  \n\n\t ")
	require.NoError(t, err)
	assert.Nil(t, units)
}

func TestParse_NoHeadingsIsMalformed(t *testing.T) {
	_, err := Parse("some text\nwithout any article heading\n")
	require.Error(t, err)
	assert.Equal(t, kberrors.ErrCodeMalformedInput, kberrors.GetCode(err))
}

func TestParse_HeadingVariants(t *testing.T) {
	tests := []struct {
		line   string
		wantID string
	}{
		{"ARTÍCULO 8: El portero", "Art. 8"},
		{"ARTICULO 8. El portero", "Art. 8"},
		{"artículo 12 - Sanciones", "Art. 12"},
		{"ARTICLE 4: Goalkeeper", "Art. 4"},
		{"ARTÍCULO 8bis: Disposición adicional", "Art. 8bis"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			units, err := Parse(tt.line + "\ncuerpo del artículo\n")
			require.NoError(t, err)
			require.Len(t, units, 1)
			assert.Equal(t, tt.wantID, units[0].ID)
		})
	}
}

func TestParse_OrphanPageMarkerGoesToPreamble(t *testing.T) {
	doc := "<!-- PAGE 1 -->\nportada\nARTÍCULO 1: Uno\ncontenido\n"
	units, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, PreambleID, units[0].ID)
	assert.Equal(t, []int{1}, units[0].Pages)
	assert.Equal(t, []int{1}, units[1].Pages)
}
