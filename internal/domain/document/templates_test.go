package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesFor(t *testing.T) {
	assert.Equal(t, []string{"classic", "modern", "minimal", "corporate", "elegant"}, TemplateIDsFor(KindInvoice))
	assert.Equal(t, []string{"classic", "modern", "minimal", "thermal"}, TemplateIDsFor(KindReceipt))
}

func TestLookupTemplate(t *testing.T) {
	spec, ok := LookupTemplate(KindReceipt, TemplateThermal)
	require.True(t, ok)
	assert.Equal(t, PaperSizeReceipt3in, spec.PaperSize)
	assert.Equal(t, ReceiptMargins(), spec.Margins)

	_, ok = LookupTemplate(KindInvoice, TemplateThermal)
	assert.False(t, ok)

	_, ok = LookupTemplate(KindInvoice, "gothic")
	assert.False(t, ok)
}

func TestAllTemplates_ReturnsCopy(t *testing.T) {
	all := AllTemplates()
	all[0].Name = "changed"
	assert.Equal(t, "Classic", AllTemplates()[0].Name)
}

func TestNewMargins(t *testing.T) {
	m, err := NewMargins(10, 10, 10, 10)
	require.NoError(t, err)
	assert.True(t, m.Equals(UniformMargins(10)))

	_, err = NewMargins(-1, 0, 0, 0)
	assert.Error(t, err)
	_, err = NewMargins(0, 101, 0, 0)
	assert.Error(t, err)
	assert.True(t, Margins{}.IsZero())
}
