package document

// TemplateSpec describes one fixed layout variant
type TemplateSpec struct {
	ID          TemplateID  `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Kinds       []Kind      `json:"kinds"`
	PaperSize   PaperSize   `json:"paper_size"`
	Orientation Orientation `json:"orientation"`
	Margins     Margins     `json:"margins"`
}

// Supports reports whether the template can render documents of kind k
func (t TemplateSpec) Supports(k Kind) bool {
	for _, kind := range t.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

var templateCatalog = []TemplateSpec{
	{
		ID:          TemplateClassic,
		Name:        "Classic",
		Description: "Blue header band with a banded item table",
		Kinds:       []Kind{KindInvoice, KindReceipt},
		PaperSize:   PaperSizeA4,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
	},
	{
		ID:          TemplateModern,
		Name:        "Modern",
		Description: "Dark slate header with right aligned company block",
		Kinds:       []Kind{KindInvoice, KindReceipt},
		PaperSize:   PaperSizeA4,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
	},
	{
		ID:          TemplateMinimal,
		Name:        "Minimal",
		Description: "Plain typography with hairline rules",
		Kinds:       []Kind{KindInvoice, KindReceipt},
		PaperSize:   PaperSizeA4,
		Orientation: OrientationPortrait,
		Margins:     UniformMargins(20.32),
	},
	{
		ID:          TemplateCorporate,
		Name:        "Corporate",
		Description: "Navy letterhead with boxed party details",
		Kinds:       []Kind{KindInvoice},
		PaperSize:   PaperSizeA4,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
	},
	{
		ID:          TemplateElegant,
		Name:        "Elegant",
		Description: "Serif headings with gold accents",
		Kinds:       []Kind{KindInvoice},
		PaperSize:   PaperSizeA4,
		Orientation: OrientationPortrait,
		Margins:     UniformMargins(19.05),
	},
	{
		ID:          TemplateThermal,
		Name:        "Thermal",
		Description: "Monospaced 3 inch roll for point of sale printers",
		Kinds:       []Kind{KindReceipt},
		PaperSize:   PaperSizeReceipt3in,
		Orientation: OrientationPortrait,
		Margins:     ReceiptMargins(),
	},
}

// AllTemplates returns the full template catalog
func AllTemplates() []TemplateSpec {
	out := make([]TemplateSpec, len(templateCatalog))
	copy(out, templateCatalog)
	return out
}

// TemplatesFor returns the templates available for kind k
func TemplatesFor(k Kind) []TemplateSpec {
	var out []TemplateSpec
	for _, t := range templateCatalog {
		if t.Supports(k) {
			out = append(out, t)
		}
	}
	return out
}

// LookupTemplate finds a template by id for kind k
func LookupTemplate(k Kind, id TemplateID) (TemplateSpec, bool) {
	for _, t := range templateCatalog {
		if t.ID == id && t.Supports(k) {
			return t, true
		}
	}
	return TemplateSpec{}, false
}

// TemplateIDsFor lists the template ids valid for kind k
func TemplateIDsFor(k Kind) []string {
	specs := TemplatesFor(k)
	ids := make([]string, len(specs))
	for i, t := range specs {
		ids[i] = t.ID.String()
	}
	return ids
}
