package printing

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/invoicegen/backend/internal/domain/document"
)

//go:embed templates/*.html
var templateFS embed.FS

const documentTemplatePath = "templates/document.html"

// HTMLTheme holds the CSS values one template applies to the shared HTML layout
type HTMLTheme struct {
	FontFamily   template.CSS
	Accent       template.CSS
	Text         template.CSS
	Muted        template.CSS
	Zebra        template.CSS
	TitleAlign   template.CSS
	CompanyAlign template.CSS
	TitleSize    float64
	Band         bool
	HeaderRule   bool
	BoxedParties bool
	GridTable    bool
	PlainHeader  bool
}

// ThemeFor derives the HTML theme from the same style table the gofpdf
// engine draws with, so both engines agree on colors and placement.
func ThemeFor(id document.TemplateID) HTMLTheme {
	s := styleFor(id)
	family := `Helvetica, Arial, sans-serif`
	if s.font == "Times" {
		family = `Georgia, "Times New Roman", serif`
	}
	zebra := template.CSS("transparent")
	if s.zebra != nil {
		zebra = cssColor(*s.zebra)
	}
	return HTMLTheme{
		FontFamily:   template.CSS(family),
		Accent:       cssColor(s.accent),
		Text:         cssColor(s.text),
		Muted:        cssColor(s.muted),
		Zebra:        zebra,
		TitleAlign:   cssAlign(s.titleAlign),
		CompanyAlign: cssAlign(s.companyAlign),
		TitleSize:    s.titleSize,
		Band:         s.band,
		HeaderRule:   s.headerRule,
		BoxedParties: s.boxedParties,
		GridTable:    s.gridTable,
		PlainHeader:  s.plainHeader,
	}
}

// LoadTemplateContent loads an embedded HTML layout
func LoadTemplateContent(filePath string) (string, error) {
	content, err := templateFS.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", filePath, err)
	}
	return string(content), nil
}

func cssColor(c rgb) template.CSS {
	return template.CSS(fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b))
}

func cssAlign(a string) template.CSS {
	switch a {
	case "C":
		return "center"
	case "R":
		return "right"
	default:
		return "left"
	}
}
