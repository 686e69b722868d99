package printing

import (
	"bytes"
	"context"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/invoicegen/backend/internal/domain/document"
)

// TemplateEngine binds document views to the embedded HTML layout.
// It uses Go's html/template package, so every value is escaped.
type TemplateEngine struct {
	funcMap template.FuncMap
	tmpl    *template.Template
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithFuncs adds or overrides template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// htmlData is the root value the layout is executed with
type htmlData struct {
	View    *DocumentView
	Theme   HTMLTheme
	Thermal bool
	Receipt bool
}

// NewTemplateEngine parses the embedded layout once
func NewTemplateEngine(opts ...TemplateEngineOption) (*TemplateEngine, error) {
	e := &TemplateEngine{
		funcMap: template.FuncMap{
			"upper":          strings.ToUpper,
			"repeat":         strings.Repeat,
			"dataURL":        dataURL,
			"formatDateTime": formatDateTime,
		},
	}
	for _, opt := range opts {
		opt(e)
	}

	content, err := LoadTemplateContent(documentTemplatePath)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to load layout", err)
	}
	tmpl, err := template.New("document").Funcs(e.funcMap).Parse(content)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse layout", err)
	}
	e.tmpl = tmpl
	return e, nil
}

// RenderView produces a complete HTML document for the view
func (e *TemplateEngine) RenderView(ctx context.Context, view *DocumentView) (string, error) {
	if view == nil {
		return "", NewRenderError(ErrCodeInvalidRequest, "view is nil", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", NewRenderError(ErrCodeRenderTimeout, "HTML rendering was cancelled", err)
	}

	data := htmlData{
		View:    view,
		Theme:   ThemeFor(view.Template),
		Thermal: view.Template == document.TemplateThermal,
		Receipt: view.Kind == document.KindReceipt,
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	result := make(template.FuncMap, len(e.funcMap))
	maps.Copy(result, e.funcMap)
	return result
}

// dataURL marks a processed attachment as a trusted image source.
// The bytes were re-encoded as PNG by the attachment processor.
func dataURL(img *Image) template.URL {
	if img == nil {
		return ""
	}
	return template.URL(img.DataURL())
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}
