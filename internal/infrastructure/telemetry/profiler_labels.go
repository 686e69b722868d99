package telemetry

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys.
const (
	ProfilingLabelOperation = "operation"
	ProfilingLabelKind      = "kind"
	ProfilingLabelTemplate  = "template"
	ProfilingLabelEngine    = "engine"
	ProfilingLabelMethod    = "method"
	ProfilingLabelRoute     = "route"
)

// MaxLabelValueLength caps label values to keep cardinality bounded
const MaxLabelValueLength = 64

// highCardinalityLabels are never attached to profiles
var highCardinalityLabels = map[string]bool{
	"request_id":    true,
	"generation_id": true,
	"trace_id":      true,
	"span_id":       true,
	"number":        true,
}

// WithProfilingLabels runs fn with pprof labels attached, so CPU time spent
// in fn can be filtered by label in Pyroscope.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// RenderLabels are the labels attached while a document is rendered.
func RenderLabels(kind, template, engine string) map[string]string {
	return map[string]string{
		ProfilingLabelOperation: "render",
		ProfilingLabelKind:      kind,
		ProfilingLabelTemplate:  template,
		ProfilingLabelEngine:    engine,
	}
}

// sanitizeLabels drops empty and high-cardinality labels, truncates long
// values and returns key/value pairs in key order.
func sanitizeLabels(labels map[string]string) []string {
	var pairs []string
	for _, key := range slices.Sorted(maps.Keys(labels)) {
		value := labels[key]
		name := sanitizeLabelKey(key)
		if value == "" || name == "" || highCardinalityLabels[key] {
			continue
		}
		pairs = append(pairs, name, value[:min(len(value), MaxLabelValueLength)])
	}
	return pairs
}

// sanitizeLabelKey lowercases key and keeps only [a-z0-9_]
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)

	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
