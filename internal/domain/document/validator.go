package document

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Field limits bounding the cost of a single render
const (
	MaxNumberLength   = 64
	MaxNameLength     = 200
	MaxAddressLength  = 500
	MaxCommentsLength = 2000
	MaxItems          = 500
	MaxDescription    = 500
)

// ValidateRecord normalizes r in place and checks that it can be rendered.
// All failing fields are reported together in a single ValidationError.
func ValidateRecord(r *DocumentRecord) error {
	verr := &ValidationError{}

	if !r.Kind.IsValid() {
		verr.Add("kind", CodeInvalid, fmt.Sprintf("unsupported document kind %q", r.Kind))
		return verr
	}

	if err := r.Normalize(); err != nil {
		verr.Add("currency", CodeInvalid, err.Error())
	}

	if r.Number == "" {
		verr.Add(r.Kind.NumberField(), CodeRequired, "document number is required")
	} else {
		checkLength(verr, r.Kind.NumberField(), r.Number, MaxNumberLength)
	}

	if !r.Issuer.HasName() && !r.Recipient.HasName() {
		verr.Add("company.name", CodeRequired,
			fmt.Sprintf("company name or %s name is required", r.Kind.RecipientField()))
	}
	checkLength(verr, "company.name", r.Issuer.Name, MaxNameLength)
	checkLength(verr, "company.address", r.Issuer.Address, MaxAddressLength)
	checkLength(verr, r.Kind.RecipientField()+"_name", r.Recipient.Name, MaxNameLength)
	checkLength(verr, r.Kind.RecipientField()+"_address", r.Recipient.Address, MaxAddressLength)
	checkLength(verr, "comments", r.Comments, MaxCommentsLength)

	if _, ok := LookupTemplate(r.Kind, r.Template); !ok {
		verr.Add("template", CodeInvalid, fmt.Sprintf("unknown %s template %q, expected one of: %s",
			r.Kind, r.Template, strings.Join(TemplateIDsFor(r.Kind), ", ")))
	}

	if len(r.Items) > MaxItems {
		verr.Add("items", CodeTooLong, fmt.Sprintf("at most %d items are allowed", MaxItems))
	} else if len(r.Items.Included()) == 0 {
		verr.Add("items", CodeNoValidItems, "no valid items")
	}
	for i, item := range r.Items {
		checkLength(verr, fmt.Sprintf("items[%d].description", i), item.Description, MaxDescription)
	}

	// Numeric checks are shared with the calculator so both reject the same inputs.
	if _, err := CalculateRecordTotals(r); err != nil {
		var calcErr *ValidationError
		if errors.As(err, &calcErr) {
			verr.Merge(calcErr)
		}
	}

	return verr.OrNil()
}

func checkLength(verr *ValidationError, field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		verr.Add(field, CodeTooLong, fmt.Sprintf("must be at most %d characters", limit))
	}
}
