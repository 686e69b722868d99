package document

// Kind is the type of document being generated
type Kind string

const (
	KindInvoice Kind = "invoice"
	KindReceipt Kind = "receipt"
)

// IsValid checks if the Kind is a valid value
func (k Kind) IsValid() bool {
	switch k {
	case KindInvoice, KindReceipt:
		return true
	}
	return false
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// DisplayName returns the heading printed on the document
func (k Kind) DisplayName() string {
	switch k {
	case KindInvoice:
		return "Invoice"
	case KindReceipt:
		return "Receipt"
	default:
		return string(k)
	}
}

// NumberField is the JSON name of the document number for this kind
func (k Kind) NumberField() string {
	return string(k) + "_number"
}

// RecipientField is the JSON prefix of the recipient for this kind
func (k Kind) RecipientField() string {
	if k == KindReceipt {
		return "customer"
	}
	return "client"
}

// AllKinds returns all valid Kind values
func AllKinds() []Kind {
	return []Kind{KindInvoice, KindReceipt}
}

// TemplateID identifies a fixed layout variant
type TemplateID string

const (
	TemplateClassic   TemplateID = "classic"
	TemplateModern    TemplateID = "modern"
	TemplateMinimal   TemplateID = "minimal"
	TemplateCorporate TemplateID = "corporate"
	TemplateElegant   TemplateID = "elegant"
	TemplateThermal   TemplateID = "thermal"
)

// DefaultTemplate is used when a record does not name a template
const DefaultTemplate = TemplateClassic

// String returns the string representation of TemplateID
func (t TemplateID) String() string {
	return string(t)
}

// PaperSize represents the paper size of a template
type PaperSize string

const (
	PaperSizeA4         PaperSize = "A4"          // 210mm x 297mm
	PaperSizeLetter     PaperSize = "LETTER"      // 215.9mm x 279.4mm
	PaperSizeReceipt3in PaperSize = "RECEIPT_3IN" // 3in x 11in thermal roll
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeLetter, PaperSizeReceipt3in:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the paper dimensions in millimeters (width, height)
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperSizeA4:
		return 210, 297
	case PaperSizeLetter:
		return 215.9, 279.4
	case PaperSizeReceipt3in:
		return 76.2, 279.4
	default:
		return 210, 297
	}
}

// IsReceipt returns true if this is a receipt roll
func (p PaperSize) IsReceipt() bool {
	return p == PaperSizeReceipt3in
}

// Orientation represents the page orientation
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// String returns the string representation of Orientation
func (o Orientation) String() string {
	return string(o)
}

// GenerationStatus represents the state of a generation request
type GenerationStatus string

const (
	StatusReceived  GenerationStatus = "RECEIVED"
	StatusValidated GenerationStatus = "VALIDATED"
	StatusRendering GenerationStatus = "RENDERING"
	StatusCompleted GenerationStatus = "COMPLETED"
	StatusRejected  GenerationStatus = "REJECTED"
	StatusFailed    GenerationStatus = "FAILED"
)

// IsValid checks if the GenerationStatus is a valid value
func (s GenerationStatus) IsValid() bool {
	switch s {
	case StatusReceived, StatusValidated, StatusRendering, StatusCompleted, StatusRejected, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of GenerationStatus
func (s GenerationStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this is a terminal status (no further transitions)
func (s GenerationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusFailed
}

// CanTransitionTo checks if the status can transition to the target status
func (s GenerationStatus) CanTransitionTo(target GenerationStatus) bool {
	switch s {
	case StatusReceived:
		return target == StatusValidated || target == StatusRejected
	case StatusValidated:
		return target == StatusRendering || target == StatusFailed
	case StatusRendering:
		return target == StatusCompleted || target == StatusFailed
	case StatusCompleted, StatusRejected, StatusFailed:
		return false
	}
	return false
}
