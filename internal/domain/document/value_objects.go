package document

import "github.com/invoicegen/backend/internal/domain/shared"

const maxMarginMM = 100

// Margins represents the page margins in millimeters
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// NewMargins creates a new Margins value object
func NewMargins(top, right, bottom, left float64) (Margins, error) {
	if top < 0 || right < 0 || bottom < 0 || left < 0 {
		return Margins{}, shared.NewDomainError(shared.CodeInvalidMargins, "Margins cannot be negative")
	}
	if top > maxMarginMM || right > maxMarginMM || bottom > maxMarginMM || left > maxMarginMM {
		return Margins{}, shared.Errorf(shared.CodeInvalidMargins, "Margins cannot exceed %vmm", maxMarginMM)
	}
	return Margins{Top: top, Right: right, Bottom: bottom, Left: left}, nil
}

// UniformMargins returns equal margins on every side
func UniformMargins(mm float64) Margins {
	return Margins{Top: mm, Right: mm, Bottom: mm, Left: mm}
}

// DefaultMargins returns half-inch margins for full page documents
func DefaultMargins() Margins {
	return UniformMargins(12.7)
}

// ReceiptMargins returns minimal margins suitable for receipt paper
func ReceiptMargins() Margins {
	return UniformMargins(2.54)
}

// IsZero returns true if all margins are zero
func (m Margins) IsZero() bool {
	return m.Top == 0 && m.Right == 0 && m.Bottom == 0 && m.Left == 0
}

// Equals checks if two Margins are equal
func (m Margins) Equals(other Margins) bool {
	return m == other
}
