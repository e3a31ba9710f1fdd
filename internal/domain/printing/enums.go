package printing

// PaperSize represents the paper size for rendering
type PaperSize string

const (
	PaperSizeA4            PaperSize = "A4"             // 210mm x 297mm
	PaperSizeA5            PaperSize = "A5"             // 148mm x 210mm
	PaperSizeReceipt58MM   PaperSize = "RECEIPT_58MM"   // 58mm thermal receipt
	PaperSizeReceipt80MM   PaperSize = "RECEIPT_80MM"   // 80mm thermal receipt
	PaperSizeContinuous241 PaperSize = "CONTINUOUS_241" // 241mm continuous paper (dot matrix)
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeReceipt58MM, PaperSizeReceipt80MM, PaperSizeContinuous241:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the paper dimensions in millimeters (width, height)
// For receipt paper, width is the paper width and height is variable
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA4:
		return 210, 297
	case PaperSizeA5:
		return 148, 210
	case PaperSizeReceipt58MM:
		return 58, 0 // Height is variable for receipt paper
	case PaperSizeReceipt80MM:
		return 80, 0 // Height is variable for receipt paper
	case PaperSizeContinuous241:
		return 241, 0 // Height is variable for continuous paper
	default:
		return 210, 297 // Default to A4
	}
}

// IsReceipt returns true if this is a receipt paper size
func (p PaperSize) IsReceipt() bool {
	return p == PaperSizeReceipt58MM || p == PaperSizeReceipt80MM
}

// IsContinuous returns true if this is continuous feed paper
func (p PaperSize) IsContinuous() bool {
	return p == PaperSizeContinuous241
}

// AllPaperSizes returns all valid PaperSize values
func AllPaperSizes() []PaperSize {
	return []PaperSize{
		PaperSizeA4, PaperSizeA5, PaperSizeReceipt58MM, PaperSizeReceipt80MM, PaperSizeContinuous241,
	}
}

// Orientation represents the page orientation for rendering
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
