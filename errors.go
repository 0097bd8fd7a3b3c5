package certgen

import "errors"

// Sentinel errors for library operations.
var (
	ErrTemplateLoad = errors.New("failed to load template image")
	ErrFontLoad     = errors.New("failed to load font")
	ErrFaceCreate   = errors.New("failed to create font face")
	ErrPoolClosed   = errors.New("face pool is closed")
	ErrEmptyName    = errors.New("name cannot be empty")

	// Rendering errors.
	ErrTextOverflow = errors.New("text does not fit in the text box")
	ErrImageWrite   = errors.New("failed to write certificate image")
	ErrImageVerify  = errors.New("certificate image failed verification")
	ErrPDFWrite     = errors.New("failed to write certificate document")

	// Merge errors.
	ErrNothingToMerge = errors.New("no certificates to merge")
	ErrMergeWrite     = errors.New("failed to write combined document")
	ErrMergeRead      = errors.New("failed to read certificate document")

	// Layout validation errors.
	ErrInvalidFontSize = errors.New("invalid font size")
	ErrInvalidTextBox  = errors.New("invalid text box")
	ErrInvalidColor    = errors.New("invalid text color")

	// Table errors.
	ErrReadTable        = errors.New("failed to read name table")
	ErrUnsupportedTable = errors.New("unsupported table format")
	ErrColumnNotFound   = errors.New("name column not found")
	ErrSheetNotFound    = errors.New("sheet not found")
)
