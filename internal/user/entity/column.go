package entity

// ColumnKind classifies a column's declared type.
type ColumnKind int

const (
	// ColumnUnknown means no column definition was found or the type is neither
	// an enumeration nor character data.
	ColumnUnknown ColumnKind = iota
	ColumnEnum
	ColumnText
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnEnum:
		return "enum"
	case ColumnText:
		return "text"
	default:
		return "unknown"
	}
}

// ColumnDescriptor describes a column as reported by the datastore's metadata.
type ColumnDescriptor struct {
	Kind ColumnKind
	// Values lists the permitted literals of an enumerated column, in declaration order.
	Values []string
	// MaxLength is the character limit of a text column; 0 means unbounded.
	MaxLength int
}
