package pool

// Reason records why a path was kept or dropped.
type Reason int

const (
	// ReasonExtension means the file extension is on the source allow-list.
	ReasonExtension Reason = iota
	// ReasonType means the probe reported a source-code MIME type.
	ReasonType
	// ReasonExclude means the probe reported some other type.
	ReasonExclude
)

// Label returns the fixed-width tag printed in inspect mode.
func (r Reason) Label() string {
	switch r {
	case ReasonExtension:
		return "Include [.ext]"
	case ReasonType:
		return "Include [mime]"
	default:
		return "Exclude [----]"
	}
}

// String implements fmt.Stringer.
func (r Reason) String() string {
	switch r {
	case ReasonExtension:
		return "extension"
	case ReasonType:
		return "type"
	default:
		return "exclude"
	}
}

// Decision is the classification outcome for one path.
type Decision struct {
	Path   string
	Reason Reason
	// MIMEType is empty for extension matches, which never run a probe.
	MIMEType string
}

// Included reports whether the path goes to the indexers.
func (d Decision) Included() bool {
	return d.Reason != ReasonExclude
}
