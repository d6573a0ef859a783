// Package analysis maintains the measurement history, control/target
// matching, exclusions, and group statistics of one quantification session.
package analysis

// Kind distinguishes the two measurement roles.
type Kind int

const (
	// LoadingControl is a reference protein used to normalize for unequal
	// sample loading (e.g. Actin, Ponceau).
	LoadingControl Kind = iota
	// Target is the protein of biological interest.
	Target
)

func (k Kind) String() string {
	switch k {
	case LoadingControl:
		return "Loading Control"
	case Target:
		return "Target"
	default:
		return "Unknown"
	}
}

// Canonical group labels. Group labels are free-form, but percent change and
// the significance test only apply when exactly these two are compared.
const (
	GroupControl   = "Control"
	GroupTreatment = "Treatment"
)

// Default detail labels used when the user leaves the group detail blank.
const (
	DetailNone    = "None"
	DetailGeneric = "Generic Treatment"
)

// Record is one measurement in the history. Records are immutable once
// appended; Seq is the record's position in the history at append time.
type Record struct {
	Kind        Kind
	Group       string
	Detail      string
	Name        string
	Intensities []float64
	Seq         int
}

// Ratio is one lane's normalized target/control value. Defined is false
// when the ratio cannot be computed (either intensity not strictly
// positive, or the lane index out of range on either side); an undefined
// ratio renders as a placeholder, never as an error or NaN.
type Ratio struct {
	Value   float64
	Defined bool
}

// Spec describes one requested measurement before it is committed to the
// history.
type Spec struct {
	Kind   Kind
	Group  string
	Detail string
	Name   string

	// EqualN splits the intensity sequence at its midpoint into a Control
	// and a Treatment record appended as one transaction.
	EqualN bool

	// StartLane is the 1-based lane number the sequence begins at. Values
	// above 1 left-pad the intensities with zero placeholders so numbering
	// continues across blots.
	StartLane int

	Intensities []float64
}
