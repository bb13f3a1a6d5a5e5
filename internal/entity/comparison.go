package entity

// DifferenceType names the aspect a Difference compares.
type DifferenceType string

const (
	DifferenceAmount      DifferenceType = "amount"
	DifferenceDate        DifferenceType = "date"
	DifferenceDescription DifferenceType = "description"
)

// Difference represents one compared aspect of a PO/Invoice pair.
type Difference struct {
	Type          DifferenceType `json:"type"`
	POValues      []string       `json:"poValues"`
	InvoiceValues []string       `json:"invoiceValues"`
	Match         bool           `json:"match"`
}

// ComparisonReport is the engine's verdict for a PO/Invoice pair.
type ComparisonReport struct {
	Differences     []Difference `json:"differences"`
	Recommendations []string     `json:"recommendations"`
	OverallFlag     bool         `json:"overallFlag"`
}

// RecomputeOverallFlag sets OverallFlag to the AND of every difference's Match.
// A report without differences is considered matching.
func (r *ComparisonReport) RecomputeOverallFlag() {
	flag := true
	for _, d := range r.Differences {
		if !d.Match {
			flag = false
			break
		}
	}
	r.OverallFlag = flag
}

// FindDifference returns the index of the first difference of type t, or -1.
func (r *ComparisonReport) FindDifference(t DifferenceType) int {
	for i, d := range r.Differences {
		if d.Type == t {
			return i
		}
	}
	return -1
}
