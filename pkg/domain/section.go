package domain

// SectionLength is the editor supplied size of a section.
type SectionLength string

const (
	SectionShort  SectionLength = "short"
	SectionMedium SectionLength = "medium"
	SectionLong   SectionLength = "long"
)

// Weight is the relative share of progress a section contributes.
// Unknown or empty lengths count as medium.
func (l SectionLength) Weight() float64 {
	switch l {
	case SectionShort:
		return 1
	case SectionLong:
		return 3
	}
	return 2
}

// Progress is the weighted completion of a sectioned flow, in percent.
type Progress struct {
	Completed float64 `json:"completed"`
	Current   float64 `json:"current"`
}
