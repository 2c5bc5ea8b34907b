package efficiency

// Category names a problem class. A station may belong to several.
type Category string

const (
	AlwaysEmpty   Category = "always_empty"
	AlwaysFull    Category = "always_full"
	LowEfficiency Category = "low_efficiency"
	Inactive      Category = "inactive"
	Oversized     Category = "oversized"
	Undersized    Category = "undersized"
)

// Categories lists every problem category in reporting order.
var Categories = []Category{AlwaysEmpty, AlwaysFull, LowEfficiency, Inactive, Oversized, Undersized}

// Classification thresholds.
const (
	LowEfficiencyThreshold = 0.3
	OversizedUtilization   = 0.1
	UndersizedUtilization  = 0.9
)

// ProblemReport maps each category to the records that fall in it. Every
// category is present, possibly with an empty slice.
type ProblemReport map[Category][]Record

// Count returns the number of stations in the category.
func (p ProblemReport) Count(c Category) int { return len(p[c]) }

// IDs returns the station identifiers in the category, in record order.
func (p ProblemReport) IDs(c Category) []string {
	ids := make([]string, len(p[c]))
	for i, r := range p[c] {
		ids[i] = r.ID
	}
	return ids
}

// Matches evaluates a single category predicate against the record.
func Matches(c Category, r Record) bool {
	switch c {
	case AlwaysEmpty:
		return r.AvailableBikes == 0
	case AlwaysFull:
		return r.FreeSlots == 0
	case LowEfficiency:
		return r.EfficiencyScore < LowEfficiencyThreshold
	case Inactive:
		return !r.Working()
	case Oversized:
		return r.UtilizationRate < OversizedUtilization
	case Undersized:
		return r.UtilizationRate > UndersizedUtilization
	}
	return false
}

// Classify evaluates every category independently for each record.
func Classify(records []Record) ProblemReport {
	rep := make(ProblemReport, len(Categories))
	for _, c := range Categories {
		rep[c] = []Record{}
	}
	for _, r := range records {
		for _, c := range Categories {
			if Matches(c, r) {
				rep[c] = append(rep[c], r)
			}
		}
	}
	return rep
}
