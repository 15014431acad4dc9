package scenario

// Scenario is the business framing of a search. It selects which enrichment
// rules apply to ranked results.
type Scenario string

// Scenario constants.
const (
	// Invalidity finds prior art that may invalidate a target patent.
	Invalidity Scenario = "invalidity"
	// Infringement monitors patents that may infringe a held patent.
	Infringement Scenario = "infringement"
	// Patentability assesses the novelty of a new invention.
	Patentability Scenario = "patentability"
	// ByID searches with a stored record's own text as the query.
	ByID Scenario = "by_id"
)

// IsValid checks if the scenario is one of the supported values.
func (s Scenario) IsValid() bool {
	return s == Invalidity || s == Infringement || s == Patentability || s == ByID
}
