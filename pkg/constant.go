package pkg

const (
	// an edge variable is read as cut when its value is above this threshold
	CUT_THRESHOLD float64 = 0.5

	// maximum distance from {0,1} accepted for a value handed to the separator
	INTEGRALITY_TOLERANCE float64 = 1e-6

	OBJECTIVE_EPSILON float64 = 1e-9
)

const (
	ENGINE_BRANCH_AND_BOUND = "bnb"
	ENGINE_MAXSAT           = "maxsat"
)

const (
	DEFAULT_WORKERS    = 4
	DEFAULT_COST_SCALE = 1
)
