package ratio

import "fmt"

// ValidationError means the table cannot be computed at all. No partial
// result accompanies it.
type ValidationError struct {
	Marker string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Marker != "" {
		return fmt.Sprintf("validation failed: %s (marker %q)", e.Reason, e.Marker)
	}
	return "validation failed: " + e.Reason
}

// LookupMiss means an optional named row is absent. KPI derivation recovers
// from it locally.
type LookupMiss struct {
	Marker string
}

func (e *LookupMiss) Error() string {
	return fmt.Sprintf("no line item matches %q", e.Marker)
}
