package ledger

import "fmt"

// Validation errors carry the violated numeric bound so handlers can
// surface it to the operator (e.g. "available: 40").

// OverReturnError: the returned quantity would push the stage-1 sum over
// the work order's requested quantity.
type OverReturnError struct {
	Remaining int
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("returned quantity exceeds the remaining quantity to process (remaining: %d)", e.Remaining)
}

// InvalidSplitError: reject quantities exceed the returned quantity, so
// the pass quantity would be negative.
type InvalidSplitError struct {
	Returned      int
	ReturnReject  int
	InspectReject int
}

func (e *InvalidSplitError) Error() string {
	return fmt.Sprintf("return-reject %d + inspection-reject %d exceeds returned quantity %d",
		e.ReturnReject, e.InspectReject, e.Returned)
}

// OverIssueError: the transfer quantity exceeds the source batch's
// available stock, or a batch edit would push its pass quantity below
// what transfers have already drawn.
type OverIssueError struct {
	Available int
	Drawn     int
}

func (e *OverIssueError) Error() string {
	if e.Drawn > 0 {
		return fmt.Sprintf("pass quantity would drop below the quantity already drawn by transfers (drawn: %d)", e.Drawn)
	}
	return fmt.Sprintf("transfer quantity exceeds available stock (available: %d)", e.Available)
}

// NotFoundError: a referenced parent record does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// HasDependentsError: deletion refused because downstream records still
// reference the row.
type HasDependentsError struct {
	Entity     string
	Dependents int64
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("%s still has %d dependent record(s)", e.Entity, e.Dependents)
}
