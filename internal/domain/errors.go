package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyWindow is returned when Min/Max is queried on a window that has
// not received any price yet. This is a programmer error: the trading loop
// never evaluates an empty window.
var ErrEmptyWindow = errors.New("price window is empty")

// InvalidSizingInputError reports sizing inputs that make the position size
// formula undefined (zero stop-loss distance or non-positive price).
type InvalidSizingInputError struct {
	Reason string
}

func (e *InvalidSizingInputError) Error() string {
	return fmt.Sprintf("invalid sizing input: %s", e.Reason)
}

// AssetNotFoundError reports an asset missing from the exchange universe.
type AssetNotFoundError struct {
	Asset string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("asset %s not found in exchange metadata", e.Asset)
}

// EntryRejectedError reports a market entry the exchange did not fill:
// non-ok status, an explicit rejection, or a malformed response missing the
// fill price.
type EntryRejectedError struct {
	Coin   string
	Reason string
}

func (e *EntryRejectedError) Error() string {
	return fmt.Sprintf("entry order rejected for %s: %s", e.Coin, e.Reason)
}

// ExitOrderRejectedError reports one failed protective leg. Leg is the
// trigger role of the order that failed (sl or tp).
type ExitOrderRejectedError struct {
	Coin string
	Leg  TriggerRole
	Err  error
}

func (e *ExitOrderRejectedError) Error() string {
	return fmt.Sprintf("%s order rejected for %s: %v", e.Leg, e.Coin, e.Err)
}

func (e *ExitOrderRejectedError) Unwrap() error { return e.Err }

// UnprotectedPositionError is the highest-severity failure: the entry order
// filled but at least one protective exit was rejected, so a live position
// exists without its stop-loss and/or take-profit. Callers must surface it
// distinctly, never fold it into ordinary skipped-cycle logging.
type UnprotectedPositionError struct {
	Coin       string
	Side       Side
	Size       float64
	EntryPrice float64
	Legs       []*ExitOrderRejectedError
}

func (e *UnprotectedPositionError) Error() string {
	return fmt.Sprintf("UNPROTECTED POSITION: %s %s size=%v entry=%v, %d exit order(s) rejected",
		e.Side, e.Coin, e.Size, e.EntryPrice, len(e.Legs))
}

func (e *UnprotectedPositionError) Unwrap() []error {
	errs := make([]error, len(e.Legs))
	for i, l := range e.Legs {
		errs[i] = l
	}
	return errs
}

// FailedLegs lists the roles of the rejected exits.
func (e *UnprotectedPositionError) FailedLegs() []TriggerRole {
	roles := make([]TriggerRole, len(e.Legs))
	for i, l := range e.Legs {
		roles[i] = l.Leg
	}
	return roles
}

// TransportError wraps a network or decoding failure talking to the
// exchange, keeping the failed operation name for logging.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("exchange %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
