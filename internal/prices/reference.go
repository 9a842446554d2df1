package prices

import (
	"fmt"

	"tradewind/internal/domain"
)

// Ref is one security's reference attributes with nullable fields resolved:
// PriceMagnifier and Multiplier default to 1 when absent. The quoted price
// divided by PriceMagnifier is the true price; true price times Multiplier is
// the per-unit notional value.
type Ref struct {
	ConID          int64
	Symbol         string
	Timezone       string
	SecType        string
	Currency       string
	PriceMagnifier float64
	Multiplier     float64
}

// ReferenceError reports missing or unusable security reference data. It is
// a configuration fault and fatal to the invocation.
type ReferenceError struct {
	ConID  int64
	Reason string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("reference data for security %d: %s", e.ConID, e.Reason)
}

// ResolveRefs normalizes the security master into per-security Refs. Absent
// PriceMagnifier/Multiplier become 1; a non-positive value is rejected
// because it would corrupt or zero the per-unit value during sizing.
func ResolveRefs(securities []domain.Security) (map[int64]Ref, error) {
	refs := make(map[int64]Ref, len(securities))
	for _, sec := range securities {
		magnifier, err := resolveScalar(sec.PriceMagnifier, sec.ConID, "price magnifier")
		if err != nil {
			return nil, err
		}
		multiplier, err := resolveScalar(sec.Multiplier, sec.ConID, "multiplier")
		if err != nil {
			return nil, err
		}
		refs[sec.ConID] = Ref{
			ConID:          sec.ConID,
			Symbol:         sec.Symbol,
			Timezone:       sec.Timezone,
			SecType:        sec.SecType,
			Currency:       sec.Currency,
			PriceMagnifier: magnifier,
			Multiplier:     multiplier,
		}
	}
	return refs, nil
}

func resolveScalar(v *float64, conID int64, name string) (float64, error) {
	if v == nil {
		return 1, nil
	}
	if *v <= 0 {
		return 0, &ReferenceError{ConID: conID, Reason: "non-positive " + name}
	}
	return *v, nil
}
