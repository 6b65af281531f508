package drone

import (
	"errors"
	"fmt"

	"dronedispatch/internal/pkg/errs"
)

// Specs are the capability limits of a drone airframe.
// The planner rejects an order whose payload, distance or battery need exceeds them.
//
// Example:
//
//	specs := drone.Specs{PayloadMaxGrams: 2000, RangeKm: 10, SpeedKmh: 60}
//	if err := specs.Validate(); err != nil {
//	    // Handle invalid limits
//	}
type Specs struct {
	// PayloadMaxGrams is the heaviest load the drone can lift.
	PayloadMaxGrams int
	// RangeKm is the longest one-way distance the drone may be sent.
	RangeKm float64
	// SpeedKmh is the cruise speed used for ETA estimates.
	SpeedKmh float64
}

// Validate requires every limit to be strictly positive and joins one error per
// offending field.
func (s Specs) Validate() error {
	var errList []error
	if s.PayloadMaxGrams <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("payloadMaxGrams",
			fmt.Errorf("%d is not greater than 0", s.PayloadMaxGrams)))
	}
	if s.RangeKm <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("rangeKm",
			fmt.Errorf("%v is not greater than 0", s.RangeKm)))
	}
	if s.SpeedKmh <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("speedKmh",
			fmt.Errorf("%v is not greater than 0", s.SpeedKmh)))
	}
	return errors.Join(errList...)
}
