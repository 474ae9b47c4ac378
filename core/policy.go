package core

import (
	"fmt"

	"github.com/huangsam/gapcheck/core/algo"
	"github.com/huangsam/gapcheck/schema"
)

// Policy decides whether a period is too incomplete to trust.
// IsMissing must depend only on the period's null flags and its expected count.
type Policy interface {
	Name() schema.PolicyName
	// CheckFrequency rejects partitioning frequencies the policy cannot work with.
	CheckFrequency(freq Frequency) error
	// Validate rejects out-of-range parameters with ErrInvalidParameter.
	Validate() error
	IsMissing(p Period, expected int) bool
}

// AnyPolicy flags a period when any day is absent or null.
type AnyPolicy struct{}

// WMOPolicy applies the World Meteorological Organization monthly rule:
// a month is missing with NM or more null days, or a null run of NC days or longer.
type WMOPolicy struct {
	NM int `mapstructure:"nm" json:"nm" validate:"lt=31"`
	NC int `mapstructure:"nc" json:"nc" validate:"lt=31"`
}

// PctPolicy flags a period when the missing fraction reaches Tolerance.
type PctPolicy struct {
	Tolerance float64 `mapstructure:"tolerance" json:"tolerance" validate:"gte=0,lte=1"`
}

// AtLeastNPolicy flags a period holding fewer than N valid values.
type AtLeastNPolicy struct {
	N int `mapstructure:"n" json:"n" validate:"gt=0"`
}

var (
	_ Policy = AnyPolicy{}
	_ Policy = WMOPolicy{}
	_ Policy = PctPolicy{}
	_ Policy = AtLeastNPolicy{}
)

// countMismatch is shared by the any and wmo rules.
func countMismatch(p Period, expected int) bool {
	return p.Observed() != expected
}

func (AnyPolicy) Name() schema.PolicyName { return schema.AnyPolicy }
func (AnyPolicy) CheckFrequency(Frequency) error { return nil }
func (AnyPolicy) Validate() error { return nil }
func (AnyPolicy) IsMissing(p Period, expected int) bool {
	return countMismatch(p, expected) || p.NullCount() > 0
}

func (WMOPolicy) Name() schema.PolicyName { return schema.WMOPolicy }

func (WMOPolicy) CheckFrequency(freq Frequency) error {
	if !freq.IsMonthly() {
		return fmt.Errorf("%w: the wmo policy needs a monthly frequency, got %q", ErrInvalidFrequency, freq.Token)
	}
	return nil
}

func (w WMOPolicy) Validate() error { return validateStruct(ErrInvalidParameter, w) }

func (w WMOPolicy) IsMissing(p Period, expected int) bool {
	return countMismatch(p, expected) ||
		p.NullCount() >= w.NM ||
		algo.LongestRun(p.Nulls) >= w.NC
}

func (PctPolicy) Name() schema.PolicyName { return schema.PctPolicy }
func (PctPolicy) CheckFrequency(Frequency) error { return nil }

func (pp PctPolicy) Validate() error { return validateStruct(ErrInvalidParameter, pp) }

func (pp PctPolicy) IsMissing(p Period, expected int) bool {
	if expected == 0 {
		return false
	}
	return MissingFraction(p, expected) >= pp.Tolerance
}

func (AtLeastNPolicy) Name() schema.PolicyName { return schema.AtLeastNPolicy }
func (AtLeastNPolicy) CheckFrequency(Frequency) error { return nil }

func (a AtLeastNPolicy) Validate() error { return validateStruct(ErrInvalidParameter, a) }

func (a AtLeastNPolicy) IsMissing(p Period, _ int) bool {
	return p.Observed()-p.NullCount() < a.N
}

// MissingFraction is the share of expected values that are absent or null.
// It is zero when nothing is expected.
func MissingFraction(p Period, expected int) float64 {
	if expected == 0 {
		return 0
	}
	return float64(expected-p.Observed()+p.NullCount()) / float64(expected)
}
