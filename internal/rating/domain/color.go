package domain

import (
	"errors"
	"fmt"
)

// Color is the categorical label rendered next to a rating.
type Color string

const (
	ColorPoor      Color = "poor"
	ColorFair      Color = "fair"
	ColorGood      Color = "good"
	ColorExcellent Color = "excellent"
)

var colorRank = map[Color]int{
	ColorPoor:      0,
	ColorFair:      1,
	ColorGood:      2,
	ColorExcellent: 3,
}

// Rank orders colors from worst to best. Unknown colors rank -1.
func (c Color) Rank() int {
	rank, ok := colorRank[c]
	if !ok {
		return -1
	}
	return rank
}

// ColorBand assigns Label to every value >= Min, up to the next band.
type ColorBand struct {
	Label Color   `json:"label" mapstructure:"label"`
	Min   float64 `json:"min" mapstructure:"min"`
}

// ColorPolicy holds one band table for aggregate averages and one for a
// single fresh rating.
type ColorPolicy struct {
	Average []ColorBand `json:"average" mapstructure:"average"`
	Single  []ColorBand `json:"single" mapstructure:"single"`
}

// DefaultColorPolicy is used when no policy file is present.
func DefaultColorPolicy() ColorPolicy {
	return ColorPolicy{
		Average: []ColorBand{
			{Label: ColorPoor, Min: 0},
			{Label: ColorFair, Min: 2.5},
			{Label: ColorGood, Min: 3.5},
			{Label: ColorExcellent, Min: 4.5},
		},
		Single: []ColorBand{
			{Label: ColorPoor, Min: 0},
			{Label: ColorFair, Min: 3},
			{Label: ColorGood, Min: 4},
			{Label: ColorExcellent, Min: 5},
		},
	}
}

var ErrInvalidColorPolicy = errors.New("invalid_color_policy")

// Validate checks that both tables start at RatingMin, ascend strictly and
// never assign a worse label to a higher band.
func (p ColorPolicy) Validate() error {
	if err := validateBands("average", p.Average); err != nil {
		return err
	}
	return validateBands("single", p.Single)
}

func validateBands(name string, bands []ColorBand) error {
	if len(bands) == 0 {
		return fmt.Errorf("%w: %s table is empty", ErrInvalidColorPolicy, name)
	}
	if bands[0].Min > RatingMin {
		return fmt.Errorf("%w: %s table must start at %v", ErrInvalidColorPolicy, name, RatingMin)
	}
	for i, band := range bands {
		if band.Label.Rank() < 0 {
			return fmt.Errorf("%w: %s table has unknown label %q", ErrInvalidColorPolicy, name, band.Label)
		}
		if i == 0 {
			continue
		}
		prev := bands[i-1]
		if band.Min <= prev.Min {
			return fmt.Errorf("%w: %s thresholds must ascend", ErrInvalidColorPolicy, name)
		}
		if band.Label.Rank() < prev.Label.Rank() {
			return fmt.Errorf("%w: %s label %q ranks below %q", ErrInvalidColorPolicy, name, band.Label, prev.Label)
		}
	}
	return nil
}

// Classify maps a rating value to its color. single selects the table for an
// individual rating rather than an average.
func (p ColorPolicy) Classify(value float64, single bool) Color {
	bands := p.Average
	if single {
		bands = p.Single
	}
	if len(bands) == 0 {
		return ColorPoor
	}
	color := bands[0].Label
	for _, band := range bands {
		if value < band.Min {
			break
		}
		color = band.Label
	}
	return color
}
