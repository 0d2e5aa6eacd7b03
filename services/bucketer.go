package services

import (
	"fmt"
	"math"
)

// Schedule is an ordered set of price brackets. Edges has one more element
// than Labels; bracket i covers [Edges[i], Edges[i+1]).
type Schedule struct {
	Name   string
	Edges  []float64
	Labels []string
}

// CappedSchedule covers 0–600 in steps of 50.
var CappedSchedule = newSchedule("capped",
	0, 50, 100, 150, 200, 250, 300, 350, 400, 450, 500, 550, 600)

// ExtendedSchedule covers 0–5000, widening above 600.
var ExtendedSchedule = newSchedule("extended",
	0, 100, 200, 300, 400, 500, 600, 1000, 2000, 3000, 4000, 5000)

func newSchedule(name string, edges ...float64) Schedule {
	labels := make([]string, 0, len(edges)-1)
	for i := 0; i+1 < len(edges); i++ {
		labels = append(labels, fmt.Sprintf("%g-%g", edges[i], edges[i+1]))
	}
	return Schedule{Name: name, Edges: edges, Labels: labels}
}

// ScheduleFor picks the schedule behind the "show listings above 600" toggle.
func ScheduleFor(extended bool) Schedule {
	if extended {
		return ExtendedSchedule
	}
	return CappedSchedule
}

// HasLabel reports whether label names one of the schedule's brackets.
func (s Schedule) HasLabel(label string) bool {
	for _, l := range s.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Bucket returns the label of the bracket holding price. ok is false for a
// nil or NaN price and for prices outside [first edge, last edge).
func Bucket(price *float64, s Schedule) (label string, ok bool) {
	if price == nil || math.IsNaN(*price) {
		return "", false
	}
	p := *price
	for i := 0; i+1 < len(s.Edges); i++ {
		if p >= s.Edges[i] && p < s.Edges[i+1] {
			return s.Labels[i], true
		}
	}
	return "", false
}

// PriceCategory is the coarse tier used to colour map points.
type PriceCategory string

const (
	CategoryLow         PriceCategory = "Low"
	CategoryMedium      PriceCategory = "Medium"
	CategoryHigh        PriceCategory = "High"
	CategoryUnavailable PriceCategory = "Price N/A"
)

// Color is an RGB triple.
type Color [3]uint8

var (
	ColorGreen  = Color{0, 255, 0}
	ColorYellow = Color{255, 255, 0}
	ColorRed    = Color{255, 0, 0}
	ColorGrey   = Color{169, 169, 169}
)

// Categories lists every tier with its colour, in legend order.
var Categories = []struct {
	Category PriceCategory
	Color    Color
	Legend   string
}{
	{CategoryLow, ColorGreen, "price less than 150 dollars"},
	{CategoryMedium, ColorYellow, "price between 150 and 500 dollars"},
	{CategoryHigh, ColorRed, "price above 500 dollars"},
	{CategoryUnavailable, ColorGrey, "no available price"},
}

// Classify maps a price to its tier and colour.
// A price of exactly 500 falls through to Unavailable, as does a missing one.
func Classify(price *float64) (PriceCategory, Color) {
	if price == nil || math.IsNaN(*price) {
		return CategoryUnavailable, ColorGrey
	}
	switch p := *price; {
	case p < 150:
		return CategoryLow, ColorGreen
	case p < 500:
		return CategoryMedium, ColorYellow
	case p > 500:
		return CategoryHigh, ColorRed
	default:
		return CategoryUnavailable, ColorGrey
	}
}
