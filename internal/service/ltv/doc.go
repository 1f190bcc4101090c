// Package ltv implements customer lifetime value, RFM segmentation, and
// cohort retention analysis.
//
// All calculations are pure functions over conversion history read through
// the ConversionSource interface. A contact with no conversions is a valid
// input everywhere and produces zero-valued results, never an error.
package ltv
