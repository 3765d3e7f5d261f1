// Package command classifies free-text simulator input into results.
//
// Classification is a pure function of the registry and the input: every
// string yields exactly one Result, and identical input always yields an
// identical Result. Error and Warning are ordinary outcomes, never Go errors.
package command
