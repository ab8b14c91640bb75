// Package domain implements search domains: portable boolean filters
// written as prefix-notation sequences of operators and terms.
//
//	["|", ("Name", "=", "henka"), ("ID", "in", [10, 13, 2])]
//
// A Domain is an ordered slice of Tokens. A Token is either an Operator
// ("&", "|", "!") or a Term (left column, comparison operator, right value).
// Adjacent top-level terms without an operator are implicitly AND-ed.
//
// The package holds data and pure functions only:
//   - Normalize makes implicit ANDs explicit and checks arity.
//   - DistributeNot pushes negations down to the leaves (De Morgan).
//   - And / Or / Combine merge domains, dropping identity operands and
//     collapsing on absorbing ones.
//   - IsFalse statically evaluates what it can, as an optimization hint.
//   - Parse and the JSON codec convert from external representations.
//
// Domains are immutable once built and safe to share between goroutines.
// Functions never modify their input; they return fresh slices.
//
// This package imports nothing internal except sqlquery (for sub-query
// values), so the compiler and every adapter can depend on it.
package domain
