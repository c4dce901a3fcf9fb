package utils

import "golang.org/x/text/cases"

// Fold returns the Unicode case folding of s. A Caser is stateful, so one is
// built per call.
func Fold(s string) string { return cases.Fold().String(s) }

func EqualFold(a, b string) bool { return Fold(a) == Fold(b) }
