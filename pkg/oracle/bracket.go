package oracle

import "strings"

// Bracket recognizes the compact notation
//
//	$(id)-{
//	}-$
//
// Bracket regions are always enabled.
type Bracket struct{}

// IsMarkedRegionStart implements Oracle.
func (Bracket) IsMarkedRegionStart(comment string) bool {
	s := strings.TrimSpace(comment)
	return strings.HasPrefix(s, "$(") && strings.HasSuffix(s, ")-{") && len(s) > len("$()-{")
}

// IsMarkedRegionEnd implements Oracle.
func (Bracket) IsMarkedRegionEnd(comment string) bool {
	return strings.TrimSpace(comment) == "}-$"
}

// ID implements Oracle.
func (Bracket) ID(start string) string {
	return idBetweenParens(start)
}

// IsEnabled implements Oracle.
func (Bracket) IsEnabled(string) bool { return true }
