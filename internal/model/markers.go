package model

// DefaultProjectMarkers are the entries that must all be present in a
// directory for it to be treated as a project root.
var DefaultProjectMarkers = []string{"assets", "scripts", "strings", "config.json", "main.js"}

// MarkerSet is a fixed set of required directory entry names.
type MarkerSet []string

// DefaultMarkerSet returns a copy of the default project markers.
func DefaultMarkerSet() MarkerSet {
	return append(MarkerSet(nil), DefaultProjectMarkers...)
}

// MatchedBy returns true if entries contain every marker.
// An empty marker set never matches.
func (m MarkerSet) MatchedBy(entries []string) bool {
	if len(m) == 0 {
		return false
	}
	present := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		present[e] = struct{}{}
	}
	for _, marker := range m {
		if _, ok := present[marker]; !ok {
			return false
		}
	}
	return true
}
