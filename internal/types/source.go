package types

// Origin tells where a SourceUnit's text came from.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
	OriginMirror Origin = "mirror"
)

// SourceUnit is one text blob returned by the catalog for a unit name.
// Several units may share a name (local and remote copies, partial files);
// all of them contribute.
type SourceUnit struct {
	Name    string `json:"name"`
	Origin  Origin `json:"origin"`
	Content string `json:"content"`
}

// DedupeUnits drops units whose content was already seen, preserving
// first-seen order. Local and remote copies are frequently byte-identical.
func DedupeUnits(units []SourceUnit) []SourceUnit {
	if len(units) < 2 {
		return units
	}
	seen := make(map[string]struct{}, len(units))
	out := make([]SourceUnit, 0, len(units))
	for _, u := range units {
		if _, ok := seen[u.Content]; ok {
			continue
		}
		seen[u.Content] = struct{}{}
		out = append(out, u)
	}
	return out
}
