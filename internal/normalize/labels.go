package normalize

import "strings"

// CleanLabel keeps the text before the first line break and trims it.
// Published labels carry footnote markers on a second line, e.g. "Capacity\n[note 1]".
func CleanLabel(label string) string {
	if i := strings.IndexByte(label, '\n'); i >= 0 {
		label = label[:i]
	}
	return strings.TrimSpace(label)
}

// RenameLabel maps a cleaned label through the rename table, leaving unknown
// labels unchanged.
func RenameLabel(label string, renames map[string]string) string {
	if to, ok := renames[label]; ok {
		return to
	}
	return label
}

// ValidRegionCode reports whether code identifies an ICB. The national
// aggregate row carries a code of two characters or fewer.
func ValidRegionCode(code string) bool {
	return len([]rune(code)) > 2
}
