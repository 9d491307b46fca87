package youtube

import (
	"fmt"
	"strings"
)

// FormatEntries renders caption entries as one timestamped line each,
// joined by newlines, in the entries' original order. Offsets are
// truncated to whole seconds; the minutes component is unbounded.
func FormatEntries(entries []CaptionEntry) string {
	var sb strings.Builder
	for i, entry := range entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		seconds := int(entry.Start)
		fmt.Fprintf(&sb, "[%02d:%02d] %s", seconds/60, seconds%60, entry.Text)
	}
	return sb.String()
}
