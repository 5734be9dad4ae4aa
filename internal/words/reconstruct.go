package words

import "github.com/ironsheep/ocr-monitor-mcp/internal/monitor"

// Reconstruct groups events into words in a single pass.
//
// The result never reorders events and is empty, not nil, for empty input.
func Reconstruct(events []monitor.Event) []Word {
	out := make([]Word, 0)
	line := 0
	var cur *Word

	for _, ev := range events {
		if cur != nil {
			switch {
			case ev.Blanks > 0:
				out = append(out, cur.finalize())
				cur = nil
			case ev.Left <= cur.Box.Left || ev.Top >= cur.Box.Bottom:
				out = append(out, cur.finalize())
				cur = nil
				line++
			}
		}
		if cur == nil {
			cur = newWord(line, ev)
		}
		cur.add(ev)
	}
	if cur != nil {
		out = append(out, cur.finalize())
	}
	return out
}

// FromSnapshot validates s and reconstructs its events.
func FromSnapshot(s monitor.Snapshot) (ResultSet, error) {
	if err := s.Validate(); err != nil {
		return ResultSet{}, err
	}
	return ResultSet{Words: Reconstruct(s.Events)}, nil
}
