package words

import "github.com/ironsheep/ocr-monitor-mcp/internal/monitor"

// Box is a pixel bounding box with rows growing downward.
type Box struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Word is a run of consecutive events grouped by Reconstruct.
type Word struct {
	LineIndex  int                `json:"line_index"`
	Text       string             `json:"text"`
	Box        Box                `json:"box"`
	Confidence float64            `json:"confidence"`
	FontIndex  int                `json:"font_index"`
	PointSize  int                `json:"point_size"`
	Formatting monitor.Formatting `json:"formatting"`
	Blanks     int                `json:"blanks"`
	Chars      []monitor.Event    `json:"chars,omitempty"`

	confSum int
}

func newWord(line int, ev monitor.Event) *Word {
	return &Word{
		LineIndex:  line,
		Box:        Box{Left: ev.Left, Top: ev.Top, Right: ev.Right, Bottom: ev.Bottom},
		FontIndex:  ev.FontIndex,
		PointSize:  ev.PointSize,
		Formatting: ev.Formatting,
		Blanks:     ev.Blanks,
	}
}

func (w *Word) add(ev monitor.Event) {
	w.Chars = append(w.Chars, ev)
	w.Box.Left = min(w.Box.Left, ev.Left)
	w.Box.Top = min(w.Box.Top, ev.Top)
	w.Box.Right = max(w.Box.Right, ev.Right)
	w.Box.Bottom = max(w.Box.Bottom, ev.Bottom)
	w.confSum += int(ev.Confidence)
}

func (w *Word) finalize() Word {
	text := make([]rune, len(w.Chars))
	for i, ev := range w.Chars {
		text[i] = ev.Code
	}
	w.Text = string(text)
	w.Confidence = float64(w.confSum) / float64(len(w.Chars))
	return *w
}

// Newline reports the newline type recorded on the word's last character.
func (w Word) Newline() monitor.NewlineType {
	if len(w.Chars) == 0 {
		return monitor.NewlineNone
	}
	return w.Chars[len(w.Chars)-1].Formatting.Newline()
}
