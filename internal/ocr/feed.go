package ocr

import (
	"errors"
	"image"
	"math"

	"github.com/ironsheep/ocr-monitor-mcp/internal/monitor"
)

// DefaultDPI is assumed when the page does not carry a resolution.
const DefaultDPI = 300

// FeedStats summarizes one Feed call.
type FeedStats struct {
	Glyphs    int  `json:"glyphs"`
	Appended  int  `json:"appended"`
	Skipped   int  `json:"skipped"`
	Dropped   int  `json:"dropped"`
	Truncated bool `json:"truncated"`
}

// Feed appends every glyph of page to buf in reading order.
//
// The first glyph of each word after the first on its line carries one
// blank; the last glyph of a line carries a newline, or a paragraph mark
// when it ends the block. A line that starts to the right of and above the
// word before it, as the next column of a page does, also opens with a
// blank so the two words stay apart. Separator glyphs are skipped. Once the
// buffer is full the remaining glyphs are counted as dropped.
func Feed(buf *monitor.Buffer, page Page) FeedStats {
	dpi := page.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	var (
		st   FeedStats
		prev image.Rectangle // glyphs appended for the last word
		open bool
	)
	for _, block := range page.Blocks {
		for li, line := range block.Lines {
			pts := pixelsToPoints(line.Box.Dy(), dpi)
			lastLine := li == len(block.Lines)-1

			for wi, word := range line.Words {
				lastWord := wi == len(line.Words)-1
				started := false

				for si, sym := range word.Symbols {
					runes := []rune(sym.Text)
					for ri, r := range runes {
						st.Glyphs++
						if st.Truncated {
							st.Dropped++
							continue
						}

						rect := runeBox(sym.Box, ri, len(runes))
						g := monitor.Glyph{
							Code:       r,
							Left:       rect.Min.X,
							Top:        rect.Min.Y,
							Right:      rect.Max.X,
							Bottom:     rect.Max.Y,
							Confidence: rejectScore(sym.Confidence),
							PointSize:  pts,
							TextDir:    monitor.LeftToRight,
							LineDir:    monitor.DownRight,
						}
						if !started {
							switch {
							case wi > 0:
								g.Blanks = 1
							case open && rect.Min.X > prev.Min.X && rect.Min.Y < prev.Max.Y:
								g.Blanks = 1
							}
						}
						if lastWord && si == len(word.Symbols)-1 && ri == len(runes)-1 {
							g.Newline = monitor.NewlineNewline
							if lastLine {
								g.Newline = monitor.NewlineParagraph
							}
						}

						switch err := buf.Append(g); {
						case err == nil:
							st.Appended++
							if !started {
								prev = rect
								started, open = true, true
							} else {
								prev = prev.Union(rect)
							}
						case errors.Is(err, monitor.ErrInvalidCharacter):
							st.Skipped++
						default:
							st.Truncated = true
							st.Dropped++
						}
					}
				}
			}
		}
	}
	return st
}

// runeBox gives rune i of an n-rune symbol its share of the symbol box, so
// the runes of a ligature advance left to right.
func runeBox(r image.Rectangle, i, n int) image.Rectangle {
	if n <= 1 {
		return r
	}
	w := r.Dx()
	return image.Rect(r.Min.X+w*i/n, r.Min.Y, r.Min.X+w*(i+1)/n, r.Max.Y)
}

// rejectScore turns engine certainty into the monitor scale where 0 is a
// perfect match.
func rejectScore(certainty float64) int {
	return int(math.Round(monitor.MaxConfidence - certainty))
}

func pixelsToPoints(pixels, dpi int) int {
	return int(float64(pixels)*72.0/float64(dpi) + 0.5)
}
