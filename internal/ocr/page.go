package ocr

import (
	"image"
	"math"
)

// EngineBox is one box reported by the engine at a single iterator level.
// Confidence is the engine's certainty, 0 (none) to 100 (certain).
type EngineBox struct {
	Rect       image.Rectangle
	Text       string
	Confidence float64
}

// PageBoxes holds the engine boxes for one image at every level the feed
// needs. Each slice is in the engine's reading order.
type PageBoxes struct {
	Symbols []EngineBox
	Words   []EngineBox
	Lines   []EngineBox
	Blocks  []EngineBox
}

// Symbol is a single recognized glyph. Text is usually one rune but ligatures
// can carry more.
type Symbol struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// Word is a run of symbols the engine grouped together.
type Word struct {
	Box     image.Rectangle
	Symbols []Symbol
}

// Line is one text line.
type Line struct {
	Box   image.Rectangle
	Words []Word
}

// Block is a paragraph-level region.
type Block struct {
	Box   image.Rectangle
	Lines []Line
}

// Page is the layout tree Feed walks.
type Page struct {
	DPI    int
	Blocks []Block
}

// Transform maps engine coordinates back onto the source image. Scale is the
// factor the image was enlarged by before recognition; Offset is the origin
// of the cropped region.
type Transform struct {
	Scale  float64
	Offset image.Point
}

func (t Transform) apply(r image.Rectangle) image.Rectangle {
	if t.Scale > 0 && t.Scale != 1 {
		r = image.Rect(
			int(math.Round(float64(r.Min.X)/t.Scale)),
			int(math.Round(float64(r.Min.Y)/t.Scale)),
			int(math.Round(float64(r.Max.X)/t.Scale)),
			int(math.Round(float64(r.Max.Y)/t.Scale)),
		)
	}
	return r.Add(t.Offset)
}

// BuildPage nests symbols into words, words into lines and lines into blocks
// by containment, keeping reading order. Missing parent levels are
// synthesized from the union of their children.
func BuildPage(boxes PageBoxes, dpi int, tr Transform) Page {
	page := Page{DPI: dpi}
	if len(boxes.Symbols) == 0 {
		return page
	}

	words := rects(boxes.Words)
	if len(words) == 0 {
		words = []image.Rectangle{union(rects(boxes.Symbols))}
	}
	lines := rects(boxes.Lines)
	if len(lines) == 0 {
		lines = []image.Rectangle{union(words)}
	}
	blocks := rects(boxes.Blocks)
	if len(blocks) == 0 {
		blocks = []image.Rectangle{union(lines)}
	}

	wordOf := assign(rects(boxes.Symbols), words)
	lineOf := assign(words, lines)
	blockOf := assign(lines, blocks)

	wordSyms := make([][]Symbol, len(words))
	for i, s := range boxes.Symbols {
		if s.Text == "" {
			continue
		}
		wordSyms[wordOf[i]] = append(wordSyms[wordOf[i]], Symbol{
			Text:       s.Text,
			Box:        tr.apply(s.Rect),
			Confidence: s.Confidence,
		})
	}

	lineWords := make([][]Word, len(lines))
	for i, syms := range wordSyms {
		if len(syms) == 0 {
			continue
		}
		lineWords[lineOf[i]] = append(lineWords[lineOf[i]], Word{Box: tr.apply(words[i]), Symbols: syms})
	}

	blockLines := make([][]Line, len(blocks))
	for i, ws := range lineWords {
		if len(ws) == 0 {
			continue
		}
		blockLines[blockOf[i]] = append(blockLines[blockOf[i]], Line{Box: tr.apply(lines[i]), Words: ws})
	}

	for i, ls := range blockLines {
		if len(ls) == 0 {
			continue
		}
		page.Blocks = append(page.Blocks, Block{Box: tr.apply(blocks[i]), Lines: ls})
	}
	return page
}

func rects(boxes []EngineBox) []image.Rectangle {
	out := make([]image.Rectangle, len(boxes))
	for i, b := range boxes {
		out[i] = b.Rect
	}
	return out
}

func union(rs []image.Rectangle) image.Rectangle {
	var u image.Rectangle
	for i, r := range rs {
		if i == 0 {
			u = r
			continue
		}
		u = u.Union(r)
	}
	return u
}

// assign maps each child to the parent holding its centre. Parents are
// visited in order, so a child that no later parent contains stays with the
// current one.
func assign(children, parents []image.Rectangle) []int {
	idx := make([]int, len(children))
	j := 0
	for i, c := range children {
		p := image.Pt((c.Min.X+c.Max.X)/2, (c.Min.Y+c.Max.Y)/2)
		if !within(p, parents[j]) {
			for k := j + 1; k < len(parents); k++ {
				if within(p, parents[k]) {
					j = k
					break
				}
			}
		}
		idx[i] = j
	}
	return idx
}

func within(p image.Point, r image.Rectangle) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}
