package monitor

// TextDirection is the rendering direction of characters within a line.
type TextDirection uint8

const (
	RightToLeft TextDirection = 0
	LeftToRight TextDirection = 1
	TopToBottom TextDirection = 2
	BottomToTop TextDirection = 3
)

// LineDirection is the direction successive lines advance in.
type LineDirection uint8

const (
	DownRight LineDirection = 0
	UpRight   LineDirection = 1
)

// NewlineType marks a glyph that ends a line or paragraph.
type NewlineType uint8

const (
	NewlineNone      NewlineType = 0
	NewlineNewline   NewlineType = 1
	NewlineParagraph NewlineType = 2
)

// Enhancement is a bit set of character styling flags.
type Enhancement uint8

const (
	EnhanceBold        Enhancement = 1
	EnhanceItalic      Enhancement = 2
	EnhanceUnderline   Enhancement = 4
	EnhanceSubscript   Enhancement = 8
	EnhanceSuperscript Enhancement = 16
)

// formatMask covers the layout bits; enhancement owns the rest.
const formatMask = 0xe0

// Formatting packs newline type, line direction, text direction and
// enhancement into one byte.
type Formatting uint8

// PackFormatting builds the formatting byte for a glyph.
//
// Without a newline the text direction sits in bits 5-6 and vertical
// directions also set bit 7. With a newline the newline type sits in bits
// 6-7 and the line direction in bit 5; the text direction is not recorded.
// Enhancement flags fill the low five bits.
func PackFormatting(nl NewlineType, ld LineDirection, td TextDirection, enh Enhancement) Formatting {
	var f uint8
	if nl == NewlineNone {
		f = uint8(td) << 5
		if td == TopToBottom || td == BottomToTop {
			f |= 0x80
		}
	} else {
		f = uint8(nl)<<6 | uint8(ld)<<5
	}
	f |= uint8(enh) &^ formatMask
	return Formatting(f)
}

// Enhancement returns the styling flags.
func (f Formatting) Enhancement() Enhancement {
	return Enhancement(uint8(f) &^ formatMask)
}

// Newline returns the newline type carried by the byte.
func (f Formatting) Newline() NewlineType {
	switch uint8(f) & formatMask {
	case 0x40, 0x60:
		return NewlineNewline
	case 0x80, 0xa0:
		return NewlineParagraph
	}
	return NewlineNone
}

// LineDirection returns the line direction. It is only recorded alongside a
// newline; other bytes report DownRight.
func (f Formatting) LineDirection() LineDirection {
	if f.Newline() != NewlineNone && uint8(f)&0x20 != 0 {
		return UpRight
	}
	return DownRight
}

// TextDirection returns the text direction and whether the byte records one.
func (f Formatting) TextDirection() (TextDirection, bool) {
	switch uint8(f) & formatMask {
	case 0x00:
		return RightToLeft, true
	case 0x20:
		return LeftToRight, true
	case 0xc0:
		return TopToBottom, true
	case 0xe0:
		return BottomToTop, true
	}
	return 0, false
}

// Event is one recognized glyph as stored in the buffer.
//
// Coordinates are image pixels with rows growing downward, so a well formed
// box has Left <= Right and Top <= Bottom.
type Event struct {
	Code       rune       `json:"code"`
	Left       int        `json:"left"`
	Top        int        `json:"top"`
	Right      int        `json:"right"`
	Bottom     int        `json:"bottom"`
	Confidence uint8      `json:"confidence"` // 0 = perfect, 100 = rejected
	FontIndex  int        `json:"font_index"`
	PointSize  int        `json:"point_size"`
	Blanks     int        `json:"blanks"`
	Formatting Formatting `json:"formatting"`
}

// Glyph is what a producer hands to Append: an Event with its layout still
// unpacked and an unclamped confidence.
type Glyph struct {
	Code        rune
	Left        int
	Top         int
	Right       int
	Bottom      int
	Confidence  int
	FontIndex   int
	PointSize   int
	Blanks      int
	Enhancement Enhancement
	TextDir     TextDirection
	LineDir     LineDirection
	Newline     NewlineType
}

// MaxConfidence is the worst (rejected) confidence value.
const MaxConfidence = 100

// IsSeparator reports whether r is a structural word separator.
func IsSeparator(r rune) bool {
	switch r {
	case ' ', '\n', '\r', '\t':
		return true
	}
	return false
}

func clampConfidence(c int) uint8 {
	if c < 0 {
		return 0
	}
	if c > MaxConfidence {
		return MaxConfidence
	}
	return uint8(c)
}

func (g Glyph) event() Event {
	blanks := g.Blanks
	if blanks < 0 {
		blanks = 0
	}
	return Event{
		Code:       g.Code,
		Left:       g.Left,
		Top:        g.Top,
		Right:      g.Right,
		Bottom:     g.Bottom,
		Confidence: clampConfidence(g.Confidence),
		FontIndex:  g.FontIndex,
		PointSize:  g.PointSize,
		Blanks:     blanks,
		Formatting: PackFormatting(g.Newline, g.LineDir, g.TextDir, g.Enhancement),
	}
}
