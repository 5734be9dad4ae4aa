package monitor

import (
	"errors"
	"reflect"
	"testing"
)

func glyphAt(code rune, left int) Glyph {
	return Glyph{Code: code, Left: left, Top: 10, Right: left + 8, Bottom: 22, Confidence: 5}
}

func TestNew(t *testing.T) {
	b, err := New(3, 4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if b.Capacity() != 12 {
		t.Errorf("Capacity: got %d, want 12", b.Capacity())
	}
	if b.Count() != 0 {
		t.Errorf("Count: got %d, want 0", b.Count())
	}
}

func TestNew_InvalidCapacity(t *testing.T) {
	tests := []struct {
		name          string
		blocks, slots int
	}{
		{"zero blocks", 0, 100},
		{"zero slots", 127, 0},
		{"negative blocks", -1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.blocks, tt.slots)
			if !errors.Is(err, ErrInvalidCapacity) {
				t.Errorf("got %v, want ErrInvalidCapacity", err)
			}
		})
	}
}

func TestNew_DefaultSizing(t *testing.T) {
	b, err := New(DefaultBlocks, DefaultSlotsPerBlock)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if b.Capacity() != 12700 {
		t.Errorf("Capacity: got %d, want 12700", b.Capacity())
	}
}

func TestAppend_Monotonic(t *testing.T) {
	b, _ := New(1, 10)
	for i := 0; i < 10; i++ {
		before := b.Count()
		if err := b.Append(glyphAt('a'+rune(i), i*10)); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
		if b.Count() != before+1 {
			t.Fatalf("Count after append %d: got %d, want %d", i, b.Count(), before+1)
		}
		if b.Count() > b.Capacity() {
			t.Fatalf("Count %d exceeds capacity %d", b.Count(), b.Capacity())
		}
	}
	for i := 0; i < 10; i++ {
		ev, ok := b.At(i)
		if !ok {
			t.Fatalf("At(%d) missing", i)
		}
		if ev.Code != 'a'+rune(i) {
			t.Errorf("At(%d).Code: got %q, want %q", i, ev.Code, 'a'+rune(i))
		}
	}
}

// Two slots, three appends: the third reports ErrBufferFull and the count
// stays at two.
func TestAppend_OverflowScenario(t *testing.T) {
	b, _ := New(1, 2)
	errs := []error{
		b.Append(glyphAt('a', 0)),
		b.Append(glyphAt('b', 10)),
		b.Append(glyphAt('c', 20)),
	}
	if errs[0] != nil || errs[1] != nil {
		t.Fatalf("first appends should succeed: %v, %v", errs[0], errs[1])
	}
	if !errors.Is(errs[2], ErrBufferFull) {
		t.Fatalf("third append: got %v, want ErrBufferFull", errs[2])
	}
	if b.Count() != 2 {
		t.Errorf("Count: got %d, want 2", b.Count())
	}
}

func TestAppend_OverflowDoesNotMutate(t *testing.T) {
	b, _ := New(1, 3)
	for i := 0; i < 3; i++ {
		if err := b.Append(glyphAt('x', i*10)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	before := b.Snapshot()
	for i := 0; i < 5; i++ {
		if err := b.Append(glyphAt('y', 100)); !errors.Is(err, ErrBufferFull) {
			t.Fatalf("got %v, want ErrBufferFull", err)
		}
	}
	if !reflect.DeepEqual(before, b.Snapshot()) {
		t.Error("buffer contents changed after rejected appends")
	}
}

func TestAppend_SeparatorRejected(t *testing.T) {
	b, _ := New(1, 4)
	if err := b.Append(glyphAt('a', 0)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	for _, r := range []rune{' ', '\n', '\r', '\t'} {
		t.Run(string(r), func(t *testing.T) {
			if err := b.Append(glyphAt(r, 10)); !errors.Is(err, ErrInvalidCharacter) {
				t.Errorf("got %v, want ErrInvalidCharacter", err)
			}
			if b.Count() != 1 {
				t.Errorf("Count: got %d, want 1", b.Count())
			}
		})
	}
}

func TestAppend_SeparatorOnFullBuffer(t *testing.T) {
	b, _ := New(1, 1)
	_ = b.Append(glyphAt('a', 0))
	if err := b.Append(glyphAt(' ', 10)); !errors.Is(err, ErrInvalidCharacter) {
		t.Errorf("got %v, want ErrInvalidCharacter", err)
	}
}

func TestAppend_NilBuffer(t *testing.T) {
	var b *Buffer
	if err := b.Append(glyphAt('a', 0)); !errors.Is(err, ErrNotAllocated) {
		t.Errorf("got %v, want ErrNotAllocated", err)
	}
	var zero Buffer
	if err := zero.Append(glyphAt('a', 0)); !errors.Is(err, ErrNotAllocated) {
		t.Errorf("zero value: got %v, want ErrNotAllocated", err)
	}
}

func TestAppend_ClampsFields(t *testing.T) {
	b, _ := New(1, 3)
	_ = b.Append(Glyph{Code: 'a', Confidence: 250, Blanks: -2})
	_ = b.Append(Glyph{Code: 'b', Confidence: -7})
	_ = b.Append(Glyph{Code: 'c', Confidence: 42, Blanks: 3})

	want := []struct {
		conf   uint8
		blanks int
	}{{100, 0}, {0, 0}, {42, 3}}
	for i, w := range want {
		ev, _ := b.At(i)
		if ev.Confidence != w.conf {
			t.Errorf("event %d confidence: got %d, want %d", i, ev.Confidence, w.conf)
		}
		if ev.Blanks != w.blanks {
			t.Errorf("event %d blanks: got %d, want %d", i, ev.Blanks, w.blanks)
		}
	}
}

func TestAppend_PacksFormatting(t *testing.T) {
	b, _ := New(1, 1)
	g := glyphAt('a', 0)
	g.Newline = NewlineNewline
	g.LineDir = DownRight
	g.Enhancement = EnhanceBold | EnhanceItalic
	if err := b.Append(g); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	ev, _ := b.At(0)
	if ev.Formatting != Formatting(0x43) {
		t.Errorf("Formatting: got %#x, want 0x43", uint8(ev.Formatting))
	}
}

func TestReset_ReusesStorage(t *testing.T) {
	b, _ := New(2, 2)
	for i := 0; i < 4; i++ {
		_ = b.Append(glyphAt('a', i))
	}
	first := &b.events[:1][0]

	b.Reset()
	if b.Count() != 0 {
		t.Fatalf("Count after Reset: got %d, want 0", b.Count())
	}
	if b.Capacity() != 4 {
		t.Fatalf("Capacity after Reset: got %d, want 4", b.Capacity())
	}
	if err := b.Append(glyphAt('z', 0)); err != nil {
		t.Fatalf("Append after Reset failed: %v", err)
	}
	if &b.events[0] != first {
		t.Error("Reset reallocated the backing array")
	}
	if ev, _ := b.At(0); ev.Code != 'z' {
		t.Errorf("At(0).Code after Reset: got %q, want 'z'", ev.Code)
	}
}

func TestAt_OutOfRange(t *testing.T) {
	b, _ := New(1, 2)
	_ = b.Append(glyphAt('a', 0))
	if _, ok := b.At(1); ok {
		t.Error("At(1) should be out of range")
	}
	if _, ok := b.At(-1); ok {
		t.Error("At(-1) should be out of range")
	}
}

func TestSnapshot_Detached(t *testing.T) {
	b, _ := New(1, 2)
	_ = b.Append(glyphAt('a', 0))
	snap := b.Snapshot()
	b.Reset()
	_ = b.Append(glyphAt('b', 0))

	if snap.Count != 1 || snap.Capacity != 2 {
		t.Errorf("header: got count=%d capacity=%d", snap.Count, snap.Capacity)
	}
	if snap.Events[0].Code != 'a' {
		t.Errorf("snapshot changed with buffer: got %q", snap.Events[0].Code)
	}
	if err := snap.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestSnapshot_Validate(t *testing.T) {
	ok := Event{Code: 'a', Confidence: 10}
	tests := []struct {
		name      string
		snap      Snapshot
		wantIndex int
	}{
		{"count over capacity", Snapshot{Capacity: 1, Count: 2, Events: []Event{ok, ok}}, -1},
		{"negative count", Snapshot{Capacity: 1, Count: -1}, -1},
		{"negative capacity", Snapshot{Capacity: -1}, -1},
		{"count mismatch", Snapshot{Capacity: 4, Count: 3, Events: []Event{ok}}, -1},
		{"bad confidence", Snapshot{Capacity: 2, Count: 2, Events: []Event{ok, {Code: 'b', Confidence: 101}}}, 1},
		{"negative blanks", Snapshot{Capacity: 1, Count: 1, Events: []Event{{Code: 'b', Blanks: -1}}}, 0},
		{"separator event", Snapshot{Capacity: 1, Count: 1, Events: []Event{{Code: '\t'}}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if !errors.Is(err, ErrMalformedBuffer) {
				t.Fatalf("got %v, want ErrMalformedBuffer", err)
			}
			var mbe *MalformedBufferError
			if !errors.As(err, &mbe) {
				t.Fatalf("error is not a *MalformedBufferError: %T", err)
			}
			if mbe.Index != tt.wantIndex {
				t.Errorf("Index: got %d, want %d", mbe.Index, tt.wantIndex)
			}
		})
	}

	empty := Snapshot{Capacity: 10}
	if err := empty.Validate(); err != nil {
		t.Errorf("empty snapshot should validate: %v", err)
	}
}
