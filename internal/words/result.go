package words

import "strings"

// ResultSet is the ordered output of one reconstruction.
type ResultSet struct {
	Words []Word `json:"words"`
}

// Len returns the number of words.
func (r ResultSet) Len() int {
	return len(r.Words)
}

// Lines groups consecutive words that share a line index.
func (r ResultSet) Lines() [][]Word {
	var lines [][]Word
	for i, w := range r.Words {
		if i == 0 || w.LineIndex != r.Words[i-1].LineIndex {
			lines = append(lines, nil)
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], w)
	}
	return lines
}

// Text joins words with single spaces and lines with newlines.
func (r ResultSet) Text() string {
	var sb strings.Builder
	for i, line := range r.Lines() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, w := range line {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(w.Text)
		}
	}
	return sb.String()
}

// MeanConfidence averages word confidence, weighting each word by its
// character count. It returns 0 for an empty set.
func (r ResultSet) MeanConfidence() float64 {
	var sum float64
	var n int
	for _, w := range r.Words {
		sum += w.Confidence * float64(len(w.Chars))
		n += len(w.Chars)
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// WithoutChars returns a copy of the set with per-character events dropped,
// for compact output.
func (r ResultSet) WithoutChars() ResultSet {
	out := ResultSet{Words: make([]Word, len(r.Words))}
	for i, w := range r.Words {
		w.Chars = nil
		out.Words[i] = w
	}
	return out
}
