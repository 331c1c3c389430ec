package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextParser handles plain text files. Every line keeps the body size, so
// headings can only be found from wording and whitespace.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	l := newLayout("Courier")
	pendingGap := false
	for scanner.Scan() {
		line := strings.TrimSpace(strings.ReplaceAll(scanner.Text(), "\f", ""))
		if line == "" {
			pendingGap = true
			continue
		}
		if pendingGap {
			l.gap(headingSpaceBefore * BodySize)
			pendingGap = false
		}
		for _, part := range wrap(line, BodySize) {
			l.line(part, BodySize, false, false)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return l.document(""), nil
}
