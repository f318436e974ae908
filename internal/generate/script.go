package generate

import (
	"fmt"
	"strings"
)

// scriptBuilder accumulates artifact lines.
type scriptBuilder struct {
	lines []string
}

func newScriptBuilder() *scriptBuilder {
	return &scriptBuilder{lines: make([]string, 0, 64)}
}

func (b *scriptBuilder) add(line string) {
	b.lines = append(b.lines, line)
}

func (b *scriptBuilder) addf(format string, args ...any) {
	b.add(fmt.Sprintf(format, args...))
}

func (b *scriptBuilder) String() string {
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}
