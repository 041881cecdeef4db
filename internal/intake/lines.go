package intake

import (
	"bufio"
	"context"
	"io"
	"strings"

	"sueca-referee/internal/game"
)

// Lines reads one identifier per line. Blank lines and lines starting with
// '#' are skipped. Reading blocks on the underlying reader, so cancellation
// is only observed between lines.
type Lines struct {
	sc *bufio.Scanner
	// Prompt, when set, is written before each read.
	Prompt string
	Out    io.Writer
}

func NewLines(r io.Reader) *Lines {
	return &Lines{sc: bufio.NewScanner(r)}
}

func (l *Lines) NextCard(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if l.Prompt != "" && l.Out != nil {
			_, _ = io.WriteString(l.Out, l.Prompt)
		}
		if !l.sc.Scan() {
			if err := l.sc.Err(); err != nil {
				return "", err
			}
			return "", game.ErrIntakeClosed
		}
		line := strings.TrimSpace(l.sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
}
