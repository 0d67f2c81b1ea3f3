package console

import (
	"io"
	"strings"
)

type lineWriter struct {
	c *Console
}

// Writer adapts the console to io.Writer. Each non-empty line of a Write
// becomes one WriteLine, so loggers can print above the prompt.
func (c *Console) Writer() io.Writer {
	return lineWriter{c: c}
}

func (w lineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if err := w.c.WriteLine(line); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
