package util

import (
	"bytes"
	"io"
)

// PrefixedWriter returns a writer that inserts `prefix` at the beginning of every line.
func PrefixedWriter(writer io.Writer, prefix string) io.Writer {
	return &prefixedWriter{writer: writer, prefix: prefix, beginningOfANewLine: true}
}

type prefixedWriter struct {
	writer              io.Writer
	prefix              string
	beginningOfANewLine bool
}

func (pf *prefixedWriter) Write(p []byte) (int, error) {
	buf := bytes.Buffer{}

	for _, b := range p {
		if pf.beginningOfANewLine {
			buf.WriteString(pf.prefix)
			pf.beginningOfANewLine = false
		}

		buf.WriteByte(b)

		pf.beginningOfANewLine = b == '\n'
	}

	if _, err := pf.writer.Write(buf.Bytes()); err != nil {
		return 0, err
	}

	return len(p), nil
}
