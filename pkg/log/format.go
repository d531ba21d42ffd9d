package log

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

const (
	// PrettyFormat is colored when the output is a terminal.
	PrettyFormat = "pretty"
	// JSONFormat writes one JSON object per entry.
	JSONFormat = "json"
	// BareFormat writes only the message, prefixed with the package name when set.
	BareFormat = "bare"

	ansiSeq = "[\u001B\u009B][[\\]()#;?]*(?:(?:(?:[a-zA-Z\\d]*(?:;[a-zA-Z\\d]*)*)?\u0007)|(?:(?:\\d{1,4}(?:;\\d{0,4})*)?[\\dA-PRZcf-ntqry=><~]))"
)

// AllFormats lists the accepted values for the log format setting.
var AllFormats = []string{PrettyFormat, JSONFormat, BareFormat}

var ansiReg = regexp.MustCompile(ansiSeq)

// RemoveAllANSISeq returns a string with all ANSI color sequences removed.
func RemoveAllANSISeq(str string) string {
	if strings.Contains(str, "\033[") {
		str = ansiReg.ReplaceAllString(str, "")
	}

	return str
}

// NewFormatter returns the logrus formatter for the given format name. Colors are only enabled
// when `out` is a terminal.
func NewFormatter(name string, out io.Writer) (logrus.Formatter, error) {
	switch name {
	case PrettyFormat, "":
		return &logrus.TextFormatter{
			ForceColors:      isTerminal(out),
			DisableColors:    !isTerminal(out),
			FullTimestamp:    true,
			TimestampFormat:  "15:04:05.000",
			QuoteEmptyFields: true,
		}, nil
	case JSONFormat:
		return &logrus.JSONFormatter{}, nil
	case BareFormat:
		return &bareFormatter{}, nil
	}

	return nil, fmt.Errorf("invalid log format %q, supported formats: %s", name, strings.Join(AllFormats, ", "))
}

func isTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

type bareFormatter struct{}

func (f *bareFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var sb strings.Builder

	if prefix, ok := entry.Data[FieldKeyPrefix]; ok {
		fmt.Fprintf(&sb, "[%v] ", prefix)
	}

	sb.WriteString(entry.Message)
	sb.WriteByte('\n')

	return []byte(sb.String()), nil
}
