package codegen

import (
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

var (
	plainIdentifier  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	rSyntacticName   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._]*$`)
	pythonStringEsc  = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	lineBreaks       = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	rBacktickEscaper = strings.NewReplacer(`\`, `\\`, "`", "\\`")
)

// SQLIdentifier renders a column name for a SQL snippet. Plain identifiers
// that libinjection considers clean are emitted as-is; anything else is
// double-quoted with embedded quotes doubled and line breaks flattened so
// the name cannot escape a comment line.
func SQLIdentifier(name string) string {
	if plainIdentifier.MatchString(name) {
		if isSQLi, _ := libinjection.IsSQLi(name); !isSQLi {
			return name
		}
	}
	return `"` + strings.ReplaceAll(lineBreaks.Replace(name), `"`, `""`) + `"`
}

// PythonString renders a column name as the body of a single-quoted Python
// string literal.
func PythonString(name string) string {
	return pythonStringEsc.Replace(name)
}

// RName renders a column name for dplyr expressions, backtick-quoting
// non-syntactic names.
func RName(name string) string {
	if rSyntacticName.MatchString(name) {
		return name
	}
	return "`" + rBacktickEscaper.Replace(lineBreaks.Replace(name)) + "`"
}
