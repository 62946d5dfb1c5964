// Package util provides positioned diagnostics for the compiler passes.
// Errors are ordinary error values; the driver decides how to render them.
package util

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"mcc/pkg/config"
	"mcc/pkg/token"
)

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

var sourceFiles []SourceFileRecord

// SetSourceFiles stores the source code for all input files so diagnostics
// can quote the offending line.
func SetSourceFiles(files []SourceFileRecord) {
	sourceFiles = files
}

// Diagnostic is a compile error pinned to a source position.
type Diagnostic struct {
	Tok token.Token
	Msg string
}

func (d *Diagnostic) Error() string {
	filename, line, col := findFileAndLine(d.Tok)
	return fmt.Sprintf("%s:%d:%d: %s", filename, line, col, d.Msg)
}

// Errorf builds a positioned compile error.
func Errorf(tok token.Token, format string, args ...interface{}) error {
	return &Diagnostic{Tok: tok, Msg: fmt.Sprintf(format, args...)}
}

// Warn prints a formatted warning if the corresponding warning is enabled.
func Warn(cfg *config.Config, wt config.Warning, tok token.Token, format string, args ...interface{}) {
	if !cfg.IsWarningEnabled(wt) {
		return
	}
	filename, line, col := findFileAndLine(tok)
	fmt.Fprintf(os.Stderr, "%s:%d:%d: %swarning:%s ", filename, line, col, color("\033[33m"), color("\033[0m"))
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintf(os.Stderr, " [-W%s]\n", cfg.Warnings[wt].Name)
	printSourceLine(os.Stderr, tok)
}

// PrintDiagnostic renders an error to stderr. Positioned diagnostics get
// the quoted source line and a caret; anything else is printed as-is.
func PrintDiagnostic(err error) {
	d, ok := err.(*Diagnostic)
	if !ok {
		fmt.Fprintf(os.Stderr, "mcc: %serror:%s %v\n", color("\033[31m"), color("\033[0m"), err)
		return
	}
	filename, line, col := findFileAndLine(d.Tok)
	fmt.Fprintf(os.Stderr, "%s:%d:%d: %serror:%s %s\n", filename, line, col, color("\033[31m"), color("\033[0m"), d.Msg)
	printSourceLine(os.Stderr, d.Tok)
}

// color returns the escape sequence only when stderr is a terminal.
func color(seq string) string {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return seq
	}
	return ""
}

// findFileAndLine converts a token to a file-specific location.
func findFileAndLine(tok token.Token) (filename string, line, col int) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(sourceFiles) {
		return "unknown", tok.Line, tok.Column
	}
	return sourceFiles[tok.FileIndex].Name, tok.Line, tok.Column
}

// printSourceLine prints the source line and a caret under the token.
func printSourceLine(stream *os.File, tok token.Token) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(sourceFiles) || tok.Line == 0 || tok.Column == 0 {
		return
	}

	content := sourceFiles[tok.FileIndex].Content
	lineNum := tok.Line
	lineStart := 0
	for i, r := range content {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}

	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(stream, "  %s\n", string(content[lineStart:lineEnd]))

	fmt.Fprintf(stream, "  %s%s^", strings.Repeat(" ", tok.Column-1), color("\033[32m"))
	if tok.Len > 1 {
		fmt.Fprint(stream, strings.Repeat("~", tok.Len-1))
	}
	fmt.Fprintln(stream, color("\033[0m"))
}
