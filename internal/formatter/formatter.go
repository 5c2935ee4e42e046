package formatter

import (
	"go/format"
	"regexp"
	"sort"
	"strings"

	"github.com/mcncl/jsonmodel/internal/errors"
)

var importRegex = regexp.MustCompile(`(?s)import\s*\((.+?)\)`)

// Formatter is responsible for formatting generated Go code according to standard conventions
type Formatter struct{}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format takes Go code as a string and returns gofmt-formatted code with
// grouped imports
func (f *Formatter) Format(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	// Group imports first so gofmt sorts each group
	grouped := f.formatImports(code)

	formatted, err := format.Source([]byte(grouped))
	if err != nil {
		return "", errors.NewFormatError("failed to parse Go code", err)
	}
	return string(formatted), nil
}

// formatImports organizes import statements with standard library imports first,
// followed by third-party imports with a blank line in between
func (f *Formatter) formatImports(code string) string {
	importMatches := importRegex.FindStringSubmatch(code)
	if len(importMatches) < 2 {
		// No import block found or it's a single-line import
		return code
	}

	importLines := strings.Split(strings.TrimSpace(importMatches[1]), "\n")

	stdLibImports := []string{}
	thirdPartyImports := []string{}
	for _, line := range importLines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		// The path is the last field; a name may precede it
		fields := strings.Fields(line)
		importPath := strings.Trim(fields[len(fields)-1], `"`)
		if !strings.Contains(importPath, ".") {
			stdLibImports = append(stdLibImports, line)
		} else {
			thirdPartyImports = append(thirdPartyImports, line)
		}
	}

	sort.Slice(stdLibImports, func(i, j int) bool { return importPathOf(stdLibImports[i]) < importPathOf(stdLibImports[j]) })
	sort.Slice(thirdPartyImports, func(i, j int) bool {
		return importPathOf(thirdPartyImports[i]) < importPathOf(thirdPartyImports[j])
	})

	var b strings.Builder
	b.WriteString("import (\n")
	for _, imp := range stdLibImports {
		b.WriteString("\t" + imp + "\n")
	}
	if len(stdLibImports) > 0 && len(thirdPartyImports) > 0 {
		b.WriteString("\n")
	}
	for _, imp := range thirdPartyImports {
		b.WriteString("\t" + imp + "\n")
	}
	b.WriteString(")")

	loc := importRegex.FindStringIndex(code)
	return code[:loc[0]] + b.String() + code[loc[1]:]
}

func importPathOf(line string) string {
	fields := strings.Fields(line)
	return strings.Trim(fields[len(fields)-1], `"`)
}
