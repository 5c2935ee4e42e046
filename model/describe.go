package model

import (
	"fmt"
	"strings"
)

// Describe lists the slots of m, one per line.
func Describe(m Model) string {
	var sb strings.Builder
	sb.WriteString(Name(m))
	for _, p := range m.Properties() {
		fmt.Fprintf(&sb, "\n\t%v", p)
	}
	return sb.String()
}
