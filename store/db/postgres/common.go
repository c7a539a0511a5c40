package postgres

import (
	"fmt"
	"strings"
)

// placeholder returns a positional placeholder for PostgreSQL (uses $1, $2, ...)
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns n sequential placeholders.
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}
