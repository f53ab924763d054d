// Package schema provides the embedded table definitions for each supported
// store dialect.
package schema

import (
	"embed"
	"fmt"
	"strings"
)

// Files contains one DDL file per dialect, named <dialect>.sql.
//
//go:embed *.sql
var Files embed.FS

// Statements returns the DDL statements for dialect, split on semicolons.
// Statements are idempotent (CREATE ... IF NOT EXISTS).
func Statements(dialect string) ([]string, error) {
	raw, err := Files.ReadFile(dialect + ".sql")
	if err != nil {
		return nil, fmt.Errorf("schema: unknown dialect %q: %w", dialect, err)
	}
	var out []string
	for _, stmt := range strings.Split(string(raw), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
