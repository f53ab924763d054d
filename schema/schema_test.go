package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatements(t *testing.T) {
	for _, dialect := range []string{"sqlite", "postgres"} {
		t.Run(dialect, func(t *testing.T) {
			stmts, err := Statements(dialect)
			require.NoError(t, err)
			require.NotEmpty(t, stmts)
			for _, s := range stmts {
				assert.NotEmpty(t, strings.TrimSpace(s))
				assert.Contains(t, s, "IF NOT EXISTS")
			}
		})
	}
}

func TestStatementsUnknownDialect(t *testing.T) {
	_, err := Statements("mysql")
	assert.Error(t, err)
}
