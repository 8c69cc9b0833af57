package dbmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationOf(t *testing.T) {
	tests := map[string]string{
		"SELECT id FROM staff_availability":             "select",
		"\n\t\tINSERT INTO staff_availability (id) VALUES": "insert",
		"UPDATE staff_availability SET version = 2":      "update",
		"":    "unknown",
		"   ": "unknown",
	}

	for query, want := range tests {
		assert.Equal(t, want, operationOf(query), "query %q", query)
	}
}
