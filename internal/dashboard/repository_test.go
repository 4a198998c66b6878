package dashboard

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Column sets from migrations/001_schema.sql. The aggregate queries are the
// only SQL in the tree that is not exercised next to its scan helper, so drift
// against the schema is caught here instead of at first execution.
var (
	userColumns = []string{
		"id", "email", "password_hash", "full_name", "is_super_admin",
		"created_at", "updated_at",
	}
	membershipColumns = []string{
		"id", "workspace_id", "user_id", "role", "created_at", "updated_at",
	}
)

func TestMemberLoadsQueryMatchesSchema(t *testing.T) {
	for alias, columns := range map[string][]string{
		"u": userColumns,
		"m": membershipColumns,
	} {
		re := regexp.MustCompile(`\b` + alias + `\.([a-z_]+)`)
		for _, match := range re.FindAllStringSubmatch(memberLoadsQuery, -1) {
			assert.Contains(t, columns, match[1],
				"member loads query references %s.%s, which the schema does not define", alias, match[1])
		}
	}
}

func TestSummaryQueryColumnCount(t *testing.T) {
	// Summarize scans seven counters; the query must produce exactly seven.
	assert.Equal(t, 7, len(regexp.MustCompile(`\(SELECT`).FindAllString(summaryQuery, -1)))
}
