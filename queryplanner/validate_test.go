package queryplanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRawSQLDisabledRejectsEverything(t *testing.T) {
	err := ValidateRawSQL(false, "SELECT json_agg(t) FROM (SELECT COUNT(*) FROM ns_id.ping) t")
	assert.ErrorIs(t, err, ErrSQLQueriesDisabled)
}

func TestValidateRawSQLAcceptsSelect(t *testing.T) {
	err := ValidateRawSQL(true, "SELECT json_agg(t) FROM (SELECT COUNT(*) FROM ns_id.ping) t")
	assert.NoError(t, err)
}

func TestValidateRawSQLAcceptsLowercaseAndLeadingWhitespace(t *testing.T) {
	err := ValidateRawSQL(true, "  \n select 1")
	assert.NoError(t, err)
}

func TestValidateRawSQLRejectsNonSelect(t *testing.T) {
	err := ValidateRawSQL(true, "DROP SCHEMA ns_id")
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestValidateRawSQLSkipsLeadingComment(t *testing.T) {
	err := ValidateRawSQL(true, "-- count pings\nSELECT COUNT(*) FROM ns_id.ping")
	assert.NoError(t, err)
}
