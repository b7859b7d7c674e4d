package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fieldError matches errors that name the offending request field.
type fieldError interface {
	error
	FieldName() string
}

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	require.Error(t, err)
	assert.Contains(t, err.Error(), expected)
}

// AssertInvalidField checks that err, or an error it wraps, names field.
func AssertInvalidField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)

	var fe fieldError
	require.Truef(t, errors.As(err, &fe), "error %q does not name a field", err)
	assert.Equal(t, field, fe.FieldName())
}
