package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	v := New()
	assert.True(t, v.Valid())
	assert.NoError(t, v.Err())

	v.Check(true, "port", "must be positive")
	v.Check(false, "port", "must be between 1 and 65535")
	v.Check(false, "port", "second message is ignored")
	v.Check(false, "env", "must be one of development, production")

	assert.False(t, v.Valid())
	assert.Equal(t, "must be between 1 and 65535", v.Errors["port"])

	err := v.Err()
	require.Error(t, err)
	assert.Equal(t, "validation failed: env: must be one of development, production; port: must be between 1 and 65535", err.Error())

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)
}

func TestPermittedValue(t *testing.T) {
	assert.True(t, PermittedValue("local", "local", "cloud"))
	assert.False(t, PermittedValue("ftp", "local", "cloud"))
	assert.False(t, PermittedValue(3))
}
