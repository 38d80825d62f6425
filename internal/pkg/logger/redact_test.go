package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKVs(t *testing.T) {
	redactOnce.Do(func() {})
	redactionEnabled = true
	hashSalt = ""

	out := sanitizeKVs([]interface{}{
		"user_id", "7b7c0d1e-5a55-4ad8-9a36-14f1f54b8b6e",
		"jwt_secret", "hunter2",
		"Authorization", "Bearer abc",
		"subject", "math",
		"header", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig",
		"dangling",
	})
	require.Len(t, out, 11)
	assert.Regexp(t, `^hash:[0-9a-f]{12}$`, out[1])
	assert.Equal(t, "[REDACTED]", out[3])
	assert.Equal(t, "[REDACTED]", out[5])
	assert.Equal(t, "math", out[7])
	assert.Equal(t, "[REDACTED]", out[9])
	assert.Equal(t, "dangling", out[10])
}

func TestSanitizeKVsDisabled(t *testing.T) {
	redactOnce.Do(func() {})
	redactionEnabled = false
	t.Cleanup(func() { redactionEnabled = true })

	in := []interface{}{"password", "x"}
	assert.Equal(t, in, sanitizeKVs(in))
}

func TestHashValueIsStable(t *testing.T) {
	assert.Equal(t, hashValue("abc"), hashValue("abc"))
	assert.NotEqual(t, hashValue("abc"), hashValue("abd"))
	assert.Equal(t, "", hashValue(""))
}
