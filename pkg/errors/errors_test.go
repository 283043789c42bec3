package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	err := NewError("test_code", "something broke", CategoryInternal, SeverityError)

	assert.Equal(t, "test_code", err.Code())
	assert.Equal(t, "something broke", err.Message())
	assert.Equal(t, CategoryInternal, err.Category())
	assert.Equal(t, SeverityError, err.Severity())
	assert.Zero(t, err.StatusCode())
	assert.False(t, err.Time().IsZero())
	assert.Equal(t, "test_code: something broke", err.Error())
}

func TestWithStatusAndCause(t *testing.T) {
	base := NewError("test_code", "something broke", CategoryNetwork, SeverityWarning)

	withStatus := WithStatus(base, 502)
	assert.Equal(t, 502, withStatus.StatusCode())
	assert.Zero(t, base.StatusCode(), "original must be unchanged")

	cause := errors.New("dial tcp: connection refused")
	wrapped := WithCause(withStatus, cause)
	assert.Equal(t, cause, wrapped.Unwrap())
	assert.True(t, errors.Is(wrapped, cause))
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestConstructors(t *testing.T) {
	t.Run("auth rejected", func(t *testing.T) {
		err := AuthRejected(401)
		assert.Equal(t, "http_401", err.Code())
		assert.Equal(t, 401, err.StatusCode())
		assert.Equal(t, CategoryAuth, err.Category())
		assert.Equal(t, SeverityCritical, err.Severity())
	})

	t.Run("rate limited without hint", func(t *testing.T) {
		err := RateLimitedNoHint()
		assert.Equal(t, CodeRateLimited, err.Code())
		assert.Equal(t, 429, err.StatusCode())
	})

	t.Run("server busy", func(t *testing.T) {
		err := ServerBusy(503, 0)
		assert.Equal(t, CodeServerBusy, err.Code())
		assert.Equal(t, 503, err.StatusCode())
		assert.Equal(t, SeverityWarning, err.Severity())
	})

	t.Run("transient with status", func(t *testing.T) {
		err := TransientFailure(502, "bad gateway")
		assert.Equal(t, "http_502", err.Code())
		assert.Equal(t, "bad gateway", err.Message())
	})

	t.Run("transient without status", func(t *testing.T) {
		err := TransientFailure(0, "")
		assert.Equal(t, CodeNetwork, err.Code())
		assert.NotEmpty(t, err.Message())
	})

	t.Run("not configured", func(t *testing.T) {
		err := NotConfigured("Start")
		assert.Equal(t, CodeNotConfigured, err.Code())
		assert.Contains(t, err.Message(), "Start")
	})
}
