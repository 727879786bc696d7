package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryShape(t *testing.T) {
	t.Run("zero value requests all rows", func(t *testing.T) {
		assert.True(t, Query{}.IsEmpty())
		assert.False(t, Query{}.IsRaw())
	})

	t.Run("field filter is not empty", func(t *testing.T) {
		q := Query{Field: FieldOwnerEmail, Value: "o@x.com"}
		assert.False(t, q.IsEmpty())
	})

	t.Run("newest-only alone is not the all-rows shape", func(t *testing.T) {
		assert.False(t, Query{NewestOnly: true}.IsEmpty())
	})

	t.Run("raw query is flagged", func(t *testing.T) {
		q := Query{Raw: "SELECT 1"}
		assert.True(t, q.IsRaw())
		assert.False(t, q.IsEmpty())
	})
}

func TestAccountValidate(t *testing.T) {
	assert.ErrorIs(t, (&Account{}).Validate(), ErrInvalidEmail)
	assert.NoError(t, (&Account{Email: "a@x.com"}).Validate())
}

func TestPortfolioValidate(t *testing.T) {
	assert.ErrorIs(t, (&PortfolioSnapshot{}).Validate(), ErrInvalidEmail)
	assert.NoError(t, (&PortfolioSnapshot{OwnerEmail: "a@x.com"}).Validate())
}
