package models

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsOperator(t *testing.T) {
	assert.True(t, User{Role: "OPERATOR"}.IsOperator())
	assert.True(t, User{Role: "ADMIN"}.IsOperator())
	assert.False(t, User{Role: "CLIENT"}.IsOperator())
}

func TestPrimaryLanguage(t *testing.T) {
	assert.Equal(t, "UZ", User{Languages: pq.StringArray{"UZ", "RU"}}.PrimaryLanguage())
	assert.Equal(t, "", User{}.PrimaryLanguage())
}
