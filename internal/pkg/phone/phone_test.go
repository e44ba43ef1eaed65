package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "573001112222", Identifier("+57", "3001112222"))
	assert.Equal(t, "573001112222", Identifier("57", "3001112222"))
	assert.Equal(t, "3001112222", Identifier("", "3001112222"))
}

func TestValid(t *testing.T) {
	valid := []string{"3001112222", "+573001112222", "300 111 2222", "(300) 111-2222"}
	for _, n := range valid {
		assert.True(t, Valid(n), n)
	}
	invalid := []string{"", "12345", "abc1112222", "+5730011122223334455"}
	for _, n := range invalid {
		assert.False(t, Valid(n), n)
	}
}
