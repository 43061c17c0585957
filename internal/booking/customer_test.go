package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomerIDTemplate(t *testing.T) {
	assert.Equal(t, "Name: Grace Hopper | Phone: +1 555 0199", CustomerID("Grace Hopper", "+1 555 0199"))
}

func TestCustomerPrefixIgnoresPhone(t *testing.T) {
	prefix := CustomerPrefix("Grace")
	for _, phone := range []string{"1", "555-0100", ""} {
		assert.True(t, strings.HasPrefix(CustomerID("Grace", phone), prefix))
	}
	assert.False(t, strings.HasPrefix(CustomerID("Ada", "1"), prefix))
}

func TestParseCustomerID(t *testing.T) {
	name, phone, ok := ParseCustomerID(CustomerID("A | B", "123"))
	assert.True(t, ok)
	assert.Equal(t, "A | B", name)
	assert.Equal(t, "123", phone)

	_, _, ok = ParseCustomerID("user-17")
	assert.False(t, ok)
}
