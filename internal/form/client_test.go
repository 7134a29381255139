package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIdentifier(t *testing.T) {
	assert.Equal(t, "203.0.113.7", ClientIdentifier("203.0.113.7", ""))
	assert.Equal(t, "203.0.113.7", ClientIdentifier("203.0.113.7, 10.0.0.1, 10.0.0.2", ""))
	assert.Equal(t, "203.0.113.7", ClientIdentifier(" 203.0.113.7 ,10.0.0.1", "198.51.100.2"))
	assert.Equal(t, "198.51.100.2", ClientIdentifier("", "198.51.100.2"))
	assert.Equal(t, UnknownClient, ClientIdentifier("", ""))
	assert.Equal(t, UnknownClient, ClientIdentifier(" , ", "  "))
}
