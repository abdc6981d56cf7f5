package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNames(t *testing.T) {
	assert.Equal(t, "staging-web-1", Resource("staging", "web-1"))
	assert.Equal(t, "igw-staging", InternetGateway("staging"))
	assert.Equal(t, "staging-s3-endpoint", Endpoint("staging", "s3"))
	assert.Equal(t, "us-east-1b", Zone("us-east-1", "b"))
}

func TestInstanceStripsIDPrefix(t *testing.T) {
	assert.Equal(t, "staging-web-0123abcd", Instance("staging", "web", "i-0123abcd"))
	assert.Equal(t, "staging-web-0123abcd", Instance("staging", "web", "0123abcd"))
}
