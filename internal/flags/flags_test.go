package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForCountry(t *testing.T) {
	assert.Equal(t, "\U0001F1FA\U0001F1F8", ForCountry("United States"))
	assert.Equal(t, "\U0001F1FA\U0001F1F8", ForCountry("USA"))
	assert.Equal(t, "\U0001F1EC\U0001F1E7", ForCountry("United Kingdom"))
	assert.Equal(t, "\U0001F1EC\U0001F1E7", ForCountry("Scotland"))
	assert.Equal(t, "\U0001F1E8\U0001F1E6", ForCountry("Canada"))
}

func TestForCountry_NormalizesInput(t *testing.T) {
	assert.Equal(t, "\U0001F1FA\U0001F1F8", ForCountry("  united   states "))
	assert.Equal(t, "\U0001F1EC\U0001F1E7", ForCountry("uNiTeD kInGdOm"))
}

func TestForCountry_Unknown(t *testing.T) {
	assert.Empty(t, ForCountry(""))
	assert.Empty(t, ForCountry("Atlantis"))
}
