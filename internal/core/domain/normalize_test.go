package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName_StripsDiacriticsAndLowercases(t *testing.T) {
	assert.Equal(t, "nunez", NormalizeName("Núñez"))
}

func TestNormalizeName_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "diego lopez", NormalizeName("  Diego   Lopez  "))
}

func TestNormalizeName_EmptyStringPassthrough(t *testing.T) {
	assert.Equal(t, "", NormalizeName(""))
}

func TestNormalizeName_MatchesAcrossDiacriticVariants(t *testing.T) {
	assert.Equal(t, NormalizeName("Núñez"), NormalizeName("Nunez"))
}
