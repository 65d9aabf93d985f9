package creneau

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlacesRestantes(t *testing.T) {
	assert.Equal(t, 50, PlacesRestantes(50, 0))
	assert.Equal(t, 10, PlacesRestantes(50, 40))
	assert.Equal(t, 0, PlacesRestantes(50, 50))
	// Over-attachment never shows negative seats.
	assert.Equal(t, 0, PlacesRestantes(50, 55))
}
