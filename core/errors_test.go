package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError(errors.New("Parámetro startDate inválido."))
	assert.Equal(t, "Parámetro startDate inválido.", err.Error())

	var vErr *ValidationError
	assert.True(t, errors.As(errors.Wrap(err, "parsing"), &vErr))
	assert.Equal(t, "", ValidationError{}.Error())
}
