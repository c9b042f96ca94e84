package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	id := NewID()
	require.NotEqual(t, uuid.Nil, id)
	require.Equal(t, uuid.Version(7), id.Version())
}

func TestNewIDIsTimeOrdered(t *testing.T) {
	first := NewID()
	second := NewID()
	require.True(t, first.String() < second.String() || first.Time() <= second.Time())
}
