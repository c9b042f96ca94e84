package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPageRequestFloors(t *testing.T) {
	p := NewPageRequest(0, -5)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 1, p.Limit)

	p = NewPageRequest(3, 25)
	require.Equal(t, 3, p.Page)
	require.Equal(t, 25, p.Limit)
}

func TestPageRequestOffset(t *testing.T) {
	require.Equal(t, 0, PageRequest{Page: 1, Limit: 10}.Offset())
	require.Equal(t, 20, PageRequest{Page: 3, Limit: 10}.Offset())
}

func TestPageRequestMeta(t *testing.T) {
	meta := PageRequest{Page: 2, Limit: 10}.Meta(45)
	require.Equal(t, 2, meta.Page)
	require.Equal(t, 10, meta.Limit)
	require.EqualValues(t, 45, meta.TotalCount)
	require.Equal(t, 5, meta.TotalPages)
}

func TestPageRequestMetaEmpty(t *testing.T) {
	meta := PageRequest{Page: 1, Limit: 20}.Meta(0)
	require.Equal(t, 0, meta.TotalPages)
	require.EqualValues(t, 0, meta.TotalCount)
}
