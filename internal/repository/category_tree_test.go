package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v uint64) *uint64 { return &v }

func TestBuildTree(t *testing.T) {
	cats := []Category{
		{ID: 1, Name: "Flooring"},
		{ID: 2, Name: "Hardwood", ParentID: ptr(1)},
		{ID: 3, Name: "Tile", ParentID: ptr(1)},
		{ID: 4, Name: "Ceramic Tile", ParentID: ptr(3)},
		{ID: 5, Name: "Paint"},
	}

	roots := BuildTree(cats)
	require.Len(t, roots, 2)

	flooring := roots[0]
	assert.Equal(t, uint64(1), flooring.ID)
	require.Len(t, flooring.Children, 2)
	assert.Equal(t, "Hardwood", flooring.Children[0].Name)
	assert.Equal(t, "Tile", flooring.Children[1].Name)
	require.Len(t, flooring.Children[1].Children, 1)
	assert.Equal(t, "Ceramic Tile", flooring.Children[1].Children[0].Name)

	paint := roots[1]
	assert.Equal(t, uint64(5), paint.ID)
	assert.Empty(t, paint.Children)
	// Leaves carry an empty slice, not nil, so they serialize as [].
	assert.NotNil(t, paint.Children)
}

func TestBuildTreeDanglingParentBecomesRoot(t *testing.T) {
	cats := []Category{
		{ID: 1, Name: "Visible"},
		{ID: 2, Name: "Orphan", ParentID: ptr(99)},
	}

	roots := BuildTree(cats)
	require.Len(t, roots, 2)
	assert.Equal(t, "Visible", roots[0].Name)
	assert.Equal(t, "Orphan", roots[1].Name)
}

func TestBuildTreeEmpty(t *testing.T) {
	roots := BuildTree(nil)
	assert.NotNil(t, roots)
	assert.Empty(t, roots)
}

func TestDescendantIDs(t *testing.T) {
	cats := []Category{
		{ID: 1},
		{ID: 2, ParentID: ptr(1)},
		{ID: 3, ParentID: ptr(1)},
		{ID: 4, ParentID: ptr(3)},
		{ID: 5, ParentID: ptr(4)},
		{ID: 6}, // unrelated root
	}

	got := DescendantIDs(cats, 1)
	assert.Equal(t, map[uint64]struct{}{
		1: {}, 2: {}, 3: {}, 4: {}, 5: {},
	}, got)

	// Mid-tree root picks up its branch only.
	got = DescendantIDs(cats, 3)
	assert.Equal(t, map[uint64]struct{}{3: {}, 4: {}, 5: {}}, got)

	// A leaf resolves to just itself.
	got = DescendantIDs(cats, 5)
	assert.Equal(t, map[uint64]struct{}{5: {}}, got)
}

func TestDescendantIDsUnknownRoot(t *testing.T) {
	cats := []Category{{ID: 1}, {ID: 2, ParentID: ptr(1)}}
	got := DescendantIDs(cats, 42)
	assert.Equal(t, map[uint64]struct{}{42: {}}, got)
}

func TestDescendantIDsCycleTerminates(t *testing.T) {
	// Corrupt data with a parent cycle must not loop forever.
	cats := []Category{
		{ID: 1, ParentID: ptr(3)},
		{ID: 2, ParentID: ptr(1)},
		{ID: 3, ParentID: ptr(2)},
	}

	got := DescendantIDs(cats, 1)
	assert.Equal(t, map[uint64]struct{}{1: {}, 2: {}, 3: {}}, got)
}
