package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrSliceToUInt64Slice(t *testing.T) {
	ids, err := StrSliceToUInt64Slice([]string{"1", "42"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 42}, ids)

	_, err = StrSliceToUInt64Slice([]string{"x"})
	assert.Error(t, err)
}

func TestTrimToNil(t *testing.T) {
	assert.Nil(t, TrimToNil(nil))
	assert.Nil(t, TrimToNil(PtrString("   ")))
	assert.Equal(t, "hi", *TrimToNil(PtrString("  hi ")))
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 10, ClampInt(0, 10, 1, 50))
	assert.Equal(t, 50, ClampInt(200, 10, 1, 50))
	assert.Equal(t, 7, ClampInt(7, 10, 1, 50))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 3, TotalPages(21, 10))
}

type sample struct {
	Name string   `validate:"max=3"`
	Tags []string `validate:"max=2,dive,max=2"`
}

func TestValidateDTO(t *testing.T) {
	assert.NoError(t, ValidateDTO(&sample{Name: "abc", Tags: []string{"go"}}))
	assert.Error(t, ValidateDTO(&sample{Name: "abcd"}))
	assert.Error(t, ValidateDTO(&sample{Tags: []string{"a", "b", "c"}}))
	assert.Error(t, ValidateDTO(&sample{Tags: []string{"long"}}))
}
