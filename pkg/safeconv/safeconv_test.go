package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampToUint32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   int
		want uint32
	}{
		{name: "zero", in: 0, want: 0},
		{name: "normal", in: 42, want: 42},
		{name: "negative", in: -7, want: 0},
		{name: "max", in: math.MaxUint32, want: math.MaxUint32},
		{name: "overflow", in: math.MaxUint32 + 1, want: math.MaxUint32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClampToUint32(tt.in))
		})
	}
}

func TestUint32ToInt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Uint32ToInt(0))
	assert.Equal(t, 123, Uint32ToInt(123))
}

func TestZeroBased(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), ZeroBased(1))
	assert.Equal(t, uint32(4), ZeroBased(5))
	assert.Equal(t, uint32(0), ZeroBased(0))
	assert.Equal(t, uint32(0), ZeroBased(-3))
}
