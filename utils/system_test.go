package utils

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestIsNan(t *testing.T) {
	nan := math.NaN()
	testCases := []struct {
		name string
		in   any
		want bool
	}{
		{"Scalar", 1.0, false},
		{"ScalarNaN", nan, true},
		{"Slice", []float64{1, 2}, false},
		{"SliceNaN", []float64{1, nan}, true},
		{"Dense", mat.NewDense(2, 2, []float64{1, 2, 3, 4}), false},
		{"DenseNaN", mat.NewDense(2, 1, []float64{1, nan}), true},
		{"NilDense", (*mat.Dense)(nil), false},
		{"Groups", []*mat.Dense{nil, mat.NewDense(1, 1, []float64{nan})}, true},
		{"Other", "NaN", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsNan(tc.in))
		})
	}
}

func TestMemUsage(t *testing.T) {
	assert.True(t, strings.HasPrefix(GetMemUsage(), "Alloc = "))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("step", "mem", ReadMemUsage())
	assert.Contains(t, buf.String(), "mem.alloc_mib=")
	assert.Contains(t, buf.String(), "mem.num_gc=")
}
