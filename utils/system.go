package utils

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MemUsage is a snapshot of the runtime memory statistics, in MiB
type MemUsage struct {
	Alloc, TotalAlloc, Sys uint64
	NumGC                  uint32
}

func ReadMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	// For info on each, see: https://golang.org/pkg/runtime/#MemStats
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return MemUsage{Alloc: bToMb(m.Alloc), TotalAlloc: bToMb(m.TotalAlloc), Sys: bToMb(m.Sys), NumGC: m.NumGC}
}

func (u MemUsage) String() string {
	return fmt.Sprintf("Alloc = %v MiB TotalAlloc = %v MiB Sys = %v MiB NumGC = %v",
		u.Alloc, u.TotalAlloc, u.Sys, u.NumGC)
}

// LogValue groups the statistics under one log attribute
func (u MemUsage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("alloc_mib", u.Alloc),
		slog.Uint64("total_alloc_mib", u.TotalAlloc),
		slog.Uint64("sys_mib", u.Sys),
		slog.Uint64("num_gc", uint64(u.NumGC)),
	)
}

func GetMemUsage() string {
	return ReadMemUsage().String()
}

func IsNan(A any) bool {
	switch v := A.(type) {
	case float64:
		return math.IsNaN(v)
	case []float64:
		return floats.HasNaN(v)
	case *mat.Dense:
		if v == nil {
			return false
		}
		rows, _ := v.Dims()
		for r := 0; r < rows; r++ {
			if floats.HasNaN(v.RawRowView(r)) {
				return true
			}
		}
	case []*mat.Dense:
		for _, d := range v {
			if IsNan(d) {
				return true
			}
		}
	}
	return false
}
