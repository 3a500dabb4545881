// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/tomtom215/fieldtrail/internal/models"
)

// zigzag builds a noisy path heading north-east.
func zigzag(n int, seed int64) []models.Coordinate {
	r := rand.New(rand.NewSource(seed))
	out := make([]models.Coordinate, n)
	for i := range out {
		out[i] = c(
			40+float64(i)*0.0005+r.Float64()*0.0002,
			-74+float64(i)*0.0004+math.Sin(float64(i)/5)*0.001,
		)
	}
	return out
}

func checkEndpointsAndBudget(t *testing.T, in, out []models.Coordinate, maxPoints int) {
	t.Helper()
	if len(out) < 2 {
		t.Fatalf("expected at least 2 points, got %d", len(out))
	}
	if out[0] != in[0] {
		t.Errorf("first point changed: %+v -> %+v", in[0], out[0])
	}
	if out[len(out)-1] != in[len(in)-1] {
		t.Errorf("last point changed: %+v -> %+v", in[len(in)-1], out[len(out)-1])
	}
	if len(out) > maxPoints+SimplifyMargin {
		t.Errorf("expected at most %d points, got %d", maxPoints+SimplifyMargin, len(out))
	}
}

func TestSimplifyUnderBudgetUnchanged(t *testing.T) {
	in := zigzag(50, 1)
	out := Simplify(in, 100)
	if len(out) != len(in) {
		t.Fatalf("expected unchanged length %d, got %d", len(in), len(out))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("index %d changed", i)
		}
	}
}

func TestSimplifyPreservesEndpoints(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		maxPoints int
	}{
		{"just over budget", 101, 100},
		{"2x budget", 200, 100},
		{"10x budget", 1000, 100},
		{"huge reduction", 5000, 10},
		{"tiny budget", 300, 2},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := zigzag(tt.n, int64(i+7))
			out := Simplify(in, tt.maxPoints)
			checkEndpointsAndBudget(t, in, out, tt.maxPoints)
		})
	}
}

func TestSimplifyStraightLineCollapses(t *testing.T) {
	in := make([]models.Coordinate, 500)
	for i := range in {
		in[i] = c(float64(i)*0.001, float64(i)*0.001)
	}
	out := Simplify(in, 100)
	if len(out) != 2 {
		t.Errorf("collinear input should collapse to its endpoints, got %d points", len(out))
	}
	checkEndpointsAndBudget(t, in, out, 100)
}

func TestSimplifyDoesNotMutateInput(t *testing.T) {
	in := zigzag(400, 3)
	snapshot := make([]models.Coordinate, len(in))
	copy(snapshot, in)

	_ = Simplify(in, 50)

	for i := range in {
		if in[i] != snapshot[i] {
			t.Fatalf("input mutated at index %d", i)
		}
	}
}

func TestStrideSample(t *testing.T) {
	in := make([]models.Coordinate, 10)
	for i := range in {
		in[i] = c(float64(i), 0)
	}

	// step = ceil(10/4) = 3 -> indices 0, 3, 6, 9
	out := StrideSample(in, 4)
	wantLat := []float64{0, 3, 6, 9}
	if len(out) != len(wantLat) {
		t.Fatalf("expected %d points, got %d (%v)", len(wantLat), len(out), out)
	}
	for i, lat := range wantLat {
		if out[i].Lat != lat {
			t.Errorf("index %d: expected lat %v, got %v", i, lat, out[i].Lat)
		}
	}

	// step = ceil(11/5) = 3 -> 0, 3, 6, 9, then the last index 10
	in = append(in, c(10, 0))
	out = StrideSample(in, 5)
	if out[len(out)-1].Lat != 10 || out[0].Lat != 0 {
		t.Errorf("endpoints not kept: %v", out)
	}
	if len(out) > 5+SimplifyMargin {
		t.Errorf("stride output over budget: %d", len(out))
	}
}

func TestStrideSampleBudgetProperty(t *testing.T) {
	for n := 3; n < 400; n += 7 {
		for _, maxPoints := range []int{2, 3, 10, 99} {
			in := zigzag(n, int64(n))
			out := StrideSample(in, maxPoints)
			if n <= maxPoints {
				if len(out) != n {
					t.Fatalf("n=%d max=%d: expected unchanged", n, maxPoints)
				}
				continue
			}
			checkEndpointsAndBudget(t, in, out, maxPoints)
		}
	}
}
