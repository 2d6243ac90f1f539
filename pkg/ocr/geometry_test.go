package ocr

import (
	"testing"
)

func TestConvertQuadYFlip(t *testing.T) {
	vertices := []*Vertex{
		{X: 0.1, Y: 0.2},
		{X: 0.5, Y: 0.2},
		{X: 0.5, Y: 0.4},
		{X: 0.1, Y: 0.4},
	}

	quad := ConvertQuad(vertices, 1000, 500, GeometryModeYFlip)

	want := []float64{100, 400, 500, 400, 500, 300, 100, 300}
	for i := range want {
		if quad[i] != want[i] {
			t.Errorf("quad[%d] = %v, want %v", i, quad[i], want[i])
		}
	}
}

func TestConvertQuadDirectSwapsCorners(t *testing.T) {
	vertices := []*Vertex{
		{X: 0.1, Y: 0.2},
		{X: 0.5, Y: 0.2},
		{X: 0.5, Y: 0.4},
		{X: 0.1, Y: 0.4},
	}

	quad := ConvertQuad(vertices, 1000, 500, GeometryModeDirect)

	// y stays top-left origin, corners 2 and 3 trade places
	want := []float64{100, 100, 500, 100, 100, 200, 500, 200}
	for i := range want {
		if quad[i] != want[i] {
			t.Errorf("quad[%d] = %v, want %v", i, quad[i], want[i])
		}
	}
}

func TestConvertQuadMalformedInput(t *testing.T) {
	tests := []struct {
		name     string
		vertices []*Vertex
	}{
		{"nil vertices", nil},
		{"empty", []*Vertex{}},
		{"three vertices", []*Vertex{{X: 0.1}, {X: 0.2}, {X: 0.3}}},
		{"nil vertex entry", []*Vertex{{X: 0.1}, nil, {X: 0.3}, {X: 0.4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quad := ConvertQuad(tt.vertices, 800, 600, GeometryModeYFlip)
			if !IsZeroQuad(quad) {
				t.Errorf("expected zero quad, got %v", quad)
			}
		})
	}
}

func TestIsZeroQuad(t *testing.T) {
	if !IsZeroQuad(ZeroQuad()) {
		t.Error("ZeroQuad must report as zero")
	}
	if !IsZeroQuad(nil) {
		t.Error("nil must report as zero")
	}
	if IsZeroQuad([]float64{0, 0, 0, 0, 0, 0, 0, 1}) {
		t.Error("non-zero quad reported as zero")
	}
}
