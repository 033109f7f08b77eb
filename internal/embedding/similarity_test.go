package embedding

import (
	"math"
	"testing"
)

func TestCosineSimilarity_Identical(t *testing.T) {
	v := []float32{0.3, -0.5, 0.8}
	got := CosineSimilarity(v, v)
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("CosineSimilarity(v, v) = %v, want 1.0", got)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	got := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if math.Abs(got) > 1e-6 {
		t.Errorf("CosineSimilarity(orthogonal) = %v, want 0", got)
	}
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	got := CosineSimilarity([]float32{1, 2}, []float32{-1, -2})
	if math.Abs(got+1.0) > 1e-6 {
		t.Errorf("CosineSimilarity(opposite) = %v, want -1.0", got)
	}
}

func TestCosineSimilarity_ScaleInvariant(t *testing.T) {
	a := []float32{0.2, 0.7, -0.1}
	b := []float32{0.4, 1.4, -0.2}
	got := CosineSimilarity(a, b)
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("CosineSimilarity(scaled) = %v, want 1.0", got)
	}
}

func TestCosineSimilarity_DegenerateInputs(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Errorf("mismatched lengths = %v, want 0", got)
	}
	if got := CosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("zero vector = %v, want 0", got)
	}
	if got := CosineSimilarity(nil, nil); got != 0 {
		t.Errorf("nil vectors = %v, want 0", got)
	}
}
