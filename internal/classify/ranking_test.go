package classify

import (
	"reflect"
	"testing"
)

func TestArgsort(t *testing.T) {
	got := Argsort([]float64{0.3, -1, 2, 0.3})
	want := []int{1, 0, 3, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Argsort = %v, want %v", got, want)
	}
}

func TestExtremes(t *testing.T) {
	values := []float64{0.5, -2, 3, -0.1, 1}
	names := []string{"fine", "broken", "love", "meh", "good"}

	smallest, largest := Extremes(values, names, 2)

	if len(smallest) != 2 || smallest[0].Feature != "broken" || smallest[1].Feature != "meh" {
		t.Errorf("Unexpected smallest: %+v", smallest)
	}
	if len(largest) != 2 || largest[0].Feature != "love" || largest[1].Feature != "good" {
		t.Errorf("Unexpected largest: %+v", largest)
	}
	if largest[0].Weight != 3 {
		t.Errorf("Expected weight 3 for love, got %v", largest[0].Weight)
	}

	s, l := Extremes(values, names, 10)
	if len(s) != 5 || len(l) != 5 {
		t.Errorf("Expected n clamped to 5, got %d and %d", len(s), len(l))
	}

	s, l = Extremes(values, names, 0)
	if s != nil || l != nil {
		t.Error("Expected nil for n=0")
	}
}

func TestStride(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	if got := Stride(names, 2); !reflect.DeepEqual(got, []string{"a", "c", "e"}) {
		t.Errorf("Stride(2) = %v", got)
	}
	if got := Stride(names, 10); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Stride(10) = %v", got)
	}
	if got := Stride(names, 0); got != nil {
		t.Errorf("Stride(0) = %v, want nil", got)
	}
}
