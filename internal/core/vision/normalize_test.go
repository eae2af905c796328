package vision

import (
	"reflect"
	"testing"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Red_Onion-2", "red onion"},
		{"red onion", "red onion"},
		{"RED ONION", "red onion"},
		{"  bell_pepper  ", "bell pepper"},
		{"Jalapeño", "jalapeno"},
		{"crème-fraîche", "creme fraiche"},
		{"egg (x3)!", "egg x"},
		{"tomato__cherry", "tomato cherry"},
		{"123", ""},
		{"", ""},
	}

	for _, tc := range tests {
		if got := NormalizeLabel(tc.input); got != tc.want {
			t.Errorf("NormalizeLabel(%q) = %q; want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeLabelIdempotent(t *testing.T) {
	for _, input := range []string{"Red_Onion-2", "Crème Brûlée", "spring-onion_3"} {
		once := NormalizeLabel(input)
		if twice := NormalizeLabel(once); twice != once {
			t.Errorf("NormalizeLabel(NormalizeLabel(%q)) = %q; want %q", input, twice, once)
		}
	}
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]string{"Tomato", "egg", "TOMATO", "42", "red_onion", "Red Onion", "egg"})
	want := []string{"tomato", "egg", "red onion"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeAll = %q; want %q", got, want)
	}

	if got := NormalizeAll(nil); len(got) != 0 {
		t.Errorf("NormalizeAll(nil) = %q; want empty", got)
	}
}
