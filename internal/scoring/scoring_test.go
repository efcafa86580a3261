package scoring

import (
	"errors"
	"testing"

	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b, want int
	}{
		{50, 50, 0},
		{50, 36, 14},
		{95, 15, 21},
		{15, 95, 21},
		{0, 100, 1},
		{0, 50, 50},
		{0, 51, 50},
		{100, 49, 50},
	}
	for _, tc := range cases {
		if got := Distance(tc.a, tc.b); got != tc.want {
			t.Errorf("Distance(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDistanceProperties(t *testing.T) {
	for a := 0; a <= 100; a++ {
		if d := Distance(a, a); d != 0 {
			t.Fatalf("Distance(%d, %d) = %d, want 0", a, a, d)
		}
		for b := 0; b <= 100; b++ {
			d := Distance(a, b)
			if d != Distance(b, a) {
				t.Fatalf("Distance not symmetric for %d, %d", a, b)
			}
			if d < 0 || d > 50 {
				t.Fatalf("Distance(%d, %d) = %d out of [0,50]", a, b, d)
			}
		}
	}
}

func TestScore(t *testing.T) {
	cases := []struct {
		name                             string
		objective, value, miss, strength int
		want                             int
	}{
		{"worked example", 50, 36, 1, 50, 68},
		{"perfect no miss", 40, 40, 0, 50, 150},
		{"no strength", 40, 40, 0, 0, 100},
		{"half rounds up", 50, 49, 1, 0, 50},
		{"below half rounds down", 50, 49, 2, 1, 33},
		{"wrapped value near high target", 95, 15, 0, 0, 79},
		{"farthest", 0, 50, 0, 0, 50},
		{"negative strength clamped", 10, 10, 0, -20, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.objective, tc.value, tc.miss, tc.strength)
			if got != tc.want {
				t.Fatalf("Score(%d, %d, %d, %d) = %d, want %d",
					tc.objective, tc.value, tc.miss, tc.strength, got, tc.want)
			}
			in := Input{Objective: tc.objective, Value: tc.value, Miss: tc.miss}
			if in.Score(tc.strength) != got {
				t.Fatalf("Input.Score disagrees with Score")
			}
		})
	}
}

func TestAverage(t *testing.T) {
	cases := []struct {
		scores []int
		want   int
	}{
		{[]int{45, 130, 130, 55, 65}, 85},
		{[]int{1, 2}, 2},
		{[]int{1, 1, 2}, 1},
		{[]int{68}, 68},
		{[]int{0, 0, 1, 1}, 1},
	}
	for _, tc := range cases {
		got, err := Average(tc.scores)
		if err != nil {
			t.Fatalf("Average(%v): %v", tc.scores, err)
		}
		if got != tc.want {
			t.Errorf("Average(%v) = %d, want %d", tc.scores, got, tc.want)
		}
	}
}

func TestAverageEmpty(t *testing.T) {
	if _, err := Average(nil); !errors.Is(err, apperrors.ErrEmptyInput) {
		t.Fatalf("expected empty input error, got %v", err)
	}
}

func TestMeanExact(t *testing.T) {
	mean, err := Mean([]int{60, 61})
	if err != nil {
		t.Fatalf("mean: %v", err)
	}
	if mean.String() != "60.5" {
		t.Fatalf("mean = %s, want 60.5", mean.String())
	}
}
