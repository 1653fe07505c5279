package pagerange

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse_Expressions(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []int
	}{
		{"single page", "3", []int{3}},
		{"list", "1,3,5", []int{1, 3, 5}},
		{"range", "2-5", []int{2, 3, 4, 5}},
		{"mixed", "1,3-5,8", []int{1, 3, 4, 5, 8}},
		{"single page range", "4-4", []int{4}},
		{"whitespace ignored", " 1 , 3 - 5 ", []int{1, 3, 4, 5}},
		{"order preserved", "5,1-2", []int{5, 1, 2}},
		{"duplicates preserved", "2,2,1-2", []int{2, 2, 1, 2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tc.in, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"only whitespace", "   "},
		{"descending range", "5-2"},
		{"zero page", "0"},
		{"zero in range", "0-3"},
		{"negative page", "-1"},
		{"text", "abc"},
		{"text in range", "1-x"},
		{"trailing comma", "1,2,"},
		{"double dash", "1-2-3"},
		{"missing range end", "3-"},
		{"decimal", "1.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.in)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tc.in)
			}
			var rangeErr *InvalidRangeError
			if !errors.As(err, &rangeErr) {
				t.Errorf("Parse(%q) returned %T, want *InvalidRangeError", tc.in, err)
			}
		})
	}
}

func TestParse_DescendingRangeCarriesBounds(t *testing.T) {
	_, err := Parse("7-3")
	var rangeErr *InvalidRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected *InvalidRangeError, got %v", err)
	}
	if rangeErr.Start != 7 || rangeErr.End != 3 {
		t.Errorf("bounds = (%d, %d), want (7, 3)", rangeErr.Start, rangeErr.End)
	}
}

func TestParse_NoUpperBoundCheck(t *testing.T) {
	got, err := Parse("9999")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(got) != 1 || got[0] != 9999 {
		t.Errorf("Parse(\"9999\") = %v, want [9999]", got)
	}
}

func TestValidatePages(t *testing.T) {
	if err := ValidatePages([]int{1, 2, 99}); err != nil {
		t.Errorf("ValidatePages accepted list failed: %v", err)
	}
	if err := ValidatePages([]int{1, 0}); err == nil {
		t.Error("ValidatePages should reject page 0")
	}
}
