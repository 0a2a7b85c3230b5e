package version

import (
	"reflect"
	"testing"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    Range
		wantErr bool
	}{
		{in: "1.60..1.75", want: Range{Start: 60, End: 75}},
		{in: "1.60..=1.75", want: Range{Start: 60, End: 75}},
		{in: "1.60..1.76", want: Range{Start: 60, End: 76}}, // exclusive form -> inclusive, deprecated
		{in: "1.60..", want: Range{Start: 60, End: -1}},
		{in: "..1.75", want: Range{Start: 0, End: 75}},
		{in: "nope", wantErr: true},
		{in: "60..75", wantErr: true},     // bare minors are not the documented format
		{in: "2.60..2.75", wantErr: true}, // major must be 1
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRange(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRange(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRange(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestPlan(t *testing.T) {
	got, err := Plan(Range{Start: 70, End: 74}, 2, 0)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	want := []int{70, 72, 74}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Plan() = %v, want %v", got, want)
	}
}

func TestPlanOpenEndedUsesLatest(t *testing.T) {
	got, err := Plan(Range{Start: 80, End: -1}, 1, 82)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	want := []int{80, 81, 82}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Plan() = %v, want %v", got, want)
	}
}

func TestPlanInvalidRange(t *testing.T) {
	if _, err := Plan(Range{Start: 80, End: 70}, 1, 0); err == nil {
		t.Error("Plan() with start after end should error")
	}
}

func TestIdentifier(t *testing.T) {
	if got := Identifier(74); got != "1.74" {
		t.Errorf("Identifier(74) = %q, want 1.74", got)
	}
}
