package common

import (
	"errors"
	"reflect"
	"testing"
)

func TestStripGapsAndPositions(t *testing.T) {
	s := "-AB--C.D"
	if got := StripGaps(s); got != "ABCD" {
		t.Fatalf("StripGaps=%q want ABCD", got)
	}
	if got := GapPositions(s); !reflect.DeepEqual(got, []int{0, 3, 4, 6}) {
		t.Fatalf("GapPositions=%v", got)
	}
	if got := GapPositions("ABC"); len(got) != 0 {
		t.Fatalf("want no gaps, got %v", got)
	}
}

func TestInvalidfWrapsSentinel(t *testing.T) {
	err := Invalidf("bad method %q", "x")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}
