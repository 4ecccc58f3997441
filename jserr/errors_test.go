package jserr_test

import (
	"errors"
	"testing"

	"github.com/gojsembed/qjsgo/jserr"
)

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  *jserr.Error
		want string
	}{
		{"allocation", jserr.Allocation(), "out of memory"},
		{"missing args", jserr.MissingArgs(2, 1), "not enough arguments: expected 2, given 1"},
		{"too many args", jserr.TooManyArgs(2, 3), "too many arguments: expected at most 2, given 3"},
		{"from js", jserr.FromJS("string", "number"), "cannot convert string to number"},
		{"into js", jserr.IntoJS("Person", "object"), "cannot convert Person to object"},
		{"resolving", jserr.Resolving("main.js", "./util", ""), `could not resolve module "./util" from "main.js"`},
		{"loading", jserr.Loading("", "./util", ""), `could not load module "./util"`},
		{"unrelated runtime", jserr.UnrelatedRuntime(), "persistent value restored against an unrelated engine"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestErrorMsgOverridesDefault(t *testing.T) {
	err := jserr.FromJSMessage("string", "number", "custom detail")
	if got, want := err.Error(), "custom detail"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := jserr.Borrow("cell already borrowed mutably")
	if !errors.Is(err, jserr.ErrBorrow) {
		t.Fatalf("expected errors.Is to match on Kind, independent of Msg")
	}
	if errors.Is(err, jserr.ErrAllocation) {
		t.Fatalf("expected errors.Is to reject a different Kind")
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("invalid byte sequence")
	err := jserr.Utf8(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to reach the wrapped cause via Unwrap")
	}
}

func TestKindString(t *testing.T) {
	if got, want := jserr.KindBorrow.String(), "Borrow"; got != want {
		t.Fatalf("Kind.String() = %q, want %q", got, want)
	}
	if got, want := jserr.Kind(999).String(), "Unknown"; got != want {
		t.Fatalf("Kind.String() for an out-of-range value = %q, want %q", got, want)
	}
}
