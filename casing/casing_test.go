package casing_test

import (
	"testing"

	"github.com/reoring/vine/casing"
)

func TestToCamelCase(t *testing.T) {
	cases := []struct{ in, want string }{
		{"mobile_number", "mobileNumber"},
		{"first-name", "firstName"},
		{"FooBar", "fooBar"},
		{"fooBar", "fooBar"},
		{"foo_bar_baz", "fooBarBaz"},
		{"XMLHttpRequest", "xmlHttpRequest"},
		{"address_line_1", "addressLine1"},
		{"email", "email"},
		{"*", "*"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := casing.ToCamelCase(tc.in); got != tc.want {
			t.Fatalf("ToCamelCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
