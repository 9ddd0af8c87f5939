package tg

import (
	"errors"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		err       string
		system    bool
		permanent bool
	}{
		{"Too Many Requests: retry after 5 (429)", true, false},
		{"Bad Gateway 502", true, false},
		{"request timeout", true, false},
		{"Bad Request: chat not found", false, true},
		{"Forbidden: bot was blocked by the user", false, true},
		{"Bad Request: message is not modified", false, false},
	}
	for _, c := range cases {
		err := errors.New(c.err)
		if got := isSystemErr(err); got != c.system {
			t.Errorf("isSystemErr(%q) = %v", c.err, got)
		}
		if got := IsPermanent(err); got != c.permanent {
			t.Errorf("IsPermanent(%q) = %v", c.err, got)
		}
	}
	if isSystemErr(nil) || IsPermanent(nil) {
		t.Fatal("nil is not an error")
	}
}
