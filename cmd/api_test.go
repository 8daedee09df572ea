package cmd

import (
	"testing"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"type=newest", "size=5", "id=1", "id=2", "query=a=b"})
	if err != nil {
		t.Fatalf("parseParams() error = %v", err)
	}
	if params.Get("type") != "newest" || params.Get("size") != "5" {
		t.Errorf("params = %v", params)
	}
	if ids := params["id"]; len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Errorf("id = %v, want [1 2]", ids)
	}
	if params.Get("query") != "a=b" {
		t.Errorf("query = %q, want a=b", params.Get("query"))
	}
}

func TestParseParams_Invalid(t *testing.T) {
	for _, in := range []string{"novalue", "=x"} {
		if _, err := parseParams([]string{in}); err == nil {
			t.Errorf("parseParams(%q) succeeded, want error", in)
		}
	}
}
