package content

import (
	"strings"
	"testing"
)

func TestValidCID(t *testing.T) {
	valid := strings.Repeat("a1", 32)
	if !ValidCID(valid) {
		t.Fatalf("expected %q to be valid", valid)
	}

	invalid := []string{
		"",
		"abc",
		strings.Repeat("A1", 32),
		strings.Repeat("g1", 32),
		valid + "ff",
		"../" + valid[3:],
	}
	for _, cid := range invalid {
		if ValidCID(cid) {
			t.Fatalf("expected %q to be rejected", cid)
		}
	}
}
