package domain

import "testing"

func TestMaskSSN(t *testing.T) {
	if got := MaskSSN("123-45-6789"); got != "***-**-6789" {
		t.Fatalf("MaskSSN = %q", got)
	}
	if got := MaskSSN("678"); got != "" {
		t.Fatalf("short ssn should mask to empty, got %q", got)
	}
}
