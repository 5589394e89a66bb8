package domain

import (
	"errors"
	"testing"
)

func validDriver() *Driver {
	return &Driver{
		FullName:     "Jane Smith",
		SSN:          "123-45-6789",
		LicenseState: "CA",
		Age:          34,
	}
}

func TestValidateDriver(t *testing.T) {
	if err := ValidateDriver(validDriver()); err != nil {
		t.Fatalf("valid driver rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Driver)
	}{
		{"empty name", func(d *Driver) { d.FullName = "" }},
		{"malformed ssn", func(d *Driver) { d.SSN = "123456789" }},
		{"lowercase state", func(d *Driver) { d.LicenseState = "ca" }},
		{"long state", func(d *Driver) { d.LicenseState = "CAL" }},
		{"too young", func(d *Driver) { d.Age = 15 }},
		{"too old", func(d *Driver) { d.Age = 100 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDriver()
			tt.mutate(d)
			err := ValidateDriver(d)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestValidateDriver_OptionalSSN(t *testing.T) {
	d := validDriver()
	d.SSN = ""
	if err := ValidateDriver(d); err != nil {
		t.Fatalf("driver without SSN rejected: %v", err)
	}
}
