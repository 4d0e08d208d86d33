package config

import "testing"

func TestValidateMode(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
	}{
		{"zenith", false},
		{"target", false},
		{"", true},
		{"sideways", true},
		{"Zenith", true},
	}
	for _, tt := range tests {
		err := ValidateMode(tt.mode)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateMode(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
		}
	}
}

func TestValidatePressureWindow(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		wantErr  bool
	}{
		{"default window", 300, 750, false},
		{"inverted", 750, 300, true},
		{"empty", 500, 500, true},
		{"negative", -1, 750, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePressureWindow(tt.min, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePressureWindow(%g, %g) error = %v, wantErr %v", tt.min, tt.max, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWorkers(t *testing.T) {
	if err := ValidateWorkers(1); err != nil {
		t.Errorf("ValidateWorkers(1) = %v, want nil", err)
	}
	if err := ValidateWorkers(0); err == nil {
		t.Error("ValidateWorkers(0) should fail")
	}
}
