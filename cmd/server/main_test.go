package main

import "testing"

func TestCorsConfig(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		all     bool
	}{
		{"listed", []string{"http://localhost:3000"}, false},
		{"wildcard", []string{"http://a.example", "*"}, true},
		{"none", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := corsConfig(tt.origins)
			if c.AllowAllOrigins != tt.all {
				t.Errorf("AllowAllOrigins = %v", c.AllowAllOrigins)
			}
			if err := c.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}
