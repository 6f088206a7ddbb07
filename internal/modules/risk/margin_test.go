package risk

import "testing"

func TestMarginSafe(t *testing.T) {
	tests := []struct {
		name        string
		equity      float64
		existing    float64
		candidate   float64
		wantSafe    bool
		description string
	}{
		{
			name:        "Comfortably safe",
			equity:      1000,
			existing:    100,
			candidate:   50,
			wantSafe:    true,
			description: "15% usage, 85% free",
		},
		{
			name:        "Free margin exactly at 50% is unsafe",
			equity:      1000,
			existing:    400,
			candidate:   100,
			wantSafe:    false,
			description: "Predicate requires strictly more than 50% free",
		},
		{
			name:        "Usage exactly at 40% is unsafe",
			equity:      1000,
			existing:    300,
			candidate:   100,
			wantSafe:    false,
			description: "Predicate requires strictly less than 40% usage",
		},
		{
			name:        "Just inside both bounds",
			equity:      1000,
			existing:    300,
			candidate:   99.99,
			wantSafe:    true,
			description: "39.999% usage, 60.001% free",
		},
		{
			name:        "Zero equity",
			equity:      0,
			existing:    0,
			candidate:   0,
			wantSafe:    false,
			description: "No equity can never be safe",
		},
		{
			name:        "Usage binds before free margin",
			equity:      1000,
			existing:    0,
			candidate:   450,
			wantSafe:    false,
			description: "55% free passes but 45% usage fails",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safe, verdict := marginSafe(tt.equity, tt.existing, tt.candidate)
			if safe != tt.wantSafe {
				t.Errorf("marginSafe(%v, %v, %v) = %v (%s), want %v - %s",
					tt.equity, tt.existing, tt.candidate, safe, verdict, tt.wantSafe, tt.description)
			}
		})
	}
}
