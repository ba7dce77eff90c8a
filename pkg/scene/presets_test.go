package scene

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPresets(t *testing.T) {
	if diff := cmp.Diff([]string{"cornell", "furnace"}, PresetNames()); diff != "" {
		t.Errorf("Preset names mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name         string
		emitters     int
		emissiveArea float64
		primitives   int
	}{
		{"cornell", 1, 130 * 130, 5 + 1 + 2*6},
		{"furnace", 1, 4 * math.Pi * 100, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewPreset(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Preprocess(); err != nil {
				t.Fatal(err)
			}
			if len(s.Emitters()) != tt.emitters {
				t.Errorf("Expected %d emitters, got %d", tt.emitters, len(s.Emitters()))
			}
			if math.Abs(s.EmissiveArea()-tt.emissiveArea) > 1e-6 {
				t.Errorf("Expected emissive area %f, got %f", tt.emissiveArea, s.EmissiveArea())
			}
			if s.PrimitiveCount() != tt.primitives {
				t.Errorf("Expected %d primitives, got %d", tt.primitives, s.PrimitiveCount())
			}
		})
	}
}

func TestNewPreset_Unknown(t *testing.T) {
	if _, err := NewPreset("sponza"); err == nil {
		t.Error("Expected error for unknown preset")
	}
	if _, err := NewPreset(" Cornell "); err != nil {
		t.Errorf("Preset names should be case-insensitive: %v", err)
	}
}
