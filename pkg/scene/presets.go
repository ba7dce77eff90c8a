package scene

import (
	"fmt"
	"sort"
	"strings"
)

// presets maps preset names to their constructors
var presets = map[string]func() *Scene{
	"cornell": NewCornellScene,
	"furnace": NewFurnaceScene,
}

// PresetNames returns the names accepted by NewPreset, sorted
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPreset builds the named built-in scene
func NewPreset(name string) (*Scene, error) {
	build, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown scene preset %q (have %s)", name, strings.Join(PresetNames(), ", "))
	}
	return build(), nil
}
