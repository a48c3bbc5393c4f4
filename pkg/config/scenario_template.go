// pkg/config/scenario_template.go
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightsim/pkg/entity"
)

// ScenarioTemplate is a named set of ships and scenery.
type ScenarioTemplate struct {
	Name        string
	Description string
	Ships       []ShipConfig
	Bodies      []BodyConfig
}

func vec(x, y, z float64) *mgl64.Vec3 {
	v := mgl64.Vec3{x, y, z}
	return &v
}

var scenarioTemplates = map[string]*ScenarioTemplate{
	"single_ship": {
		Name:        "Single Ship",
		Description: "One Albatross at the origin under keyboard control",
		Ships: []ShipConfig{
			{Name: "Albatross", Class: entity.Albatross, Player: true},
		},
		Bodies: []BodyConfig{
			{Name: "Tethys", Type: "Rocky", Position: mgl64.Vec3{500, 500, 500}, Radius: 500},
		},
	},
	"patrol": {
		Name:        "Patrol",
		Description: "An Albatross flying a square waypoint loop",
		Ships: []ShipConfig{
			{
				Name:   "Patrol-1",
				Class:  entity.Albatross,
				Target: vec(0, 0, 200),
				Waypoints: []mgl64.Vec3{
					{200, 0, 200},
					{200, 0, 0},
					{0, 0, 0},
				},
			},
		},
		Bodies: []BodyConfig{
			{Name: "Tethys", Type: "Rocky", Position: mgl64.Vec3{100, -600, 100}, Radius: 400},
		},
	},
	"convoy": {
		Name:        "Convoy",
		Description: "A freighter escorted by two shuttles toward a gas giant",
		Ships: []ShipConfig{
			{Name: "Hauler", Class: entity.Freighter, Target: vec(0, 0, 1500)},
			{Name: "Escort-L", Class: entity.Shuttle, Position: mgl64.Vec3{-40, 0, 0}, Target: vec(-40, 0, 1500)},
			{Name: "Escort-R", Class: entity.Shuttle, Position: mgl64.Vec3{40, 0, 0}, Target: vec(40, 0, 1500)},
		},
		Bodies: []BodyConfig{
			{Name: "Kronos", Type: "GasGiant", Position: mgl64.Vec3{0, 0, 3000}, Radius: 900},
			{Name: "Rime", Type: "Ice", Position: mgl64.Vec3{1200, 200, 2400}, Radius: 150},
		},
	},
}

// GetScenarioTemplate returns a built-in template, or nil.
func GetScenarioTemplate(name string) *ScenarioTemplate {
	return scenarioTemplates[name]
}

// ListScenarioTemplates maps template keys to their descriptions.
func ListScenarioTemplates() map[string]string {
	out := make(map[string]string, len(scenarioTemplates))
	for key, t := range scenarioTemplates {
		out[key] = t.Description
	}
	return out
}

// ApplyScenarioTemplate replaces the ships and bodies of config.
func ApplyScenarioTemplate(config *SimulationConfig, name string) error {
	template := GetScenarioTemplate(name)
	if template == nil {
		return fmt.Errorf("unknown scenario template: %s", name)
	}

	config.Ships = make([]ShipConfig, len(template.Ships))
	for i, s := range template.Ships {
		s.Waypoints = append([]mgl64.Vec3(nil), s.Waypoints...)
		if s.Target != nil {
			t := *s.Target
			s.Target = &t
		}
		config.Ships[i] = s
	}
	config.Bodies = append([]BodyConfig(nil), template.Bodies...)
	return nil
}

// LoadConfigWithTemplate loads path, falling back to DefaultConfig when the
// file does not exist, then applies the named template if one is given.
func LoadConfigWithTemplate(path, template string) (*SimulationConfig, error) {
	config, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		config = DefaultConfig()
	}

	if template != "" {
		if err := ApplyScenarioTemplate(config, template); err != nil {
			return nil, err
		}
	}
	return config, nil
}
