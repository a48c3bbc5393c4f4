package config

import "testing"

func TestScenarioTemplateSystem(t *testing.T) {
	template := GetScenarioTemplate("patrol")
	if template == nil {
		t.Fatal("Expected to get patrol template, got nil")
	}
	if template.Name != "Patrol" {
		t.Errorf("Expected template name 'Patrol', got '%s'", template.Name)
	}

	templates := ListScenarioTemplates()
	for _, expected := range []string{"single_ship", "patrol", "convoy"} {
		if _, ok := templates[expected]; !ok {
			t.Errorf("Expected template '%s' to be available", expected)
		}
	}

	cfg := DefaultConfig()
	if err := ApplyScenarioTemplate(cfg, "convoy"); err != nil {
		t.Fatalf("Failed to apply scenario template: %v", err)
	}
	if len(cfg.Ships) != 3 {
		t.Errorf("Expected 3 ships from convoy template, got %d", len(cfg.Ships))
	}
	if len(cfg.Bodies) != 2 {
		t.Errorf("Expected 2 bodies from convoy template, got %d", len(cfg.Bodies))
	}

	// The applied config must not alias the template.
	cfg.Ships[0].Target[2] = -1
	if GetScenarioTemplate("convoy").Ships[0].Target[2] == -1 {
		t.Error("ApplyScenarioTemplate aliased the template target")
	}

	if err := ApplyScenarioTemplate(cfg, "unknown_template"); err == nil {
		t.Error("Expected error for unknown template")
	}

	cfg2, err := LoadConfigWithTemplate("nonexistent.json", "patrol")
	if err != nil {
		t.Fatalf("LoadConfigWithTemplate should fall back to default config, got error: %v", err)
	}
	if len(cfg2.Ships) != 1 || len(cfg2.Ships[0].Waypoints) != 3 {
		t.Errorf("Expected patrol ship with 3 waypoints, got %+v", cfg2.Ships)
	}
}

func TestScenarioTemplateValidation(t *testing.T) {
	for name := range scenarioTemplates {
		t.Run(name, func(t *testing.T) {
			template := GetScenarioTemplate(name)
			if template.Name == "" || template.Description == "" {
				t.Error("Template name and description should not be empty")
			}
			if len(template.Ships) == 0 {
				t.Error("Template should have at least one ship")
			}

			cfg := DefaultConfig()
			if err := ApplyScenarioTemplate(cfg, name); err != nil {
				t.Fatal(err)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("template %s does not validate: %v", name, err)
			}
		})
	}
}
