package priority

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Keywords holds the channel and content keyword sets the calculator
// consults. They are data, not code: defaults ship compiled in and a YAML
// file can replace any set wholesale.
type Keywords struct {
	ExecutiveChannels []string `yaml:"executive_channels"`
	UrgentChannels    []string `yaml:"urgent_channels"`
	CasualChannels    []string `yaml:"casual_channels"`
	HighPriority      []string `yaml:"high_priority"`
}

// WorkingHours is the user's local working-hours window (hour of day).
type WorkingHours struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Config bundles the tunable inputs of the calculator.
type Config struct {
	Keywords     Keywords     `yaml:"keywords"`
	WorkingHours WorkingHours `yaml:"working_hours"`
}

// DefaultConfig returns the built-in keyword sets and 09-18 working hours.
func DefaultConfig() Config {
	return Config{
		Keywords: Keywords{
			ExecutiveChannels: []string{"exec", "leadership", "board"},
			UrgentChannels:    []string{"urgent", "critical", "alert"},
			CasualChannels:    []string{"general", "random", "off-topic"},
			HighPriority: []string{
				"urgent", "asap", "immediately", "critical", "emergency",
				"deadline", "board", "client", "customer", "revenue", "budget",
			},
		},
		WorkingHours: WorkingHours{Start: 9, End: 18},
	}
}

// LoadConfig reads a YAML config file, filling omitted sets from defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}
