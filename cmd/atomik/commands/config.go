package commands

import (
	"os"

	"gopkg.in/yaml.v3"
)

// projectDefaults is the optional .atomik.yaml project-default file,
// grounded on the teacher's wave.yaml manifest loading (cmd/wave/commands/
// run.go reads a YAML manifest from the working directory before applying
// flag overrides). Every field mirrors a `pipeline run` flag; a flag
// explicitly passed on the command line always wins over this file.
type projectDefaults struct {
	Checkpoint   string   `yaml:"checkpoint"`
	Languages    []string `yaml:"languages"`
	TokenBudget  int      `yaml:"token_budget"`
	MetricsCSV   string   `yaml:"metrics_csv"`
	ComPort      string   `yaml:"com_port"`
}

// loadProjectDefaults reads .atomik.yaml from the current directory. A
// missing file is not an error: it returns a zero-value projectDefaults,
// matching "optional".
func loadProjectDefaults() (projectDefaults, error) {
	var pd projectDefaults
	data, err := os.ReadFile(".atomik.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			return pd, nil
		}
		return pd, err
	}
	if err := yaml.Unmarshal(data, &pd); err != nil {
		return pd, err
	}
	return pd, nil
}
