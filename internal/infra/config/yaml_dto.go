package config

// YAMLFile is the on-disk shape of dfkit.yaml.
type YAMLFile struct {
	DFKit YAMLConfig `yaml:"dfkit"`
}

type YAMLConfig struct {
	Client    YAMLClient    `yaml:"client"`
	Defaults  YAMLDefaults  `yaml:"defaults"`
	Push      YAMLPush      `yaml:"push"`
	Endpoints YAMLEndpoints `yaml:"endpoints"`
	Paths     YAMLPaths     `yaml:"paths"`
	Masking   YAMLMasking   `yaml:"masking"`
}

type YAMLClient struct {
	Binary    string   `yaml:"binary"`
	Args      []string `yaml:"args"`
	Timeout   string   `yaml:"timeout"`
	RateLimit *float64 `yaml:"rate_limit"`
	Burst     *int     `yaml:"burst"`
}

type YAMLDefaults struct {
	Collection string   `yaml:"collection"`
	Repository string   `yaml:"repository"`
	Project    string   `yaml:"project"`
	Keywords   []string `yaml:"keywords"`
	Wait       *bool    `yaml:"wait"`
}

type YAMLPush struct {
	Extensions      []string `yaml:"extensions"`
	Parallel        *bool    `yaml:"parallel"`
	Workers         *int     `yaml:"workers"`
	RequireMetadata *bool    `yaml:"require_metadata"`
}

type YAMLEndpoints struct {
	Default string             `yaml:"default"`
	Hosts   map[string]string  `yaml:"hosts"`
	Rules   []YAMLEndpointRule `yaml:"rules"`
}

type YAMLEndpointRule struct {
	Prefixes []string `yaml:"prefixes"`
	Suffix   string   `yaml:"suffix"`
	Endpoint string   `yaml:"endpoint"`
}

type YAMLPaths struct {
	RunsDir string `yaml:"runs_dir"`
	Ledger  string `yaml:"ledger"`
}

type YAMLMasking struct {
	Enabled *bool `yaml:"enabled"`
}
