package domain

import "time"

// Config represents the dfkit configuration loaded from dfkit.yaml.
type Config struct {
	Client    ClientConfig
	Defaults  DefaultsConfig
	Push      PushConfig
	Endpoints EndpointRules
	Paths     PathsConfig
	Masking   MaskingConfig
}

// ClientConfig controls how the DataFed command-line client is invoked.
type ClientConfig struct {
	Binary    string
	Args      []string
	Timeout   time.Duration
	RateLimit float64 // commands per second; 0 disables limiting
	Burst     int
}

type DefaultsConfig struct {
	Collection string
	Repository string
	Project    string
	Keywords   []string
	Wait       bool
}

type PushConfig struct {
	Extensions      []string
	Parallel        bool
	Workers         int
	RequireMetadata bool
}

type PathsConfig struct {
	RunsDir string
	Ledger  string
}

type MaskingConfig struct {
	Enabled bool
}

// CADESEndpoint is the shared Globus endpoint of the CADES condo login and compute nodes.
const CADESEndpoint = "57230a10-7ba2-11e7-8c3b-22000b9923ef"

// DefaultConfig provides sane defaults if dfkit.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Client: ClientConfig{
			Binary:    "datafed",
			Timeout:   10 * time.Minute,
			RateLimit: 5,
			Burst:     5,
		},
		Defaults: DefaultsConfig{
			Wait: true,
		},
		Push: PushConfig{
			Extensions:      []string{".h5"},
			RequireMetadata: true,
		},
		Endpoints: EndpointRules{
			Hosts: map[string]string{},
			Rules: []EndpointRule{
				{
					Prefixes: []string{"or-slurm-login", "or-condo-login", "or-slurm-c"},
					Suffix:   ".ornl.gov",
					Endpoint: CADESEndpoint,
				},
			},
		},
		Paths: PathsConfig{
			RunsDir: "runs",
			Ledger:  ".dfkit/ledger.db",
		},
		Masking: MaskingConfig{Enabled: true},
	}
}
