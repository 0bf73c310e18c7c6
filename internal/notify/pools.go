package notify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed pools.yaml
var defaultPoolsYAML []byte

// Pools holds the encouragement message tables. Content is configuration,
// not logic: a user file can replace any table wholesale.
type Pools struct {
	Morning      []string `koanf:"morning"`
	Afternoon    []string `koanf:"afternoon"`
	Evening      []string `koanf:"evening"`
	Night        []string `koanf:"night"`
	AllDone      []string `koanf:"all_done"`
	HeavyBacklog []string `koanf:"heavy_backlog"`
	Quotes       []string `koanf:"quotes"`
}

// LoadPools returns the embedded defaults, overlaid with the YAML file at
// path when one is given and exists.
func LoadPools(path string) (*Pools, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaultPoolsYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load default pools: %w", err)
	}

	trimmed := strings.TrimSpace(path)
	if trimmed != "" {
		content, err := os.ReadFile(trimmed)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read pools file %s: %w", trimmed, err)
			}
		} else if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse pools file %s: %w", trimmed, err)
		}
	}

	var pools Pools
	if err := k.Unmarshal("pools", &pools); err != nil {
		return nil, fmt.Errorf("unmarshal pools: %w", err)
	}
	if err := pools.validate(); err != nil {
		return nil, err
	}
	return &pools, nil
}

func (p *Pools) validate() error {
	for name, table := range map[string][]string{
		"morning":       p.Morning,
		"afternoon":     p.Afternoon,
		"evening":       p.Evening,
		"night":         p.Night,
		"all_done":      p.AllDone,
		"heavy_backlog": p.HeavyBacklog,
		"quotes":        p.Quotes,
	} {
		if len(table) == 0 {
			return fmt.Errorf("notify: pool %q is empty", name)
		}
	}
	return nil
}

func (p *Pools) forTimeOfDay(tod TimeOfDay) []string {
	switch tod {
	case Morning:
		return p.Morning
	case Afternoon:
		return p.Afternoon
	case Evening:
		return p.Evening
	default:
		return p.Night
	}
}
