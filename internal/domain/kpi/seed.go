package kpi

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed returns a fresh copy of the built-in fixture dataset used in offline
// mode and as a fallback for missing level rules and competencies.
func Seed() Dataset {
	ds, err := parseSeed(seedYAML)
	if err != nil {
		panic(fmt.Sprintf("kpi: embedded seed: %v", err))
	}
	return ds
}

func parseSeed(raw []byte) (Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return Dataset{}, err
	}
	if ds.CompetencyRecords == nil {
		ds.CompetencyRecords = []CompetencyRecord{}
	}
	return ds, nil
}

// SeedYAML returns the raw embedded fixture.
func SeedYAML() []byte {
	out := make([]byte, len(seedYAML))
	copy(out, seedYAML)
	return out
}
