package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Profiles is a read-only view of the mod profile file: profile name to
// ordered mod artifact filenames. The launcher copies the active
// profile's mods into the game's mods directory; it never writes the
// profile file itself.
type Profiles struct {
	profiles map[string][]string
}

// ReadProfiles loads a profile file. A missing file yields an empty
// store.
func ReadProfiles(path string) (*Profiles, error) {
	p := &Profiles{profiles: map[string][]string{}}

	yamlFile, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(yamlFile, &p.profiles); err != nil {
		return nil, err
	}
	return p, nil
}

// Mods returns the ordered mod filenames of a profile. Unknown profiles
// have no mods.
func (p *Profiles) Mods(name string) ([]string, error) {
	return p.profiles[name], nil
}

// Names lists the known profiles.
func (p *Profiles) Names() []string {
	names := make([]string, 0, len(p.profiles))
	for name := range p.profiles {
		names = append(names, name)
	}
	return names
}
