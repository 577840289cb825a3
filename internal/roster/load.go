package roster

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// File is the yaml shape of a roster override file. Entries are matched by
// id (characters, bosses) or label (difficulties) and replace the built-in
// entry; unknown characters and difficulties are appended.
type File struct {
	Characters   []Character  `yaml:"characters"`
	Bosses       []Boss       `yaml:"bosses"`
	Difficulties []Difficulty `yaml:"difficulties"`
}

// LoadFile reads a roster override and applies it on top of Default().
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: load %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse applies yaml override data on top of Default().
func Parse(raw []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("roster: unmarshal: %w", err)
	}
	c := Default()
	if err := c.apply(f); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) apply(f File) error {
	for _, ch := range f.Characters {
		if err := validateCharacter(ch); err != nil {
			return err
		}
		replaced := false
		for i := range c.Characters {
			if c.Characters[i].ID == ch.ID {
				c.Characters[i] = ch
				replaced = true
				break
			}
		}
		if !replaced {
			c.Characters = append(c.Characters, ch)
		}
	}

	for _, b := range f.Bosses {
		if err := validateCharacter(b.Character); err != nil {
			return err
		}
		idx := -1
		for i := range c.Bosses {
			if c.Bosses[i].ID == b.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("roster: unknown boss %q", b.ID)
		}
		if b.BaseCharacter < 0 || b.BaseCharacter >= len(c.Characters) {
			return fmt.Errorf("roster: boss %q base character %d out of range", b.ID, b.BaseCharacter)
		}
		b.Kind = c.Bosses[idx].Kind
		c.Bosses[idx] = b
	}

	for _, d := range f.Difficulties {
		if d.Label == "" {
			return fmt.Errorf("roster: difficulty without label")
		}
		if d.Aggression <= 0 {
			return fmt.Errorf("roster: difficulty %q: aggression must be positive", d.Label)
		}
		if d.ParryChance < 0 || d.ParryChance > 1 {
			return fmt.Errorf("roster: difficulty %q: parry chance %.2f outside [0,1]", d.Label, d.ParryChance)
		}
		if d.CPUHPMultiplier <= 0 {
			d.CPUHPMultiplier = 1
		}
		c.Difficulties[d.Label] = d
	}
	return nil
}

func validateCharacter(ch Character) error {
	if ch.ID == "" {
		return fmt.Errorf("roster: character without id")
	}
	if ch.BaseHP <= 0 {
		return fmt.Errorf("roster: character %q: base_hp must be positive", ch.ID)
	}
	for _, combo := range ch.Combos {
		if len(combo.Inputs) == 0 {
			return fmt.Errorf("roster: character %q: combo %q has no inputs", ch.ID, combo.Name)
		}
	}
	return nil
}

// Registry hands out the current catalog. Sessions read it once at battle
// start, so a reload never changes a fight in progress.
type Registry struct {
	mu  sync.RWMutex
	cat *Catalog
}

func NewRegistry(c *Catalog) *Registry {
	if c == nil {
		c = Default()
	}
	return &Registry{cat: c}
}

func (r *Registry) Current() *Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cat
}

func (r *Registry) Swap(c *Catalog) {
	r.mu.Lock()
	r.cat = c
	r.mu.Unlock()
}
