// Package portfolio holds the site content: profile text, the hero
// phrases, the project gallery and the skills panels.
package portfolio

import (
	"bytes"
	_ "embed"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/karthikpasupuleti/portfolio/typewriter"
)

//go:embed content.yaml
var defaultContent []byte

type Profile struct {
	Name  string `yaml:"name" json:"name"`
	Intro string `yaml:"intro" json:"intro"`
	About string `yaml:"about" json:"about"`
}

// Typing configures the hero banner typewriter.
type Typing struct {
	Phrases         []string      `yaml:"phrases"`
	TypingDelay     time.Duration `yaml:"typing_delay"`
	DeletingDelay   time.Duration `yaml:"deleting_delay"`
	PauseAtFullWord time.Duration `yaml:"pause_at_full_word"`
	PauseBeforeNext time.Duration `yaml:"pause_before_next"`
}

type Content struct {
	Profile     Profile      `yaml:"profile"`
	Typing      Typing       `yaml:"typing"`
	Projects    []Project    `yaml:"projects"`
	SkillGroups []SkillGroup `yaml:"skill_groups"`
	OtherSkills []string     `yaml:"other_skills"`
}

// Load reads the content file at path, or the built-in content when path is
// empty.
func Load(path string) (*Content, error) {
	data := defaultContent
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read content file %s", path)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*Content, error) {
	var c Content
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Wrap(err, "unable to parse content")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Content) Validate() error {
	if err := c.TypewriterConfig().Validate(); err != nil {
		return errors.Wrap(err, "invalid typing section")
	}

	ids := make(map[int]bool)
	for i, p := range c.Projects {
		if p.Title == "" {
			return errors.Errorf("project %d has no title", i)
		}
		if ids[p.ID] {
			return errors.Errorf("duplicate project id %d", p.ID)
		}
		ids[p.ID] = true
	}

	for _, g := range c.SkillGroups {
		if g.Title == "" {
			return errors.New("skill group has no title")
		}
		for _, s := range g.Skills {
			if s.Percentage < 0 || s.Percentage > 100 {
				return errors.Errorf("skill %q: percentage %d out of range 0-100", s.Name, s.Percentage)
			}
		}
	}
	return nil
}

func (c *Content) TypewriterConfig() typewriter.Config {
	return typewriter.Config{
		Phrases:         c.Typing.Phrases,
		TypingDelay:     c.Typing.TypingDelay,
		DeletingDelay:   c.Typing.DeletingDelay,
		PauseAtFullWord: c.Typing.PauseAtFullWord,
		PauseBeforeNext: c.Typing.PauseBeforeNext,
	}
}

// Tags lists the filter categories of the gallery.
func (c *Content) Tags() []string {
	return Tags(c.Projects)
}
