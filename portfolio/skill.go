package portfolio

import "fmt"

type Skill struct {
	Name       string `yaml:"name" json:"name"`
	Percentage int    `yaml:"percentage" json:"percentage"`
}

// Width is the CSS width of the skill's progress bar.
func (s Skill) Width() string {
	return fmt.Sprintf("%d%%", s.Percentage)
}

// SkillGroup is one column of the skills section.
type SkillGroup struct {
	Title  string  `yaml:"title" json:"title"`
	Icon   string  `yaml:"icon" json:"icon"` // SVG path data
	Skills []Skill `yaml:"skills" json:"skills"`
}
