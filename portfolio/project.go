package portfolio

// CategoryAll selects every project.
const CategoryAll = "all"

type Project struct {
	ID          int      `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Image       string   `yaml:"image" json:"image"`
	Tags        []string `yaml:"tags" json:"tags"`
	DemoLink    string   `yaml:"demo_link" json:"demo_link"`
	CodeLink    string   `yaml:"code_link" json:"code_link"`
}

func (p Project) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Link returns the demo or code URL by name.
func (p Project) Link(name string) (string, bool) {
	switch name {
	case "demo":
		return p.DemoLink, p.DemoLink != ""
	case "code":
		return p.CodeLink, p.CodeLink != ""
	}
	return "", false
}

// Filter returns the projects tagged with category, in source order. The
// full list is returned for CategoryAll. The result is never nil.
func Filter(projects []Project, category string) []Project {
	if category == CategoryAll {
		out := make([]Project, len(projects))
		copy(out, projects)
		return out
	}
	out := []Project{}
	for _, p := range projects {
		if p.HasTag(category) {
			out = append(out, p)
		}
	}
	return out
}

// Tags lists every distinct tag in the order it is first seen.
func Tags(projects []Project) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, p := range projects {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	return tags
}

func FindProject(projects []Project, id int) (Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}
