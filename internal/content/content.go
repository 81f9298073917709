// Package content holds the static portfolio data rendered by the site:
// profile, skills, projects, timeline and links.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultYAML []byte

// ErrProjectNotFound is returned by Project for an unknown id.
var ErrProjectNotFound = errors.New("project not found")

type Profile struct {
	Name         string `yaml:"name" json:"name"`
	Role         string `yaml:"role" json:"role"`
	Tagline      string `yaml:"tagline" json:"tagline"`
	Email        string `yaml:"email" json:"email"`
	Phone        string `yaml:"phone" json:"phone"`
	Location     string `yaml:"location" json:"location"`
	Availability string `yaml:"availability" json:"availability"`
}

type Value struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type About struct {
	Paragraphs []string `yaml:"paragraphs" json:"paragraphs"`
	Values     []Value  `yaml:"values" json:"values"`
}

type Skill struct {
	Name  string `yaml:"name" json:"name"`
	Level int    `yaml:"level" json:"level"` // 0-100
}

type SkillCategory struct {
	Category string  `yaml:"category" json:"category"`
	Skills   []Skill `yaml:"skills" json:"skills"`
}

type Project struct {
	ID              int      `yaml:"id" json:"id"`
	Title           string   `yaml:"title" json:"title"`
	Category        string   `yaml:"category" json:"category"`
	Description     string   `yaml:"description" json:"description"`
	FullDescription string   `yaml:"full_description" json:"full_description"`
	Image           string   `yaml:"image" json:"image"`
	Technologies    []string `yaml:"technologies" json:"technologies"`
	LiveURL         string   `yaml:"live_url" json:"live_url"`
	GitHubURL       string   `yaml:"github_url" json:"github_url"`
	Highlights      []string `yaml:"highlights" json:"highlights"`
}

// Entry is one item on the experience or education timeline.
type Entry struct {
	Title        string   `yaml:"title" json:"title"`
	Organization string   `yaml:"organization" json:"organization"`
	Period       string   `yaml:"period" json:"period"`
	Description  string   `yaml:"description" json:"description"`
	Achievements []string `yaml:"achievements" json:"achievements"`
}

type Link struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

// Section is a navigable anchor on the page.
type Section struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Portfolio is the full document.
type Portfolio struct {
	Profile    Profile         `yaml:"profile" json:"profile"`
	About      About           `yaml:"about" json:"about"`
	Skills     []SkillCategory `yaml:"skills" json:"skills"`
	Projects   []Project       `yaml:"projects" json:"projects"`
	Experience []Entry         `yaml:"experience" json:"experience"`
	Education  []Entry         `yaml:"education" json:"education"`
	Socials    []Link          `yaml:"socials" json:"socials"`
	Sections   []Section       `yaml:"sections" json:"sections"`
}

// Default returns the portfolio compiled into the binary.
func Default() (*Portfolio, error) {
	return Load(bytes.NewReader(defaultYAML))
}

// LoadFile reads a portfolio from path, or the embedded default when path
// is empty.
func LoadFile(path string) (*Portfolio, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a portfolio document.
func Load(r io.Reader) (*Portfolio, error) {
	var p Portfolio
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Portfolio) validate() error {
	if p.Profile.Name == "" {
		return errors.New("content: profile.name is required")
	}
	seen := make(map[int]bool, len(p.Projects))
	for _, pr := range p.Projects {
		if pr.ID <= 0 {
			return fmt.Errorf("content: project %q needs a positive id", pr.Title)
		}
		if seen[pr.ID] {
			return fmt.Errorf("content: duplicate project id %d", pr.ID)
		}
		seen[pr.ID] = true
	}
	for _, c := range p.Skills {
		for _, s := range c.Skills {
			if s.Level < 0 || s.Level > 100 {
				return fmt.Errorf("content: skill %q level %d out of range 0-100", s.Name, s.Level)
			}
		}
	}
	return nil
}

// Project returns the project with the given id.
func (p *Portfolio) Project(id int) (*Project, error) {
	for i := range p.Projects {
		if p.Projects[i].ID == id {
			return &p.Projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrProjectNotFound, id)
}
