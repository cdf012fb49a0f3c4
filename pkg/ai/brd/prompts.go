package brd

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

type promptDef struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	System      string  `yaml:"system"`
	User        string  `yaml:"user"`
}

type generateDef struct {
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	System       string  `yaml:"system"`
	WithTemplate string  `yaml:"with_template"`
	Outline      string  `yaml:"outline"`
}

type promptFile struct {
	DefaultTemplate string       `yaml:"default_template"`
	Suggest         promptDef   `yaml:"suggest"`
	Generate        generateDef `yaml:"generate"`
}

// Prompts is the parsed prompt catalog.
type Prompts struct {
	defaultTemplate string
	suggest         promptDef
	generate        generateDef

	suggestUser  *template.Template
	withTemplate *template.Template
	outline      *template.Template
}

// LoadPrompts parses the embedded catalog.
func LoadPrompts() (*Prompts, error) {
	return ParsePrompts(promptsYAML)
}

func ParsePrompts(data []byte) (*Prompts, error) {
	var f promptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if strings.TrimSpace(f.DefaultTemplate) == "" {
		return nil, fmt.Errorf("parse prompts: default_template is empty")
	}

	p := &Prompts{
		defaultTemplate: strings.TrimRight(f.DefaultTemplate, "\n") + "\n",
		suggest:         f.Suggest,
		generate:        f.Generate,
	}
	var err error
	if p.suggestUser, err = compile("suggest", f.Suggest.User); err != nil {
		return nil, err
	}
	if p.withTemplate, err = compile("generate.with_template", f.Generate.WithTemplate); err != nil {
		return nil, err
	}
	if p.outline, err = compile("generate.outline", f.Generate.Outline); err != nil {
		return nil, err
	}
	return p, nil
}

func compile(name, text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("parse prompts: %s is empty", name)
	}
	t, err := template.New(name).Delims("[[", "]]").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompts: %s: %w", name, err)
	}
	return t, nil
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return strings.TrimSpace(b.String()), nil
}

// DefaultTemplate is the BRD structure offered before the user customizes it.
func (p *Prompts) DefaultTemplate() string {
	return p.defaultTemplate
}

func MustLoadPrompts() *Prompts {
	p, err := LoadPrompts()
	if err != nil {
		panic(err)
	}
	return p
}
