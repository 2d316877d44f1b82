// Package knowledge loads the company knowledge base (FAQ, service catalog)
// and provides keyword-relevance search used as the pre-funnel fast path.
package knowledge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Company holds contact details surfaced in responses.
type Company struct {
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
}

// Service is one catalog entry used by the offer stage.
type Service struct {
	Name      string `yaml:"name"`
	Summary   string `yaml:"summary"`
	PriceFrom string `yaml:"price_from"`
}

// FAQItem is one question/answer pair with match keywords.
type FAQItem struct {
	Question string   `yaml:"question"`
	Answer   string   `yaml:"answer"`
	Keywords []string `yaml:"keywords"`
}

// Base is the loaded knowledge base.
type Base struct {
	Company  Company   `yaml:"company"`
	Services []Service `yaml:"services"`
	FAQ      []FAQItem `yaml:"faq"`
}

// Load reads and parses the knowledge base file. A missing file yields an
// empty base rather than an error: the engine degrades to generator-only
// answers.
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Base{}, nil
		}
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	var base Base
	if err := yaml.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	return &base, nil
}
