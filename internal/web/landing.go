package web

import (
	_ "embed"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"
)

//go:embed content/landing.yaml
var landingYAML []byte

type link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

type landingContent struct {
	Hero struct {
		Title     string `yaml:"title"`
		Highlight string `yaml:"highlight"`
		Subtitle  string `yaml:"subtitle"`
		Primary   link   `yaml:"primary"`
		Secondary link   `yaml:"secondary"`
	} `yaml:"hero"`
	Companies []struct {
		Name string `yaml:"name"`
		Logo string `yaml:"logo"`
	} `yaml:"companies"`
	Cards []struct {
		Title string `yaml:"title"`
		Body  string `yaml:"body"`
	} `yaml:"cards"`
	FAQs []struct {
		Question string `yaml:"question"`
		Answer   string `yaml:"answer"`
	} `yaml:"faqs"`
}

func loadLanding() (landingContent, error) {
	var c landingContent
	if err := yaml.Unmarshal(landingYAML, &c); err != nil {
		return c, fmt.Errorf("parse landing content: %w", err)
	}
	if c.Hero.Title == "" {
		return c, fmt.Errorf("landing content has no hero title")
	}
	return c, nil
}

func (h *Handler) landingPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "landing", "", h.landing)
}
