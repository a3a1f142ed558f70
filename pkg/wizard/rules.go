package wizard

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// NoJobRoute names the screen a user lands on after answering "no, I have
// not found a job yet". Which route a variant takes is configuration.
type NoJobRoute string

const (
	RouteDownsellOffer  NoJobRoute = "downsell-offer"
	RouteDeclinedSurvey NoJobRoute = "offer-declined-survey"
)

func (r NoJobRoute) screen() (Screen, error) {
	switch r {
	case RouteDownsellOffer:
		return DownsellOffer{}, nil
	case RouteDeclinedSurvey:
		return OfferDeclinedSurvey{}, nil
	}
	return nil, fmt.Errorf("unknown no-job route %q", r)
}

type VariantRules struct {
	NoJobRoute NoJobRoute `yaml:"no_job_route"`
	// DiscountShortcut enables "accept discounted offer" on the survey,
	// reason and reason detail screens.
	DiscountShortcut *bool `yaml:"discount_shortcut"`
}

// Rules is the per-deployment decision table of the flow.
type Rules struct {
	A                VariantRules `yaml:"A"`
	B                VariantRules `yaml:"B"`
	MinFeedbackChars int          `yaml:"min_feedback_chars"`
}

func DefaultRules() Rules {
	return Rules{
		A:                VariantRules{NoJobRoute: RouteDownsellOffer, DiscountShortcut: boolPtr(false)},
		B:                VariantRules{NoJobRoute: RouteDownsellOffer, DiscountShortcut: boolPtr(true)},
		MinFeedbackChars: 25,
	}
}

func (r Rules) For(v Variant) VariantRules {
	if v == VariantB {
		return r.B
	}
	return r.A
}

func (r Rules) discountShortcut(v Variant) bool {
	p := r.For(v).DiscountShortcut
	return p != nil && *p
}

func (r Rules) Validate() error {
	for _, v := range []Variant{VariantA, VariantB} {
		if _, err := r.For(v).NoJobRoute.screen(); err != nil {
			return fmt.Errorf("variant %s: %w", v, err)
		}
	}
	if r.MinFeedbackChars < 1 {
		return fmt.Errorf("min_feedback_chars must be positive, got %d", r.MinFeedbackChars)
	}
	return nil
}

// ParseRules decodes a YAML rules document and fills every unset field from
// DefaultRules.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	if err := mergo.Merge(&r, DefaultRules()); err != nil {
		return Rules{}, fmt.Errorf("merge default rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

// LoadRules reads rules from path. An empty path yields DefaultRules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// Offer is the pricing shown on the downsell offer.
type Offer struct {
	MonthlyPrice  int // cents
	DiscountCents int
}

func (o Offer) DiscountedPrice() int {
	if p := o.MonthlyPrice - o.DiscountCents; p > 0 {
		return p
	}
	return 0
}
