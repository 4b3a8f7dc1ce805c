// Package brief holds the data model shared by every stage of a content run:
// the user's brand brief, the generated strategy, themes, creative briefs,
// executed briefs and the persisted Result aggregate.
package brief

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultNetworks is used when a brief lists no current social networks.
var DefaultNetworks = []string{"Instagram", "Facebook", "LinkedIn"}

// BriefData is the complete user input for a run. The pipeline never mutates it.
type BriefData struct {
	CompanyName           string              `json:"companyName" yaml:"company_name"`
	Email                 string              `json:"email" yaml:"email"`
	Sector                string              `json:"sector" yaml:"sector"`
	CompanyDescription    string              `json:"companyDescription" yaml:"company_description"`
	Website               string              `json:"website,omitempty" yaml:"website"`
	Logo                  string              `json:"logo,omitempty" yaml:"logo"`
	BrandGuidelines       string              `json:"brandGuidelines,omitempty" yaml:"brand_guidelines"`
	ProductPhotos         []string            `json:"productPhotos" yaml:"product_photos"`
	CurrentSocialNetworks []string            `json:"currentSocialNetworks" yaml:"current_social_networks"`
	SocialMediaGoals      []string            `json:"socialMediaGoals" yaml:"social_media_goals"`
	ContentTypes          []string            `json:"contentTypes" yaml:"content_types"`
	CommunicationStyle    string              `json:"communicationStyle" yaml:"communication_style"`
	TargetAudience        TargetAudience      `json:"targetAudience" yaml:"target_audience"`
	UniqueSellingPoints   string              `json:"uniqueSellingPoints" yaml:"unique_selling_points"`
	CustomerBenefits      string              `json:"customerBenefits" yaml:"customer_benefits"`
	AudienceNeeds         string              `json:"audienceNeeds" yaml:"audience_needs"`
	ProductSolution       string              `json:"productSolution" yaml:"product_solution"`
	Competitors           string              `json:"competitors" yaml:"competitors"`
	CompetitorStrategies  []string            `json:"competitorStrategies" yaml:"competitor_strategies"`
	SuccessMetrics        []string            `json:"successMetrics" yaml:"success_metrics"`
	ROIExpectations       []string            `json:"roiExpectations" yaml:"roi_expectations"`
	SpecificThemes        string              `json:"specificThemes" yaml:"specific_themes"`
	AdditionalInfo        string              `json:"additionalInfo" yaml:"additional_info"`
	LegalConstraints      LegalConstraints    `json:"legalConstraints" yaml:"legal_constraints"`
	Budget                Budget              `json:"budget" yaml:"budget"`
	Resources             Resources           `json:"resources" yaml:"resources"`
	PreviousCampaigns     []Campaign          `json:"previousCampaigns" yaml:"previous_campaigns"`
	CompetitiveAnalysis   CompetitiveAnalysis `json:"competitiveAnalysis" yaml:"competitive_analysis"`
}

type TargetAudience struct {
	Demographic  []string `json:"demographic" yaml:"demographic"`
	Professional []string `json:"professional" yaml:"professional"`
	Behavioral   []string `json:"behavioral" yaml:"behavioral"`
	Geographic   []string `json:"geographic" yaml:"geographic"`
}

type LegalConstraints struct {
	Regulations []string `json:"regulations" yaml:"regulations"`
	Compliance  []string `json:"compliance" yaml:"compliance"`
	Disclaimers []string `json:"disclaimers" yaml:"disclaimers"`
}

type Budget struct {
	TotalBudget string             `json:"totalBudget" yaml:"total_budget"`
	Allocation  map[string]float64 `json:"allocation" yaml:"allocation"`
	Constraints []string           `json:"constraints" yaml:"constraints"`
}

type Resources struct {
	InternalTeam     []string `json:"internalTeam" yaml:"internal_team"`
	ExternalPartners []string `json:"externalPartners" yaml:"external_partners"`
	Tools            []string `json:"tools" yaml:"tools"`
}

type Campaign struct {
	Name      string   `json:"name" yaml:"name"`
	Period    string   `json:"period" yaml:"period"`
	Results   []string `json:"results" yaml:"results"`
	Learnings []string `json:"learnings" yaml:"learnings"`
}

type Competitor struct {
	Name       string   `json:"name" yaml:"name"`
	Strengths  []string `json:"strengths" yaml:"strengths"`
	Weaknesses []string `json:"weaknesses" yaml:"weaknesses"`
	Strategies []string `json:"strategies" yaml:"strategies"`
}

type CompetitiveAnalysis struct {
	DirectCompetitors []Competitor `json:"directCompetitors" yaml:"direct_competitors"`
	MarketPosition    string       `json:"marketPosition" yaml:"market_position"`
	Differentiators   []string     `json:"differentiators" yaml:"differentiators"`
	Opportunities     []string     `json:"opportunities" yaml:"opportunities"`
}

// Networks returns the brief's current social networks, or DefaultNetworks
// when none are listed.
func (b *BriefData) Networks() []string {
	if len(b.CurrentSocialNetworks) > 0 {
		return b.CurrentSocialNetworks
	}
	return DefaultNetworks
}

// Validate reports the first missing field required to start a run.
func (b *BriefData) Validate() error {
	if strings.TrimSpace(b.CompanyName) == "" {
		return fmt.Errorf("brief: company name is required")
	}
	if strings.TrimSpace(b.Sector) == "" {
		return fmt.Errorf("brief: sector is required")
	}
	return nil
}

// Load reads a brief from a YAML or JSON file, chosen by extension.
func Load(path string) (*BriefData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading brief: %w", err)
	}

	var b BriefData
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &b)
	default:
		err = yaml.Unmarshal(data, &b)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing brief %s: %w", path, err)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}
