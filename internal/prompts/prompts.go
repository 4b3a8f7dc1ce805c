// Package prompts interpolates brief data into the text sent to the
// text-generation provider. Section labels in these templates are the ones
// the parse package looks for, so changes must be made in both places.
package prompts

import (
	"fmt"
	"strings"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
)

const strategyPrompt = `Tu es un directeur de stratégie social media. Analyse la marque suivante et rédige sa stratégie de contenu.

ENTREPRISE :
- Nom : %s
- Secteur : %s
- Description : %s
- Positionnement marché : %s
- Différenciateurs : %s
- Avantages clients : %s

CIBLE :
%s

OBJECTIFS : %s
RÉSEAUX : %s
STYLE DE COMMUNICATION : %s
CONCURRENTS : %s
CONTRAINTES LÉGALES : %s
%s
Rédige d'abord une analyse de marché en 2-3 paragraphes, puis respecte EXACTEMENT ce format :

Positionnement : [une phrase]

Forces :
- [force]
- [force]
- [force]

Opportunités :
- [opportunité]
- [opportunité]
- [opportunité]

Style visuel : [description du style visuel recommandé]

Ton de voix :
- [réseau] : [ton]

Hashtags : [#hashtag, #hashtag, #hashtag, #hashtag, #hashtag]

Tactiques d'engagement :
- [tactique]
- [tactique]
`

const themePrompt = `Tu es un rédacteur en chef social media. Propose %d thèmes éditoriaux pour %s (%s).

CONTEXTE :
- Description : %s
- Positionnement : %s
- Cible : %s
- Types de contenu : %s
- Thèmes souhaités : %s
- Campagnes passées : %s
%s%s
Thèmes déjà retenus (à ne pas répéter) : %s

FORMAT OBLIGATOIRE pour chaque thème :

THEME 1:
"[Nom du thème]"
- Objectif: [Objectif précis]
- Angle: [Approche unique]
- Émotions: [2-3 émotions]
- Formats: [Formats adaptés, séparés par des virgules]
- Réseaux: [Réseaux pertinents, séparés par des virgules]

RÈGLES :
- Chaque thème explore un territoire unique
- Rester aligné avec le positionnement
- Réseaux possibles : %s
`

const briefPrompt = `Tu es un directeur artistique. Rédige le brief créatif d'un post pour %s (secteur : %s).

THÈME : %s
- Objectif : %s
- Angle : %s
- Émotions : %s
- Formats : %s
- Réseaux : %s

Style de communication : %s
Cible : %s

Réponds EXACTEMENT avec ce format :

### VISUEL ###
- [description de la scène]
- [éléments visuels clés]
- [ambiance et lumière]

### MARKETING ###
- Message principal (150 car) : [message]
- Tagline : [tagline]
- Hashtags : [#hashtag, #hashtag, #hashtag]
- Call-to-action : [appel à l'action]
- Question engagement : [question]

### SPECS ###
- Format : [carré, portrait ou paysage]
- Dimensions : [ex. 1080x1080px]
- Alt text : [description accessible de l'image]
`

const visualAnalysisPrompt = `Tu es un expert en identité visuelle. Analyse l'univers visuel adapté à %s (secteur : %s).

Description : %s
Style de communication : %s
Chartes graphiques : %s
Cible : %s

Pour chaque rubrique, donne une liste à puces puis une ligne vide :

Couleurs :
Typographie :
Iconographie :
Layouts :
Grilles :
Hiérarchie :
Palette :
Polices :
Éléments :
Filtres :
`

// StrategyPrompt builds the market analysis and strategy request. website is
// optional readable text from the brand's site.
func StrategyPrompt(b *brief.BriefData, website string) string {
	extra := ""
	if website != "" {
		extra = "\nEXTRAIT DU SITE WEB :\n" + website + "\n"
	}
	return fmt.Sprintf(strategyPrompt,
		b.CompanyName,
		b.Sector,
		orNone(b.CompanyDescription),
		orNone(b.CompetitiveAnalysis.MarketPosition),
		list(b.CompetitiveAnalysis.Differentiators),
		orNone(b.CustomerBenefits),
		audience(b.TargetAudience),
		list(b.SocialMediaGoals),
		list(b.Networks()),
		orNone(b.CommunicationStyle),
		orNone(b.Competitors),
		list(b.LegalConstraints.Regulations),
		extra,
	)
}

// ThemePrompt asks for count themes. existing lists the names already kept
// so batches do not repeat each other; headlines are optional trend titles.
func ThemePrompt(b *brief.BriefData, strategy *brief.Strategy, count int, existing []string, headlines []string) string {
	positioning := ""
	if strategy != nil {
		positioning = strategy.Analysis.Positioning
	}

	var learnings []string
	for _, c := range b.PreviousCampaigns {
		if len(c.Learnings) > 0 {
			learnings = append(learnings, c.Name+" ("+strings.Join(c.Learnings, ", ")+")")
		} else if c.Name != "" {
			learnings = append(learnings, c.Name)
		}
	}

	trends := ""
	if len(headlines) > 0 {
		var sb strings.Builder
		sb.WriteString("\nACTUALITÉS DU SECTEUR :\n")
		for _, h := range headlines {
			sb.WriteString("- " + h + "\n")
		}
		trends = sb.String()
	}

	opportunities := ""
	if len(b.CompetitiveAnalysis.Opportunities) > 0 {
		opportunities = "- Opportunités : " + list(b.CompetitiveAnalysis.Opportunities) + "\n"
	}

	return fmt.Sprintf(themePrompt,
		count,
		b.CompanyName,
		b.Sector,
		orNone(b.CompanyDescription),
		orNone(positioning),
		audience(b.TargetAudience),
		list(b.ContentTypes),
		orNone(b.SpecificThemes),
		list(learnings),
		opportunities,
		trends,
		list(existing),
		list(b.Networks()),
	)
}

// BriefPrompt builds the creative brief request for one theme.
func BriefPrompt(b *brief.BriefData, theme brief.Theme) string {
	return fmt.Sprintf(briefPrompt,
		b.CompanyName,
		b.Sector,
		theme.Name,
		theme.Objective,
		orNone(theme.Approach),
		orNone(theme.Emotions),
		list(theme.Formats),
		list(theme.Networks),
		orNone(b.CommunicationStyle),
		audience(b.TargetAudience),
	)
}

// VisualAnalysisPrompt builds the brand visual identity request.
func VisualAnalysisPrompt(b *brief.BriefData) string {
	return fmt.Sprintf(visualAnalysisPrompt,
		b.CompanyName,
		b.Sector,
		orNone(b.CompanyDescription),
		orNone(b.CommunicationStyle),
		orNone(b.BrandGuidelines),
		audience(b.TargetAudience),
	)
}

func audience(a brief.TargetAudience) string {
	var lines []string
	add := func(label string, values []string) {
		if len(values) > 0 {
			lines = append(lines, "- "+label+" : "+strings.Join(values, ", "))
		}
	}
	add("Démographie", a.Demographic)
	add("Profil professionnel", a.Professional)
	add("Comportements", a.Behavioral)
	add("Zones", a.Geographic)
	if len(lines) == 0 {
		return "- Non précisée"
	}
	return strings.Join(lines, "\n")
}

func list(values []string) string {
	if len(values) == 0 {
		return "aucun"
	}
	return strings.Join(values, ", ")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "non précisé"
	}
	return s
}
