package persona

import (
	"fmt"
	"strings"
)

// RenderContext renders the persona as prompt text. Empty blocks are
// skipped and confidences never appear: the model sees what is known, not
// how sure the system is.
func RenderContext(p *Persona) string {
	if p.Empty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("## User Profile\n")

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n### %s\n", title)
		for _, line := range lines {
			b.WriteString("- " + line + "\n")
		}
	}

	if blk := p.UserIdentity; !blk.Empty() {
		section("Identity", kvLines(
			"Name", blk.Name,
			"Role", blk.Role,
			"Seniority", blk.Seniority,
		))
	}
	if blk := p.CompanyProfile; !blk.Empty() {
		section("Company", kvLines(
			"Company", blk.CompanyName,
			"Industry", blk.Industry,
			"Size", blk.CompanySize,
		))
	}
	if blk := p.CompanyBusiness; !blk.Empty() {
		section("Business", kvLines(
			"Business model", blk.BusinessModel,
			"Revenue model", blk.RevenueModel,
			"Target market", blk.TargetMarket,
		))
	}
	if blk := p.CompanyProducts; !blk.Empty() {
		section("Products & Services", listLines(
			"Products", blk.Products,
			"Services", blk.Services,
			"Differentiators", blk.Differentiators,
		))
	}
	if blk := p.CompanyBrand; !blk.Empty() {
		lines := kvLines("Brand voice", blk.BrandVoice)
		lines = append(lines, listLines("Brand values", blk.BrandValues)...)
		section("Brand", lines)
	}
	if blk := p.Objective; !blk.Empty() {
		section("Objective", kvLines(
			"Primary goal", blk.PrimaryGoal,
			"Desired action", blk.DesiredAction,
			"Success criteria", blk.SuccessCriteria,
			"Horizon", blk.Horizon,
		))
	}
	if blk := p.ContentFormat; !blk.Empty() {
		lines := listLines("Content types", blk.ContentTypes)
		lines = append(lines, kvLines(
			"Preferred format", blk.PreferredFormat,
			"Length", blk.LengthPreference,
		)...)
		section("Content Format", lines)
	}
	if blk := p.Audience; !blk.Empty() {
		section("Audience", kvLines(
			"Type", blk.AudienceType,
			"Domain", blk.AudienceDomain,
			"Level", blk.AudienceLevel,
			"Geography", blk.GeoContext,
		))
	}
	if blk := p.Tone; !blk.Empty() {
		section("Tone", kvLines(
			"Tone", blk.Tone,
			"Voice", blk.Voice,
			"Emotional intensity", blk.EmotionalIntensity,
		))
	}
	if blk := p.WritingStyle; !blk.Empty() {
		lines := kvLines(
			"Style", blk.Style,
			"Sentence structure", blk.SentenceStructure,
		)
		if blk.UseExamples != nil {
			lines = append(lines, fmt.Sprintf("Use examples: %t", *blk.UseExamples))
		}
		if blk.UseStorytelling != nil {
			lines = append(lines, fmt.Sprintf("Use storytelling: %t", *blk.UseStorytelling))
		}
		section("Writing Style", lines)
	}
	if blk := p.Language; !blk.Empty() {
		section("Language", kvLines(
			"Language", blk.Language,
			"Complexity", blk.Complexity,
			"Jargon policy", blk.JargonPolicy,
		))
	}
	if blk := p.Constraints; !blk.Empty() {
		var lines []string
		for _, c := range blk.Constraints {
			lines = append(lines, c)
		}
		section("Hard Constraints (always follow)", lines)
	}

	return strings.TrimRight(b.String(), "\n")
}

// kvLines formats alternating label/value pairs, skipping empty values.
func kvLines(pairs ...string) []string {
	var lines []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			lines = append(lines, pairs[i]+": "+pairs[i+1])
		}
	}
	return lines
}

// listLines formats alternating label/[]string pairs, skipping empty lists.
func listLines(args ...any) []string {
	var lines []string
	for i := 0; i+1 < len(args); i += 2 {
		label, _ := args[i].(string)
		list, _ := args[i+1].([]string)
		if len(list) > 0 {
			lines = append(lines, label+": "+strings.Join(list, ", "))
		}
	}
	return lines
}
