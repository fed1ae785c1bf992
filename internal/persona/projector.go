package persona

import (
	"mnemo/internal/cognition"
)

// fieldBlock maps signal fields onto persona blocks. The map is closed: a
// field outside it never reaches the persona, whatever cognition decided.
var fieldBlock = map[string]string{
	"name":      "user_identity",
	"role":      "user_identity",
	"seniority": "user_identity",

	"company_name": "company_profile",
	"industry":     "company_profile",
	"company_size": "company_profile",

	"business_model": "company_business",
	"revenue_model":  "company_business",
	"target_market":  "company_business",

	"products":        "company_products",
	"services":        "company_products",
	"differentiators": "company_products",

	"brand_voice":  "company_brand",
	"brand_values": "company_brand",

	"primary_goal":     "objective",
	"desired_action":   "objective",
	"success_criteria": "objective",
	"horizon":          "objective",

	"content_types":     "content_format",
	"preferred_format":  "content_format",
	"length_preference": "content_format",

	"audience_type":   "audience",
	"audience_domain": "audience",
	"audience_level":  "audience",
	"geo_context":     "audience",

	"tone":                "tone",
	"voice":               "tone",
	"emotional_intensity": "tone",

	"style":              "writing_style",
	"sentence_structure": "writing_style",
	"use_examples":       "writing_style",
	"use_storytelling":   "writing_style",

	"language":      "language",
	"complexity":    "language",
	"jargon_policy": "language",

	"constraints": "constraints",
}

// Project builds a persona fragment from decided signals. Only committed
// decisions targeting the persona contribute; each contributing field is
// copied into its block and the block confidence is the lowest confidence
// among its contributors. Signals and decisions are aligned by index.
func Project(signals []cognition.Signal, decisions []cognition.Decision) *Persona {
	fragment := &Persona{}
	blockConf := map[string]float64{}

	for i, dec := range decisions {
		if i >= len(signals) {
			break
		}
		if !dec.Committed() || dec.Target != cognition.TargetPersona {
			continue
		}
		sig := signals[i]
		block, ok := fieldBlock[sig.Field]
		if !ok {
			continue
		}
		if !setField(fragment, sig.Field, sig.Value) {
			continue
		}
		if prev, seen := blockConf[block]; !seen || dec.Confidence < prev {
			blockConf[block] = dec.Confidence
		}
	}

	applyConfidences(fragment, blockConf)
	dropEmptyBlocks(fragment)
	if fragment.Empty() {
		return nil
	}
	return fragment
}

// setField copies one field value into the fragment, allocating the block on
// first touch. Values that do not coerce to the field's type are skipped.
func setField(p *Persona, field string, value any) bool {
	switch field {
	case "name", "role", "seniority":
		s, ok := asString(value)
		if !ok {
			return false
		}
		if p.UserIdentity == nil {
			p.UserIdentity = &IdentityBlock{}
		}
		switch field {
		case "name":
			p.UserIdentity.Name = s
		case "role":
			p.UserIdentity.Role = s
		case "seniority":
			p.UserIdentity.Seniority = s
		}
		return true

	case "company_name", "industry", "company_size":
		s, ok := asString(value)
		if !ok {
			return false
		}
		if p.CompanyProfile == nil {
			p.CompanyProfile = &CompanyProfileBlock{}
		}
		switch field {
		case "company_name":
			p.CompanyProfile.CompanyName = s
		case "industry":
			p.CompanyProfile.Industry = s
		case "company_size":
			p.CompanyProfile.CompanySize = s
		}
		return true

	case "business_model", "revenue_model", "target_market":
		s, ok := asString(value)
		if !ok {
			return false
		}
		if p.CompanyBusiness == nil {
			p.CompanyBusiness = &CompanyBusinessBlock{}
		}
		switch field {
		case "business_model":
			p.CompanyBusiness.BusinessModel = s
		case "revenue_model":
			p.CompanyBusiness.RevenueModel = s
		case "target_market":
			p.CompanyBusiness.TargetMarket = s
		}
		return true

	case "products", "services", "differentiators":
		list, ok := asStringSlice(value)
		if !ok {
			return false
		}
		if p.CompanyProducts == nil {
			p.CompanyProducts = &CompanyProductsBlock{}
		}
		switch field {
		case "products":
			p.CompanyProducts.Products = list
		case "services":
			p.CompanyProducts.Services = list
		case "differentiators":
			p.CompanyProducts.Differentiators = list
		}
		return true

	case "brand_voice":
		s, ok := asString(value)
		if !ok {
			return false
		}
		if p.CompanyBrand == nil {
			p.CompanyBrand = &CompanyBrandBlock{}
		}
		p.CompanyBrand.BrandVoice = s
		return true
	case "brand_values":
		list, ok := asStringSlice(value)
		if !ok {
			return false
		}
		if p.CompanyBrand == nil {
			p.CompanyBrand = &CompanyBrandBlock{}
		}
		p.CompanyBrand.BrandValues = list
		return true

	case "primary_goal", "desired_action", "success_criteria", "horizon":
		s, ok := asString(value)
		if !ok {
			return false
		}
		if p.Objective == nil {
			p.Objective = &ObjectiveBlock{}
		}
		switch field {
		case "primary_goal":
			p.Objective.PrimaryGoal = s
		case "desired_action":
			p.Objective.DesiredAction = s
		case "success_criteria":
			p.Objective.SuccessCriteria = s
		case "horizon":
			p.Objective.Horizon = s
		}
		return true

	case "content_types":
		list, ok := asStringSlice(value)
		if !ok {
			return false
		}
		if p.ContentFormat == nil {
			p.ContentFormat = &ContentFormatBlock{}
		}
		p.ContentFormat.ContentTypes = list
		return true
	case "preferred_format", "length_preference":
		s, ok := asString(value)
		if !ok {
			return false
		}
		if p.ContentFormat == nil {
			p.ContentFormat = &ContentFormatBlock{}
		}
		if field == "preferred_format" {
			p.ContentFormat.PreferredFormat = s
		} else {
			p.ContentFormat.LengthPreference = s
		}
		return true

	case "audience_type", "audience_domain", "audience_level", "geo_context":
		s, ok := asString(value)
		if !ok {
			return false
		}
		if p.Audience == nil {
			p.Audience = &AudienceBlock{}
		}
		switch field {
		case "audience_type":
			p.Audience.AudienceType = s
		case "audience_domain":
			p.Audience.AudienceDomain = s
		case "audience_level":
			p.Audience.AudienceLevel = s
		case "geo_context":
			p.Audience.GeoContext = s
		}
		return true

	case "tone", "voice", "emotional_intensity":
		s, ok := asString(value)
		if !ok {
			return false
		}
		if p.Tone == nil {
			p.Tone = &ToneBlock{}
		}
		switch field {
		case "tone":
			p.Tone.Tone = s
		case "voice":
			p.Tone.Voice = s
		case "emotional_intensity":
			p.Tone.EmotionalIntensity = s
		}
		return true

	case "style", "sentence_structure":
		s, ok := asString(value)
		if !ok {
			return false
		}
		if p.WritingStyle == nil {
			p.WritingStyle = &WritingStyleBlock{}
		}
		if field == "style" {
			p.WritingStyle.Style = s
		} else {
			p.WritingStyle.SentenceStructure = s
		}
		return true
	case "use_examples", "use_storytelling":
		b, ok := asBool(value)
		if !ok {
			return false
		}
		if p.WritingStyle == nil {
			p.WritingStyle = &WritingStyleBlock{}
		}
		if field == "use_examples" {
			p.WritingStyle.UseExamples = &b
		} else {
			p.WritingStyle.UseStorytelling = &b
		}
		return true

	case "language", "complexity", "jargon_policy":
		s, ok := asString(value)
		if !ok {
			return false
		}
		if p.Language == nil {
			p.Language = &LanguageBlock{}
		}
		switch field {
		case "language":
			p.Language.Language = s
		case "complexity":
			p.Language.Complexity = s
		case "jargon_policy":
			p.Language.JargonPolicy = s
		}
		return true

	case "constraints":
		list, ok := asStringSlice(value)
		if !ok {
			if s, sok := asString(value); sok {
				list = []string{s}
			} else {
				return false
			}
		}
		if p.Constraints == nil {
			p.Constraints = &ConstraintsBlock{}
		}
		p.Constraints.Constraints = append(p.Constraints.Constraints, list...)
		return true
	}
	return false
}

func applyConfidences(p *Persona, conf map[string]float64) {
	if p.UserIdentity != nil {
		p.UserIdentity.Confidence = conf["user_identity"]
	}
	if p.CompanyProfile != nil {
		p.CompanyProfile.Confidence = conf["company_profile"]
	}
	if p.CompanyBusiness != nil {
		p.CompanyBusiness.Confidence = conf["company_business"]
	}
	if p.CompanyProducts != nil {
		p.CompanyProducts.Confidence = conf["company_products"]
	}
	if p.CompanyBrand != nil {
		p.CompanyBrand.Confidence = conf["company_brand"]
	}
	if p.Objective != nil {
		p.Objective.Confidence = conf["objective"]
	}
	if p.ContentFormat != nil {
		p.ContentFormat.Confidence = conf["content_format"]
	}
	if p.Audience != nil {
		p.Audience.Confidence = conf["audience"]
	}
	if p.Tone != nil {
		p.Tone.Confidence = conf["tone"]
	}
	if p.WritingStyle != nil {
		p.WritingStyle.Confidence = conf["writing_style"]
	}
	if p.Language != nil {
		p.Language.Confidence = conf["language"]
	}
	if p.Constraints != nil {
		p.Constraints.Confidence = conf["constraints"]
	}
}

func dropEmptyBlocks(p *Persona) {
	if p.UserIdentity.Empty() {
		p.UserIdentity = nil
	}
	if p.CompanyProfile.Empty() {
		p.CompanyProfile = nil
	}
	if p.CompanyBusiness.Empty() {
		p.CompanyBusiness = nil
	}
	if p.CompanyProducts.Empty() {
		p.CompanyProducts = nil
	}
	if p.CompanyBrand.Empty() {
		p.CompanyBrand = nil
	}
	if p.Objective.Empty() {
		p.Objective = nil
	}
	if p.ContentFormat.Empty() {
		p.ContentFormat = nil
	}
	if p.Audience.Empty() {
		p.Audience = nil
	}
	if p.Tone.Empty() {
		p.Tone = nil
	}
	if p.WritingStyle.Empty() {
		p.WritingStyle = nil
	}
	if p.Language.Empty() {
		p.Language = nil
	}
	if p.Constraints.Empty() {
		p.Constraints = nil
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}

func asStringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, len(t) > 0
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out, len(out) > 0
	}
	return nil, false
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}
