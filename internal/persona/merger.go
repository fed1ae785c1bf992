package persona

// OverrideThreshold gates overwriting a populated block with new data.
// Below it, what the user already established wins.
const OverrideThreshold = 0.80

// block is the merge contract every persona block satisfies.
type block interface {
	BlockConfidence() float64
}

// Merge folds an incoming persona fragment into the current persona and
// returns the result with the names of the blocks that changed. Merging is
// block-atomic: a block is taken or kept whole, never field-spliced. The
// inputs are not mutated.
func Merge(current, incoming *Persona) (*Persona, []string) {
	merged := &Persona{}
	if current != nil {
		*merged = *current
	}
	if incoming == nil {
		return merged, nil
	}

	var changed []string
	apply := func(name string, cur, inc block, curEmpty, incEmpty bool, set func()) {
		if incEmpty {
			return
		}
		if !curEmpty && inc.BlockConfidence() < OverrideThreshold {
			return
		}
		set()
		changed = append(changed, name)
	}

	apply("user_identity", merged.UserIdentity, incoming.UserIdentity,
		merged.UserIdentity.Empty(), incoming.UserIdentity.Empty(),
		func() { merged.UserIdentity = incoming.UserIdentity })
	apply("company_profile", merged.CompanyProfile, incoming.CompanyProfile,
		merged.CompanyProfile.Empty(), incoming.CompanyProfile.Empty(),
		func() { merged.CompanyProfile = incoming.CompanyProfile })
	apply("company_business", merged.CompanyBusiness, incoming.CompanyBusiness,
		merged.CompanyBusiness.Empty(), incoming.CompanyBusiness.Empty(),
		func() { merged.CompanyBusiness = incoming.CompanyBusiness })
	apply("company_products", merged.CompanyProducts, incoming.CompanyProducts,
		merged.CompanyProducts.Empty(), incoming.CompanyProducts.Empty(),
		func() { merged.CompanyProducts = incoming.CompanyProducts })
	apply("company_brand", merged.CompanyBrand, incoming.CompanyBrand,
		merged.CompanyBrand.Empty(), incoming.CompanyBrand.Empty(),
		func() { merged.CompanyBrand = incoming.CompanyBrand })
	apply("objective", merged.Objective, incoming.Objective,
		merged.Objective.Empty(), incoming.Objective.Empty(),
		func() { merged.Objective = incoming.Objective })
	apply("content_format", merged.ContentFormat, incoming.ContentFormat,
		merged.ContentFormat.Empty(), incoming.ContentFormat.Empty(),
		func() { merged.ContentFormat = incoming.ContentFormat })
	apply("audience", merged.Audience, incoming.Audience,
		merged.Audience.Empty(), incoming.Audience.Empty(),
		func() { merged.Audience = incoming.Audience })
	apply("tone", merged.Tone, incoming.Tone,
		merged.Tone.Empty(), incoming.Tone.Empty(),
		func() { merged.Tone = incoming.Tone })
	apply("writing_style", merged.WritingStyle, incoming.WritingStyle,
		merged.WritingStyle.Empty(), incoming.WritingStyle.Empty(),
		func() { merged.WritingStyle = incoming.WritingStyle })
	apply("language", merged.Language, incoming.Language,
		merged.Language.Empty(), incoming.Language.Empty(),
		func() { merged.Language = incoming.Language })
	apply("constraints", merged.Constraints, incoming.Constraints,
		merged.Constraints.Empty(), incoming.Constraints.Empty(),
		func() { merged.Constraints = incoming.Constraints })

	return merged, changed
}
