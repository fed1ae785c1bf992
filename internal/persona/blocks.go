package persona

// The persona is block-structured: each block is merged atomically and
// carries an internal confidence used by the merge gate. The confidence is
// persisted with the block but never rendered into prompts.

// IdentityBlock describes who the user is.
type IdentityBlock struct {
	Name       string  `json:"name,omitempty"`
	Role       string  `json:"role,omitempty"`
	Seniority  string  `json:"seniority,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

func (b *IdentityBlock) BlockConfidence() float64 { return b.Confidence }
func (b *IdentityBlock) Empty() bool {
	return b == nil || (b.Name == "" && b.Role == "" && b.Seniority == "")
}

// CompanyProfileBlock describes the user's organization.
type CompanyProfileBlock struct {
	CompanyName string  `json:"company_name,omitempty"`
	Industry    string  `json:"industry,omitempty"`
	CompanySize string  `json:"company_size,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

func (b *CompanyProfileBlock) BlockConfidence() float64 { return b.Confidence }
func (b *CompanyProfileBlock) Empty() bool {
	return b == nil || (b.CompanyName == "" && b.Industry == "" && b.CompanySize == "")
}

// CompanyBusinessBlock describes how the company makes money.
type CompanyBusinessBlock struct {
	BusinessModel string  `json:"business_model,omitempty"`
	RevenueModel  string  `json:"revenue_model,omitempty"`
	TargetMarket  string  `json:"target_market,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
}

func (b *CompanyBusinessBlock) BlockConfidence() float64 { return b.Confidence }
func (b *CompanyBusinessBlock) Empty() bool {
	return b == nil || (b.BusinessModel == "" && b.RevenueModel == "" && b.TargetMarket == "")
}

// CompanyProductsBlock describes what the company sells.
type CompanyProductsBlock struct {
	Products        []string `json:"products,omitempty"`
	Services        []string `json:"services,omitempty"`
	Differentiators []string `json:"differentiators,omitempty"`
	Confidence      float64  `json:"confidence,omitempty"`
}

func (b *CompanyProductsBlock) BlockConfidence() float64 { return b.Confidence }
func (b *CompanyProductsBlock) Empty() bool {
	return b == nil || (len(b.Products) == 0 && len(b.Services) == 0 && len(b.Differentiators) == 0)
}

// CompanyBrandBlock captures brand voice and values.
type CompanyBrandBlock struct {
	BrandVoice  string   `json:"brand_voice,omitempty"`
	BrandValues []string `json:"brand_values,omitempty"`
	Confidence  float64  `json:"confidence,omitempty"`
}

func (b *CompanyBrandBlock) BlockConfidence() float64 { return b.Confidence }
func (b *CompanyBrandBlock) Empty() bool {
	return b == nil || (b.BrandVoice == "" && len(b.BrandValues) == 0)
}

// ObjectiveBlock captures what the user is trying to achieve.
type ObjectiveBlock struct {
	PrimaryGoal     string  `json:"primary_goal,omitempty"`
	DesiredAction   string  `json:"desired_action,omitempty"`
	SuccessCriteria string  `json:"success_criteria,omitempty"`
	Horizon         string  `json:"horizon,omitempty"` // short_term | long_term
	Confidence      float64 `json:"confidence,omitempty"`
}

func (b *ObjectiveBlock) BlockConfidence() float64 { return b.Confidence }
func (b *ObjectiveBlock) Empty() bool {
	return b == nil || (b.PrimaryGoal == "" && b.DesiredAction == "" && b.SuccessCriteria == "" && b.Horizon == "")
}

// ContentFormatBlock captures format preferences.
type ContentFormatBlock struct {
	ContentTypes     []string `json:"content_types,omitempty"`
	PreferredFormat  string   `json:"preferred_format,omitempty"`
	LengthPreference string   `json:"length_preference,omitempty"`
	Confidence       float64  `json:"confidence,omitempty"`
}

func (b *ContentFormatBlock) BlockConfidence() float64 { return b.Confidence }
func (b *ContentFormatBlock) Empty() bool {
	return b == nil || (len(b.ContentTypes) == 0 && b.PreferredFormat == "" && b.LengthPreference == "")
}

// AudienceBlock captures who the user writes for.
type AudienceBlock struct {
	AudienceType   string  `json:"audience_type,omitempty"`
	AudienceDomain string  `json:"audience_domain,omitempty"`
	AudienceLevel  string  `json:"audience_level,omitempty"` // beginner | intermediate | expert
	GeoContext     string  `json:"geo_context,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
}

func (b *AudienceBlock) BlockConfidence() float64 { return b.Confidence }
func (b *AudienceBlock) Empty() bool {
	return b == nil || (b.AudienceType == "" && b.AudienceDomain == "" && b.AudienceLevel == "" && b.GeoContext == "")
}

// ToneBlock captures tonal preferences.
type ToneBlock struct {
	Tone               string  `json:"tone,omitempty"`
	Voice              string  `json:"voice,omitempty"` // first_person | second_person | third_person
	EmotionalIntensity string  `json:"emotional_intensity,omitempty"`
	Confidence         float64 `json:"confidence,omitempty"`
}

func (b *ToneBlock) BlockConfidence() float64 { return b.Confidence }
func (b *ToneBlock) Empty() bool {
	return b == nil || (b.Tone == "" && b.Voice == "" && b.EmotionalIntensity == "")
}

// WritingStyleBlock captures structural writing preferences.
type WritingStyleBlock struct {
	Style             string  `json:"style,omitempty"`
	SentenceStructure string  `json:"sentence_structure,omitempty"`
	UseExamples       *bool   `json:"use_examples,omitempty"`
	UseStorytelling   *bool   `json:"use_storytelling,omitempty"`
	Confidence        float64 `json:"confidence,omitempty"`
}

func (b *WritingStyleBlock) BlockConfidence() float64 { return b.Confidence }
func (b *WritingStyleBlock) Empty() bool {
	return b == nil || (b.Style == "" && b.SentenceStructure == "" && b.UseExamples == nil && b.UseStorytelling == nil)
}

// LanguageBlock captures language and complexity preferences.
type LanguageBlock struct {
	Language     string  `json:"language,omitempty"`
	Complexity   string  `json:"complexity,omitempty"` // simple | professional | academic
	JargonPolicy string  `json:"jargon_policy,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
}

func (b *LanguageBlock) BlockConfidence() float64 { return b.Confidence }
func (b *LanguageBlock) Empty() bool {
	return b == nil || (b.Language == "" && b.Complexity == "" && b.JargonPolicy == "")
}

// ConstraintsBlock lists hard requirements that must be followed or avoided.
type ConstraintsBlock struct {
	Constraints []string `json:"constraints,omitempty"`
	Confidence  float64  `json:"confidence,omitempty"`
}

func (b *ConstraintsBlock) BlockConfidence() float64 { return b.Confidence }
func (b *ConstraintsBlock) Empty() bool {
	return b == nil || len(b.Constraints) == 0
}

// Persona is the aggregate user model. A nil block means "unknown", not an
// empty preference.
type Persona struct {
	UserIdentity    *IdentityBlock        `json:"user_identity,omitempty"`
	CompanyProfile  *CompanyProfileBlock  `json:"company_profile,omitempty"`
	CompanyBusiness *CompanyBusinessBlock `json:"company_business,omitempty"`
	CompanyProducts *CompanyProductsBlock `json:"company_products,omitempty"`
	CompanyBrand    *CompanyBrandBlock    `json:"company_brand,omitempty"`
	Objective       *ObjectiveBlock       `json:"objective,omitempty"`
	ContentFormat   *ContentFormatBlock   `json:"content_format,omitempty"`
	Audience        *AudienceBlock        `json:"audience,omitempty"`
	Tone            *ToneBlock            `json:"tone,omitempty"`
	WritingStyle    *WritingStyleBlock    `json:"writing_style,omitempty"`
	Language        *LanguageBlock        `json:"language,omitempty"`
	Constraints     *ConstraintsBlock     `json:"constraints,omitempty"`
}

// Empty reports whether no block carries data.
func (p *Persona) Empty() bool {
	if p == nil {
		return true
	}
	return p.UserIdentity.Empty() &&
		p.CompanyProfile.Empty() &&
		p.CompanyBusiness.Empty() &&
		p.CompanyProducts.Empty() &&
		p.CompanyBrand.Empty() &&
		p.Objective.Empty() &&
		p.ContentFormat.Empty() &&
		p.Audience.Empty() &&
		p.Tone.Empty() &&
		p.WritingStyle.Empty() &&
		p.Language.Empty() &&
		p.Constraints.Empty()
}

// BlockNames lists the persona blocks in schema order.
var BlockNames = []string{
	"user_identity",
	"company_profile",
	"company_business",
	"company_products",
	"company_brand",
	"objective",
	"content_format",
	"audience",
	"tone",
	"writing_style",
	"language",
	"constraints",
}
