package cognition

// Mode selects how a field may be committed.
type Mode string

const (
	// ModeExplicit commits only on explicit statements.
	ModeExplicit Mode = "explicit"
	// ModeImplicit commits once the signal has recurred MinFreq times.
	ModeImplicit Mode = "implicit"
	// ModeHybrid commits on explicit statements or on recurrence.
	ModeHybrid Mode = "hybrid"
	// ModeExplicitOrN commits on explicit statements, on recurrence, and
	// holds a provisional runtime commit in between.
	ModeExplicitOrN Mode = "explicit_or_n"
)

const (
	// DefaultMinConfidence is the safety gate applied to every field
	// without its own threshold.
	DefaultMinConfidence = 0.80
	// ConstraintMinConfidence guards constraint fields: a wrongly learned
	// constraint suppresses behavior forever, so the bar is higher.
	ConstraintMinConfidence = 0.95
)

// FieldPolicy drives the decision for one signal field.
type FieldPolicy struct {
	Mode            Mode
	MinFreq         int
	PersonaEligible bool
	MinConfidence   float64
}

// fieldPolicies is the static per-field policy table. Style fields are cheap
// to learn and cheap to unlearn; identity and organization facts need an
// explicit statement; constraints carry the highest bar.
var fieldPolicies = map[string]FieldPolicy{
	// tone block
	"tone":                {Mode: ModeExplicitOrN, MinFreq: 2, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"voice":               {Mode: ModeHybrid, MinFreq: 2, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"emotional_intensity": {Mode: ModeImplicit, MinFreq: 3, PersonaEligible: true, MinConfidence: DefaultMinConfidence},

	// writing_style block
	"style":              {Mode: ModeHybrid, MinFreq: 2, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"sentence_structure": {Mode: ModeImplicit, MinFreq: 3, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"use_examples":       {Mode: ModeImplicit, MinFreq: 3, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"use_storytelling":   {Mode: ModeImplicit, MinFreq: 3, PersonaEligible: true, MinConfidence: DefaultMinConfidence},

	// language block
	"language":      {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"complexity":    {Mode: ModeImplicit, MinFreq: 3, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"jargon_policy": {Mode: ModeHybrid, MinFreq: 2, PersonaEligible: true, MinConfidence: DefaultMinConfidence},

	// content_format block
	"content_types":     {Mode: ModeExplicitOrN, MinFreq: 2, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"preferred_format":  {Mode: ModeExplicitOrN, MinFreq: 2, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"length_preference": {Mode: ModeImplicit, MinFreq: 3, PersonaEligible: true, MinConfidence: DefaultMinConfidence},

	// audience block
	"audience_type":   {Mode: ModeExplicitOrN, MinFreq: 2, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"audience_domain": {Mode: ModeImplicit, MinFreq: 3, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"audience_level":  {Mode: ModeImplicit, MinFreq: 3, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"geo_context":     {Mode: ModeImplicit, MinFreq: 3, PersonaEligible: true, MinConfidence: DefaultMinConfidence},

	// objective block
	"primary_goal":     {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"desired_action":   {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"success_criteria": {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"horizon":          {Mode: ModeImplicit, MinFreq: 3, PersonaEligible: true, MinConfidence: DefaultMinConfidence},

	// identity and company blocks: explicit statements only
	"name":             {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"role":             {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"seniority":        {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"company_name":     {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"industry":         {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"company_size":     {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"business_model":   {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"revenue_model":    {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"target_market":    {Mode: ModeHybrid, MinFreq: 2, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"products":         {Mode: ModeHybrid, MinFreq: 2, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"services":         {Mode: ModeHybrid, MinFreq: 2, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"differentiators":  {Mode: ModeImplicit, MinFreq: 3, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"brand_voice":      {Mode: ModeHybrid, MinFreq: 2, PersonaEligible: true, MinConfidence: DefaultMinConfidence},
	"brand_values":     {Mode: ModeImplicit, MinFreq: 3, PersonaEligible: true, MinConfidence: DefaultMinConfidence},

	// constraints block
	"constraints": {Mode: ModeExplicit, PersonaEligible: true, MinConfidence: ConstraintMinConfidence},

	// learnable non-persona fields: observed working context
	"technical_context": {Mode: ModeImplicit, MinFreq: 2, MinConfidence: DefaultMinConfidence},
	"problem_domain":    {Mode: ModeImplicit, MinFreq: 2, MinConfidence: DefaultMinConfidence},
	"expertise":         {Mode: ModeImplicit, MinFreq: 3, MinConfidence: DefaultMinConfidence},
	"preference":        {Mode: ModeHybrid, MinFreq: 2, MinConfidence: DefaultMinConfidence},
}

// PolicyFor returns the policy for a field. Unknown fields are deferred by
// the engine.
func PolicyFor(field string) (FieldPolicy, bool) {
	policy, ok := fieldPolicies[field]
	return policy, ok
}
