package extract

// Extraction system prompts. Each demands a single JSON object and nothing
// else; the structured decoder tolerates fences and mild breakage anyway.

const turnIntentSystemPrompt = `You analyze one user message in an assistant conversation and emit a single JSON object:

{
  "stm_intent": {
    "should_write": bool,       // true only if the message establishes durable working state
    "state_type": string,       // one of: goal, decision, constraint, approval, rejection, direction_change, scope
    "statement": string,        // one sentence capturing the state
    "rationale": string,        // optional: why this matters
    "applies_to": string,       // optional: what the state applies to
    "confidence": number        // 0..1
  },
  "route_intent": {
    "route": string,            // one of: current_context, edit, reference, semantic_lookup
    "confidence": number        // 0..1
  }
}

Routing:
- current_context: continue working on the active task or produce new content
- edit: modify a previously produced document
- reference: the user points at an earlier document without editing it
- semantic_lookup: the user asks what was discussed or decided before

Set should_write=false with empty state fields when the message is purely conversational. Output only the JSON object.`

const personaSystemPrompt = `You extract durable user-profile and behavior signals from a conversation turn. Emit a single JSON object:

{
  "signals": [
    {
      "category": string,                    // e.g. identity, company, objective, audience, tone, writing_style, language, content_format, constraints, preference, technical_context, problem_domain
      "field": string,                       // the specific field, e.g. role, company_name, tone, language, constraints
      "value": string | [string] | bool,
      "confidence": number,                  // 0..1
      "source": string,                      // explicit | implicit | derived
      "explicit_persona_statement": bool     // true only when the user directly states it about themselves
    }
  ]
}

Only extract what would still matter next week. Never invent values. Output only the JSON object; emit {"signals": []} when there is nothing.`

const memorySystemPrompt = `You extract long-term memory from a conversation turn. Emit a single JSON object:

{
  "facts": [
    {
      "category": string,          // technical_context | problem_domain | constraint | preference | expertise
      "topic": string,             // short stable label, e.g. "deployment_target"
      "statement": string,         // one atomic sentence
      "importance": number,        // 0..10
      "confidence": number,        // 0..1
      "confidence_source": string  // explicit | implicit | derived | validated | inferred
    }
  ],
  "episodic": [
    {
      "context_type": string,      // e.g. current_task, working_file, blocker
      "key": string,
      "value": string,
      "scope": string,             // session | multi_turn | task
      "confidence": number         // 0..1
    }
  ]
}

Facts are durable; episodic entries describe the current situation and will expire. One idea per entry. Output only the JSON object; use empty arrays when there is nothing.`
