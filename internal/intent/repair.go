package intent

// defaultConfidence is assumed when the provider omitted the field entirely.
const defaultConfidence = 0.7

// placeholderReasoning fills a missing reasoning after repair.
const placeholderReasoning = "No reasoning provided by the model."

// Repair applies the narrow set of safe fixes to a normalized interpretation:
// deprecated intent names, percentage-style or missing confidence, missing
// reasoning. It never fabricates identity data — an empty artist, track, or
// songs list stays exactly as broken as it arrived.
func Repair(m map[string]any) (map[string]any, bool) {
	out, _ := deepCopy(m).(map[string]any)
	changed := false

	if name, ok := out["intent"].(string); ok {
		if replacement, deprecated := deprecatedIntents[name]; deprecated {
			out["intent"] = replacement
			changed = true
		}
	}

	switch conf := out["confidence"].(type) {
	case float64:
		if c := repairConfidence(conf); c != conf {
			out["confidence"] = c
			changed = true
		}
	default:
		out["confidence"] = defaultConfidence
		changed = true
	}

	if reasoning, _ := out["reasoning"].(string); reasoning == "" {
		out["reasoning"] = placeholderReasoning
		changed = true
	}

	return out, changed
}

// repairConfidence maps a percentage-style value (>1) back into [0,1] by a
// single division, then clamps.
func repairConfidence(c float64) float64 {
	if c > 1 {
		c = c / 100
	}
	return Clamp01(c)
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Resolve runs the full pipeline over raw provider output: normalize,
// validate, and — only on failure — repair and re-validate once. When repair
// does not help, the original error is surfaced, not the secondary one.
func Resolve(raw any) (Intent, *ValidationError) {
	norm := Normalize(raw)

	parsed, origErr := Validate(norm)
	if origErr == nil {
		return parsed, nil
	}

	m, ok := norm.(map[string]any)
	if !ok {
		return nil, origErr
	}

	repaired, changed := Repair(m)
	if !changed {
		return nil, origErr
	}

	parsed, err := Validate(repaired)
	if err != nil {
		return nil, origErr
	}
	return parsed, nil
}
