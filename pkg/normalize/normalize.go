// Package normalize converts raw analyzer payloads into the common
// desktop/mobile Score representation.
//
// Every analyzer returns a different, independently-evolving response
// shape, so there is exactly one typed normalization rule per analyzer
// kind. Adding a new analyzer means adding one rule here; no payload is
// ever probed schema-lessly at the call site.
//
// All rules are total: any payload, however malformed, normalizes to a
// Score whose fields are each in [0,100] or nil. Missing fields map to
// nil, never to 0.
package normalize

import (
	"github.com/spf13/cast"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
)

// Normalize converts one settled analyzer outcome into a Score.
//
// A failure outcome, or a payload carrying an explicit error flag, yields
// {nil, nil} regardless of kind-specific logic.
func Normalize(kind analyzer.Kind, outcome analyzer.Outcome) Score {
	if outcome.Failed() || outcome.Raw == nil {
		return Score{}
	}
	if payloadErrored(outcome.Raw) {
		return Score{}
	}

	switch kind {
	case analyzer.KindFonts:
		return normalizeFonts(outcome.Raw)
	case analyzer.KindSEO:
		return normalizeSEO(outcome.Raw)
	case analyzer.KindPerformance:
		return normalizeDeviceSplit(outcome.Raw, "performanceScore")
	case analyzer.KindAccessibility:
		return normalizeDeviceSplit(outcome.Raw, "accessibilityScore")
	case analyzer.KindSecurity:
		return normalizeSecurity(outcome.Raw)
	default:
		return Score{}
	}
}

// normalizeFonts derives a score from the detected font family count.
// The fonts analyzer has no native 0-100 score; the fixed lookup below is
// the defined mapping. Fonts are not device-differentiated, so desktop and
// mobile always match.
func normalizeFonts(raw map[string]any) Score {
	count, err := cast.ToIntE(raw["total_fonts"])
	if err != nil || count < 0 {
		return Score{}
	}

	var score int
	switch {
	case count == 0:
		score = 30
	case count <= 2:
		score = 100
	case count <= 4:
		score = 90
	case count <= 6:
		score = 75
	case count <= 8:
		score = 60
	default:
		score = 40
	}
	return Score{Desktop: intRef(score), Mobile: intRef(score)}
}

// normalizeSEO reads the single overall score; the SEO analyzer has no
// device split, so both devices receive the same value.
func normalizeSEO(raw map[string]any) Score {
	if v := scoreValue(raw["score"]); v != nil {
		return Score{Desktop: v, Mobile: intRef(*v)}
	}
	return Score{}
}

// normalizeDeviceSplit covers the performance and accessibility analyzers,
// which share the same shape family under different field names:
//
//  1. explicit top-level score, applied to both devices
//  2. per-device sub-scores under results.desktop / results.mobile,
//     preserved asymmetrically when only one device is present
//  3. generic top-level "score" fallback, applied to both devices
func normalizeDeviceSplit(raw map[string]any, field string) Score {
	if v := scoreValue(raw[field]); v != nil {
		return Score{Desktop: v, Mobile: intRef(*v)}
	}

	if results := subMap(raw, "results"); results != nil {
		var score Score
		if desktop := subMap(results, "desktop"); desktop != nil {
			score.Desktop = scoreValue(desktop[field])
		}
		if mobile := subMap(results, "mobile"); mobile != nil {
			score.Mobile = scoreValue(mobile[field])
		}
		if score.Desktop != nil || score.Mobile != nil {
			return score
		}
	}

	if v := scoreValue(raw["score"]); v != nil {
		return Score{Desktop: v, Mobile: intRef(*v)}
	}
	return Score{}
}

// normalizeSecurity walks the security analyzer's fallback chain in its
// documented priority order. The single-score paths fill desktop only;
// unlike seo/performance, copying to mobile is not part of this analyzer's
// contract. The ordering itself is inherited from observed analyzer
// versions and is pending confirmation against the current contract.
func normalizeSecurity(raw map[string]any) Score {
	if v := scoreValue(raw["score"]); v != nil {
		return Score{Desktop: v}
	}

	if results := subMap(raw, "results"); results != nil {
		if v := scoreValue(results["score"]); v != nil {
			return Score{Desktop: v}
		}
	}

	if v := scoreValue(raw["overallScore"]); v != nil {
		return Score{Desktop: v}
	}

	// Per-device sub-objects. A device only counts when it carries a
	// score and no error flag of its own.
	var score Score
	if desktop := subMap(raw, "desktop"); desktop != nil && !payloadErrored(desktop) {
		score.Desktop = scoreValue(desktop["score"])
	}
	if mobile := subMap(raw, "mobile"); mobile != nil && !payloadErrored(mobile) {
		score.Mobile = scoreValue(mobile["score"])
	}
	return score
}

// payloadErrored detects the explicit error flags analyzers attach to
// otherwise well-formed (2xx, valid JSON) responses: a false "success"
// boolean or a non-empty "error" field.
func payloadErrored(raw map[string]any) bool {
	if v, ok := raw["success"]; ok {
		if b, err := cast.ToBoolE(v); err == nil && !b {
			return true
		}
	}
	if v, ok := raw["error"]; ok && v != nil {
		switch e := v.(type) {
		case string:
			return e != ""
		case bool:
			return e
		default:
			return true
		}
	}
	return false
}

// scoreValue coerces an arbitrary JSON value into a valid score pointer.
// Analyzers disagree on numeric encoding (float64, int, numeric string),
// so coercion goes through cast. Fractional values round half up. Values
// outside [0,100] are rejected as unrecognized rather than clamped.
func scoreValue(v any) *int {
	if v == nil {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	score := roundHalfUp(f)
	if score < 0 || score > 100 {
		return nil
	}
	return &score
}

func subMap(raw map[string]any, key string) map[string]any {
	m, _ := raw[key].(map[string]any)
	return m
}
