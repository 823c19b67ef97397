package analyzer

// Kind identifies one of the independent audit domains. Each kind is served
// by its own analyzer service with its own response shape and versioning.
type Kind string

const (
	// KindFonts is the typography analyzer (font family detection).
	KindFonts Kind = "fonts"

	// KindSEO is the search engine optimization analyzer.
	KindSEO Kind = "seo"

	// KindPerformance is the page load performance analyzer.
	KindPerformance Kind = "performance"

	// KindAccessibility is the WCAG accessibility analyzer.
	KindAccessibility Kind = "accessibility"

	// KindSecurity is the security header / TLS analyzer.
	KindSecurity Kind = "security"
)

// AllKinds returns every analyzer kind in canonical enumeration order.
//
// This order is load-bearing: it is the issue extraction order, the
// tie-break order for weakest/strongest area selection, and the order the
// orchestrator fans out in. Adding a new analyzer kind means adding it
// here and providing one normalization rule for it; nothing dispatches
// dynamically on payload shape.
func AllKinds() []Kind {
	return []Kind{KindFonts, KindSEO, KindPerformance, KindAccessibility, KindSecurity}
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the known analyzer kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindFonts, KindSEO, KindPerformance, KindAccessibility, KindSecurity:
		return true
	default:
		return false
	}
}

// Title returns the human-readable label used in narratives and reports.
func (k Kind) Title() string {
	switch k {
	case KindFonts:
		return "Typography"
	case KindSEO:
		return "SEO"
	case KindPerformance:
		return "Performance"
	case KindAccessibility:
		return "Accessibility"
	case KindSecurity:
		return "Security"
	default:
		return string(k)
	}
}
