package names

// Rules is the immutable keyword configuration a Classifier is built from.
type Rules struct {
	// OrgKeywords mark a name as an organization (substring match).
	OrgKeywords []string
	// PersonSuffixes are trailing legal/trust phrases stripped before a personal
	// name is extracted. Longer phrases must come first.
	PersonSuffixes []string
	// CorporateWords signal a corporate residue with no personal name in it.
	CorporateWords []string
	// PrivacyAgents are registered-agent services that front for the real owner.
	PrivacyAgents []string
	// OfficerPlaceholders are registry filler entries that are not names.
	OfficerPlaceholders []string
	// DescriptionPrefixes mark an officer entry that reads like prose.
	DescriptionPrefixes []string
	// LegalAbbreviations stay upper-case in display names.
	LegalAbbreviations []string
}

func DefaultRules() Rules {
	return Rules{
		OrgKeywords: []string{
			"LLC", "INC", "CORP", "LP", "LLP", "TRUST", "COMPANY", "HOLDINGS",
			"PROPERTIES", "INVESTMENTS", "CAPITAL", "PARTNERS", "GROUP", "VENTURES",
			"MANAGEMENT", "ENTERPRISES", "SERVICES", "REALTY", "DEVELOPMENT", "ASSOCIATES",
		},
		PersonSuffixes: []string{
			"REVOCABLE LIVING TRUST", "IRREVOCABLE TRUST", "REVOCABLE TRUST",
			"FAMILY LIMITED PARTNERSHIP", "FAMILY TRUST", "LIVING TRUST", "TRUST AGREEMENT",
			"& ASSOCIATION INC", "& ASSOCIATES INC", "& ASSOCIATES", "PROPERTIES LLC",
			"HOLDINGS LLC", "INVESTMENTS LLC", "ENTERPRISES LLC", "REALTY LLC",
			"TRUSTEE", "TRUST", "ESTATE", "LLC", "INC", "CORP", "LTD", "LP",
		},
		CorporateWords: []string{
			"FUND", "BANK", "NATIONAL", "AMERICAN", "INVESTMENT", "FINANCIAL",
			"EQUITY", "PARTNERSHIP", "ASSOCIATION", "CHURCH", "COUNTY", "CITY OF",
			"STATE OF", "UNITED", "HOLDING", "PROPERTY", "REAL ESTATE", "RENTALS",
			"HOMES", "LAND", "ASSET", "PORTFOLIO", "INTERNATIONAL", "INDUSTRIES",
			"SOLUTIONS", "SYSTEMS", "AUTHORITY", "DISTRICT", "HOUSING", "MORTGAGE",
		},
		PrivacyAgents: []string{
			"CSC", "CT CORPORATION", "NATIONAL REGISTERED AGENT", "NORTHWEST REGISTERED AGENT",
			"INCORP", "LEGALZOOM", "HARBOR COMPLIANCE", "COGENCY GLOBAL",
			"UNITED STATES CORPORATION AGENTS", "VCORP", "CORPORATE CREATIONS",
			"REGISTERED AGENTS INC",
		},
		OfficerPlaceholders: []string{
			"positions include", "information on file", "see document", "refer to",
			"available upon request", "not available", "n/a", "none", "unknown",
			"various", "multiple", "as per", "listed in", "filed with",
			"registered agent", "same as", "see above", "see below", "to be updated",
			"pending", "the company", "this company", "corporate officer",
			"director services", "nominee", "designated agent",
		},
		DescriptionPrefixes: []string{"the ", "a ", "an ", "as ", "per ", "see ", "for "},
		LegalAbbreviations:  []string{"LLC", "INC", "LP", "LTD", "PC", "PA", "NA", "CO", "CORP", "LLP", "PLLC"},
	}
}
