package normalizer

import (
	"regexp"
	"sort"
	"strings"

	"hearings/pkg/utils"
)

// CommitteeTable maps normalized committee codes to full committee names.
type CommitteeTable map[string]string

// DefaultSenateCommittees returns the Senate code table. Both the short codes
// used by the hearings feed and Congress.gov system codes are included.
func DefaultSenateCommittees() CommitteeTable {
	return CommitteeTable{
		"AGING":    "Special Committee on Aging",
		"AGRI":     "Committee on Agriculture, Nutrition, and Forestry",
		"APPR":     "Committee on Appropriations",
		"ARMED":    "Committee on Armed Services",
		"BANK":     "Committee on Banking, Housing, and Urban Affairs",
		"BUDG":     "Committee on the Budget",
		"COMMERCE": "Committee on Commerce, Science, and Transportation",
		"ENERGY":   "Committee on Energy and Natural Resources",
		"EPW":      "Committee on Environment and Public Works",
		"FIN":      "Committee on Finance",
		"FOREIGN":  "Committee on Foreign Relations",
		"HELP":     "Committee on Health, Education, Labor, and Pensions",
		"HSGAC":    "Committee on Homeland Security and Governmental Affairs",
		"INTEL":    "Select Committee on Intelligence",
		"INDIAN":   "Committee on Indian Affairs",
		"JUD":      "Committee on the Judiciary",
		"RULES":    "Committee on Rules and Administration",
		"SMALL":    "Committee on Small Business and Entrepreneurship",
		"VETS":     "Committee on Veterans' Affairs",
		"SPAG":     "Special Committee on Aging",
		"SSAF":     "Committee on Agriculture, Nutrition, and Forestry",
		"SSAP":     "Committee on Appropriations",
		"SSAS":     "Committee on Armed Services",
		"SSBK":     "Committee on Banking, Housing, and Urban Affairs",
		"SSBU":     "Committee on the Budget",
		"SSCM":     "Committee on Commerce, Science, and Transportation",
		"SSEG":     "Committee on Energy and Natural Resources",
		"SSEV":     "Committee on Environment and Public Works",
		"SSFI":     "Committee on Finance",
		"SSFR":     "Committee on Foreign Relations",
		"SSHR":     "Committee on Health, Education, Labor, and Pensions",
		"SSGA":     "Committee on Homeland Security and Governmental Affairs",
		"SLIN":     "Select Committee on Intelligence",
		"SLIA":     "Committee on Indian Affairs",
		"SSJU":     "Committee on the Judiciary",
		"SSRA":     "Committee on Rules and Administration",
		"SSSB":     "Committee on Small Business and Entrepreneurship",
		"SSVA":     "Committee on Veterans' Affairs",
	}
}

// DefaultHouseCommittees returns the House code table keyed by the letter
// prefix of docs.house.gov committee codes ("AP00", "IF14", ...).
func DefaultHouseCommittees() CommitteeTable {
	return CommitteeTable{
		"AG": "Committee on Agriculture",
		"AP": "Committee on Appropriations",
		"AS": "Committee on Armed Services",
		"BA": "Committee on Financial Services",
		"BU": "Committee on the Budget",
		"ED": "Committee on Education and Workforce",
		"FA": "Committee on Foreign Affairs",
		"GO": "Committee on Oversight and Government Reform",
		"HA": "Committee on House Administration",
		"HM": "Committee on Homeland Security",
		"IF": "Committee on Energy and Commerce",
		"IG": "Permanent Select Committee on Intelligence",
		"II": "Committee on Natural Resources",
		"JU": "Committee on the Judiciary",
		"PW": "Committee on Transportation and Infrastructure",
		"RU": "Committee on Rules",
		"SM": "Committee on Small Business",
		"SO": "Committee on Ethics",
		"SY": "Committee on Science, Space, and Technology",
		"VR": "Committee on Veterans' Affairs",
		"WM": "Committee on Ways and Means",
		"ZS": "Select Committee on the Strategic Competition Between the United States and the Chinese Communist Party",
	}
}

// committeeInText ends the name at a bracket, semicolon, sentence end, dash,
// or a comma that starts a "Subcommittee on"/"Task Force on" clause. Other
// commas stay, as in "Science, Space, and Technology".
var committeeInText = regexp.MustCompile(`\bCommittee on ((?:the )?[A-Z][^();\n]*?)\s*(?:[);]|\.(?:\s|$)|\s[-–|]\s|,\s*(?:[A-Z][a-z]+\s+){1,2}on\b|$)`)

var nonLetters = regexp.MustCompile(`[^A-Z]`)

// CommitteeResolver turns committee codes and free text into full committee names.
type CommitteeResolver struct {
	table CommitteeTable
	// keys in containment-match order: longest first, then alphabetical.
	keys []string
}

// NewCommitteeResolver creates a resolver that owns a copy of table.
func NewCommitteeResolver(table CommitteeTable) *CommitteeResolver {
	owned := make(CommitteeTable, len(table))
	keys := make([]string, 0, len(table))

	for k, v := range table {
		key := NormalizeCode(k)
		if key == "" {
			continue
		}

		if _, dup := owned[key]; !dup {
			keys = append(keys, key)
		}

		owned[key] = v
	}

	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}

		return keys[i] < keys[j]
	})

	return &CommitteeResolver{table: owned, keys: keys}
}

// NormalizeCode upper-cases code and drops everything but A-Z.
func NormalizeCode(code string) string {
	return nonLetters.ReplaceAllString(strings.ToUpper(code), "")
}

// Resolve looks a code up: exact match first, then containment of a table key.
func (r *CommitteeResolver) Resolve(code string) string {
	key := NormalizeCode(code)
	if key == "" {
		return ""
	}

	if name, ok := r.table[key]; ok {
		return name
	}

	for _, k := range r.keys {
		if strings.Contains(key, k) {
			return r.table[k]
		}
	}

	return ""
}

// FromText extracts a "Committee on X" name embedded in free text.
func FromText(text string) string {
	m := committeeInText.FindStringSubmatch(utils.Normalize(text))
	if m == nil {
		return ""
	}

	name := strings.TrimRight(strings.TrimSpace(m[1]), " ,:")
	if name == "" {
		return ""
	}

	return "Committee on " + name
}

// ResolveName picks the committee name from an explicit value, the code table
// or the title text, in that order. Empty means unresolved.
func (r *CommitteeResolver) ResolveName(explicit, code, text string) string {
	if name := utils.Normalize(explicit); name != "" && !looksLikeCode(name) {
		return name
	}

	if name := r.Resolve(utils.FirstNonEmpty(code, explicit)); name != "" {
		return name
	}

	return FromText(text)
}

// looksLikeCode reports whether s is a bare committee code rather than a name.
func looksLikeCode(s string) bool {
	if strings.Contains(s, " ") || len(s) > 10 {
		return false
	}

	return strings.ToUpper(s) == s
}
