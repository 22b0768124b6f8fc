package clean

import (
	"strings"
)

// Canonical is the standardized identity pair for a raw name: a short
// display code and the full canonical name.
type Canonical struct {
	Short string
	Full  string
}

// Known print-name variants. Keys are lookup-normalized (lowercased,
// spaces/hyphens/underscores/periods stripped), so one entry covers
// "NoMansFort ", "no-mans-fort" and the like. The table is an override
// layer over the title-casing fallback, not a gate: unmapped names
// still canonicalize.
var printNameTable = map[string]Canonical{
	// spacing and formatting fixes
	"nomanfort":    {Short: "NMF", Full: "No Man's Fort"},
	"nomansfort":   {Short: "NMF", Full: "No Man's Fort"},
	"stcatherines": {Short: "SC", Full: "St Catherine's"},
	"seaviewtwo":   {Short: "ST", Full: "Seaview Two"},
	"seaviewtwooo": {Short: "ST", Full: "Seaview Two"},

	// historical abbreviations, kept as the canonical short codes
	"bemlbsl":                  {Short: "BEMLBSL", Full: "Bembridge Lifeboat Station"},
	"bembridgelifeboatstation": {Short: "BEMLBSL", Full: "Bembridge Lifeboat Station"},
	"seagv2l":                  {Short: "SEAGV2L", Full: "Seaview V2 Large"},
	"seaviewv2large":           {Short: "SEAGV2L", Full: "Seaview V2 Large"},
	"rys":                      {Short: "RYS", Full: "Royal Yacht Squadron"},

	// capitalization fixes
	"cowesraceday":       {Short: "CRD", Full: "Cowes Race Day"},
	"quayrocks":          {Short: "QR", Full: "Quay Rocks"},
	"quayrockslandscape": {Short: "QRL", Full: "Quay Rocks Landscape"},
	"lifeboatstation":    {Short: "LS", Full: "Lifeboat Station"},
	"priory":             {Short: "Priory", Full: "Priory"},

	// proper names
	"ducie":      {Short: "Ducie", Full: "Ducie"},
	"etchells":   {Short: "Etchells", Full: "Etchells"},
	"lymington":  {Short: "Lymington", Full: "Lymington"},
	"bembridge":  {Short: "Bembridge", Full: "Bembridge"},
	"osborne":    {Short: "Osborne", Full: "Osborne"},
	"contessa32": {Short: "C32", Full: "Contessa 32"},
	"seagrove":   {Short: "Seagrove", Full: "Seagrove"},

	// wildlife
	"puffin":  {Short: "Puffin", Full: "Puffin"},
	"seagull": {Short: "Seagull", Full: "Seagull"},

	// special editions
	"jubilee":  {Short: "Jubilee", Full: "Jubilee"},
	"classics": {Short: "Classics", Full: "Classics"},
	"regatta":  {Short: "Regatta", Full: "Regatta"},

	// landscapes
	"nerthek": {Short: "Nerthek", Full: "Nerthek"},
	"quarr":   {Short: "Quarr", Full: "Quarr"},
	"seauew":  {Short: "Seaview", Full: "Seaview"},
	"seaview": {Short: "Seaview", Full: "Seaview"},

	// variants seen in the raw exports
	"amermaids": {Short: "Mermaids", Full: "Mermaids"},
	"mermaids":  {Short: "Mermaids", Full: "Mermaids"},
}

var distributorNameTable = map[string]Canonical{
	"kendalls":        {Short: "Kendalls", Full: "Kendalls"},
	"kendall":         {Short: "Kendalls", Full: "Kendalls"},
	"seaviewgallery":  {Short: "SG", Full: "Seaview Gallery"},
	"brambleandberry": {Short: "BAB", Full: "Bramble and Berry"},
	"greenbuoy":       {Short: "GB", Full: "Green Buoy"},
	"tapnellfarm":     {Short: "TF", Full: "Tapnell Farm"},
	"direct":          {Short: "Direct", Full: "Direct"},
	"unknown":         {Short: "Unknown", Full: "Unknown"},
	"perera":          {Short: "Perera", Full: "Perera"},
	"framers":         {Short: "Framers", Full: "Framers"},
}

// Words that keep their uppercase form during title casing.
var uppercaseWords = map[string]struct{}{
	"RYS": {}, "IOW": {}, "UK": {}, "V2": {}, "V2L": {},
}

// Minor words stay lowercase unless leading.
var lowercaseWords = map[string]struct{}{
	"and": {}, "the": {}, "of": {}, "at": {}, "in": {}, "on": {},
}

var nameKeyReplacer = strings.NewReplacer(" ", "", "-", "", "_", "", ".", "")

func nameKey(name string) string {
	return nameKeyReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// CanonicalPrintName standardizes a raw print name to its (short, full)
// identity pair. Every non-empty input yields some canonical name: the
// table handles known variants, the title-casing rule everything else.
func CanonicalPrintName(raw string) (Canonical, bool) {
	return canonicalName(raw, printNameTable)
}

// CanonicalDistributorName standardizes a raw distributor name. The
// literal "checked" is a boolean cell that leaked into the distributor
// column in old exports and is rejected outright.
func CanonicalDistributorName(raw string) (Canonical, bool) {
	if strings.EqualFold(strings.TrimSpace(raw), "checked") {
		return Canonical{}, false
	}
	return canonicalName(raw, distributorNameTable)
}

func canonicalName(raw string, table map[string]Canonical) (Canonical, bool) {
	if isMissing(raw) {
		return Canonical{}, false
	}

	if hit, ok := table[nameKey(raw)]; ok {
		return hit, true
	}

	full := smartTitle(strings.TrimSpace(raw))
	if full == "" {
		return Canonical{}, false
	}
	return Canonical{Short: shortName(full), Full: full}, true
}

// smartTitle title-cases a raw name while preserving a fixed set of
// acronyms, keeping minor words lowercase past the first position, and
// leaving letters after an apostrophe lowercase ("Catherine's", not
// "Catherine'S").
func smartTitle(name string) string {
	words := strings.Fields(name)
	out := make([]string, 0, len(words))

	for i, word := range words {
		word = strings.Trim(word, ".,;:")
		if word == "" {
			continue
		}

		upper := strings.ToUpper(word)
		if _, ok := uppercaseWords[upper]; ok {
			out = append(out, upper)
			continue
		}
		lower := strings.ToLower(word)
		if _, ok := lowercaseWords[lower]; ok && i > 0 {
			out = append(out, lower)
			continue
		}
		out = append(out, titleWord(word))
	}

	return strings.Join(out, " ")
}

func titleWord(word string) string {
	if !strings.Contains(word, "'") {
		return capitalize(word)
	}
	parts := strings.Split(word, "'")
	for i, p := range parts {
		if i == 0 || len(p) > 1 {
			parts[i] = capitalize(p)
		} else {
			parts[i] = strings.ToLower(p)
		}
	}
	return strings.Join(parts, "'")
}

func capitalize(word string) string {
	if word == "" {
		return ""
	}
	runes := []rune(strings.ToLower(word))
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}

// shortName derives the short code from a canonical full name: the
// word itself for single-word names, first-letter initials otherwise.
func shortName(full string) string {
	words := strings.Fields(full)
	if len(words) == 1 {
		return words[0]
	}
	var b strings.Builder
	for _, w := range words {
		r := []rune(w)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}
