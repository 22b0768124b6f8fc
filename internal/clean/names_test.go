package clean

import "testing"

func TestCanonicalPrintNameTable(t *testing.T) {
	tests := []struct {
		in        string
		wantShort string
		wantFull  string
	}{
		{in: "NoMansFort", wantShort: "NMF", wantFull: "No Man's Fort"},
		{in: "no-mans-fort", wantShort: "NMF", wantFull: "No Man's Fort"},
		{in: "St Catherines", wantShort: "SC", wantFull: "St Catherine's"},
		{in: "BEMLBSL", wantShort: "BEMLBSL", wantFull: "Bembridge Lifeboat Station"},
		{in: "SEAGV2L", wantShort: "SEAGV2L", wantFull: "Seaview V2 Large"},
		{in: "RYS", wantShort: "RYS", wantFull: "Royal Yacht Squadron"},
		{in: "contessa 32", wantShort: "C32", wantFull: "Contessa 32"},
		{in: "Seauew", wantShort: "Seaview", wantFull: "Seaview"},
		{in: "amermaids", wantShort: "Mermaids", wantFull: "Mermaids"},
	}
	for _, tt := range tests {
		got, ok := CanonicalPrintName(tt.in)
		if !ok {
			t.Errorf("CanonicalPrintName(%q) rejected", tt.in)
			continue
		}
		if got.Short != tt.wantShort || got.Full != tt.wantFull {
			t.Errorf("CanonicalPrintName(%q) = %+v, want (%s, %s)", tt.in, got, tt.wantShort, tt.wantFull)
		}
	}
}

func TestCanonicalPrintNameFallback(t *testing.T) {
	tests := []struct {
		in        string
		wantShort string
		wantFull  string
	}{
		{in: "village at the harbour", wantShort: "VATH", wantFull: "Village at the Harbour"},
		{in: "catherine's cove", wantShort: "CC", wantFull: "Catherine's Cove"},
		{in: "sunset", wantShort: "Sunset", wantFull: "Sunset"},
		{in: "old rys flag", wantShort: "ORF", wantFull: "Old RYS Flag"},
	}
	for _, tt := range tests {
		got, ok := CanonicalPrintName(tt.in)
		if !ok {
			t.Errorf("CanonicalPrintName(%q) rejected", tt.in)
			continue
		}
		if got.Short != tt.wantShort || got.Full != tt.wantFull {
			t.Errorf("CanonicalPrintName(%q) = %+v, want (%s, %s)", tt.in, got, tt.wantShort, tt.wantFull)
		}
	}
}

// Canonical names must survive re-canonicalization unchanged, or
// re-running an import would rename records it created itself.
func TestCanonicalPrintNameIdempotent(t *testing.T) {
	inputs := []string{
		"NoMansFort", "st catherines", "BEMLBSL", "seaview v2 large",
		"seauew", "cowes race day", "a brand new painting", "RYS",
	}
	for _, in := range inputs {
		first, ok := CanonicalPrintName(in)
		if !ok {
			t.Fatalf("CanonicalPrintName(%q) rejected", in)
		}
		second, ok := CanonicalPrintName(first.Full)
		if !ok {
			t.Fatalf("CanonicalPrintName(%q) rejected on second pass", first.Full)
		}
		if second.Full != first.Full {
			t.Errorf("not idempotent: %q -> %q -> %q", in, first.Full, second.Full)
		}
	}
}

func TestCanonicalDistributorName(t *testing.T) {
	tests := []struct {
		in       string
		wantFull string
	}{
		{in: "kendall", wantFull: "Kendalls"},
		{in: "Kendalls", wantFull: "Kendalls"},
		{in: "seaview gallery", wantFull: "Seaview Gallery"},
		{in: "bramble and berry", wantFull: "Bramble and Berry"},
		{in: "DIRECT", wantFull: "Direct"},
	}
	for _, tt := range tests {
		got, ok := CanonicalDistributorName(tt.in)
		if !ok {
			t.Errorf("CanonicalDistributorName(%q) rejected", tt.in)
			continue
		}
		if got.Full != tt.wantFull {
			t.Errorf("CanonicalDistributorName(%q) = %q, want %q", tt.in, got.Full, tt.wantFull)
		}
	}
}

func TestCanonicalDistributorNameRejectsChecked(t *testing.T) {
	for _, in := range []string{"checked", "Checked", " CHECKED "} {
		if _, ok := CanonicalDistributorName(in); ok {
			t.Errorf("CanonicalDistributorName(%q) accepted", in)
		}
	}
}

func TestCanonicalNameRejectsMissing(t *testing.T) {
	for _, in := range []string{"", "  ", "nan", "#ERROR!"} {
		if _, ok := CanonicalPrintName(in); ok {
			t.Errorf("CanonicalPrintName(%q) accepted", in)
		}
	}
}

func TestSmartTitleApostrophe(t *testing.T) {
	if got := smartTitle("catherine's rock"); got != "Catherine's Rock" {
		t.Fatalf("got %q", got)
	}
	// single letter after the apostrophe stays lowercase; longer
	// segments capitalize (o'brien style surnames)
	if got := smartTitle("o'brien's boat"); got != "O'Brien's Boat" {
		t.Fatalf("got %q", got)
	}
}

func TestShortName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Sunset", want: "Sunset"},
		{in: "Cowes Race Day", want: "CRD"},
		{in: "No Man's Fort", want: "NMF"},
	}
	for _, tt := range tests {
		if got := shortName(tt.in); got != tt.want {
			t.Errorf("shortName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
