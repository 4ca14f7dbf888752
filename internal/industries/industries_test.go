package industries

import (
	"reflect"
	"testing"
)

func TestFormatForStorage(t *testing.T) {
	sel := Selection{
		"Tech":       {"FinTech", "Venture Capital"},
		"Finance":    {"Private Equity"},
		"Consulting": {},
	}
	got := FormatForStorage(sel)
	want := []string{"Finance: Private Equity", "Tech: FinTech, Venture Capital"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FormatForStorage = %v, want %v", got, want)
	}
}

func TestParseStored(t *testing.T) {
	got := ParseStored([]string{"Finance: Hedge Funds, Private Equity", "Consulting", "  "})
	want := Selection{
		"Finance":    {"Hedge Funds", "Private Equity"},
		"Consulting": {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseStored = %v, want %v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	sel := Selection{"Diversified": {"Energy", "Healthcare"}}
	if got := ParseStored(FormatForStorage(sel)); !reflect.DeepEqual(got, sel) {
		t.Fatalf("round trip = %v, want %v", got, sel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		sel     Selection
		wantErr bool
	}{
		{"valid", Selection{"Finance": {"Real Estate"}}, false},
		{"case insensitive primary", Selection{"tech": {"FinTech"}}, false},
		{"unknown primary", Selection{"Farming": {"Wheat"}}, true},
		{"unknown sub", Selection{"Finance": {"Crypto"}}, true},
		{"consulting alone", Selection{"Consulting": {}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := Validate(tc.sel); (err != nil) != tc.wantErr {
				t.Fatalf("Validate err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestOverlap(t *testing.T) {
	a := []string{"Finance: Hedge Funds", "Tech: FinTech"}
	if !Overlap(a, []string{"tech: Venture Capital"}) {
		t.Fatalf("expected overlap on Tech")
	}
	if Overlap(a, []string{"Consulting"}) {
		t.Fatalf("did not expect overlap")
	}
	if Overlap(nil, a) {
		t.Fatalf("empty selection never overlaps")
	}
}
