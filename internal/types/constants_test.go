package types

import (
	"testing"
)

func TestKindValidate(t *testing.T) {
	tests := []struct {
		name    string
		k       Kind
		wantErr bool
	}{
		{"formula valid", KindFormula, false},
		{"tap valid", KindTap, false},
		{"appstore valid", KindAppStore, false},
		{"empty invalid", "", true},
		{"invalid value", "npm", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.k.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Kind.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"brew", KindFormula, false},
		{"Formula", KindFormula, false},
		{"CASK", KindCask, false},
		{"pip", KindPip, false},
		{"", "", true},
		{"apt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestKindHelpers(t *testing.T) {
	if !KindFormula.HasOptions() || !KindGem.HasOptions() {
		t.Error("formula and gem should carry options")
	}
	if KindTap.HasOptions() {
		t.Error("tap should not carry options")
	}
	if !KindPip.IsSubPackage() || KindCask.IsSubPackage() {
		t.Error("IsSubPackage() mismatch")
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input   string
		want    Dialect
		wantErr bool
	}{
		{"", DialectNone, false},
		{"none", DialectNone, false},
		{"file", DialectPlain, false},
		{"plain", DialectPlain, false},
		{"brewdler", DialectBundle, false},
		{"Bundle", DialectBundle, false},
		{"cmd", DialectCommand, false},
		{"command", DialectCommand, false},
		{"command-script", DialectCommand, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDialect(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDialect(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDialect(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDialectResolve(t *testing.T) {
	if DialectNone.Resolve() != DialectPlain {
		t.Errorf("DialectNone.Resolve() = %v, want plain", DialectNone.Resolve())
	}
	if DialectBundle.Resolve() != DialectBundle {
		t.Errorf("DialectBundle.Resolve() = %v, want bundle", DialectBundle.Resolve())
	}
	if DialectNone.IsResolved() {
		t.Error("DialectNone should not be resolved")
	}
}

func TestIsCaskTap(t *testing.T) {
	if !IsCaskTap("homebrew/cask") || !IsCaskTap("caskroom/cask") {
		t.Error("cask tap names not recognized")
	}
	if IsCaskTap("homebrew/cask-fonts") {
		t.Error("homebrew/cask-fonts is not the cask tap")
	}
}

func TestAttributionLabels(t *testing.T) {
	for _, a := range AllAttributions() {
		if a.Label() == "" {
			t.Errorf("Attribution %q has empty label", a)
		}
	}
}
