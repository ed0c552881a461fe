package tex

import "testing"

func TestEscape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"special characters",
			"100% & Co. {Ltd}",
			`100\% \& Co. \{Ltd\}`},
		{"underscore and hash",
			"booth_nr #12",
			`booth\_nr \#12`},
		{"dollar",
			"100$",
			`100\$`},
		{"backslash first",
			`C:\fair`,
			`C:\textbackslashfair`},
		{"tilde and caret",
			"~^",
			`\~{}\^{}`},
		{"double quotes become paired apostrophes",
			`"Muster" AG`,
			`''Muster'' AG`},
		{"three or more dots collapse to ldots",
			"und so weiter...",
			`und so weiter\ldots`},
		{"many dots",
			"warte.....",
			`warte\ldots`},
		{"two dots untouched",
			"v1..2",
			"v1..2"},
		{"plain text untouched",
			"Muster AG, Zürich",
			"Muster AG, Zürich"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Escape(tt.input); got != tt.want {
				t.Errorf("Escape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewline(t *testing.T) {
	got := Newline("Pascal Gutzwiller\nQuästor")
	want := `Pascal Gutzwiller\\Quästor`
	if got != want {
		t.Errorf("Newline = %q, want %q", got, want)
	}

	if got := Newline("single line"); got != "single line" {
		t.Errorf("Newline(single line) = %q", got)
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Muster AG", "Muster_AG"},
		{"Müller & Söhne AG", "Muller_Sohne_AG"},
		{"100% & Co. {Ltd}", "100_Co._Ltd"},
		{"  spaced  ", "spaced"},
		{"../../etc/passwd", "etc_passwd"},
	}

	for _, tt := range tests {
		if got := SecureFilename(tt.input); got != tt.want {
			t.Errorf("SecureFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
