package pdf

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSearchTerms(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want []string
	}{
		{
			"title and authors",
			Info{Title: "Deep Learning", Author: "Yann LeCun and Yoshua Bengio, Geoffrey Hinton"},
			[]string{`"Deep Learning"`, `"Yann LeCun"`, `"Yoshua Bengio"`, `"Geoffrey Hinton"`},
		},
		{
			"word placeholder title",
			Info{Title: "Microsoft Word - draft3.docx", Author: "Jane Public"},
			[]string{`"Jane Public"`},
		},
		{
			"doi title",
			Info{Title: "doi:10.1/xyz"},
			nil,
		},
		{
			"file name title",
			Info{Title: "paper.pdf"},
			nil,
		},
		{
			"quotes stripped",
			Info{Title: `The "Best" Paper`},
			[]string{`"The Best Paper"`},
		},
		{
			"empty",
			Info{},
			nil,
		},
		{
			"blank author pieces",
			Info{Author: " , and Jane Public, "},
			[]string{`"Jane Public"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchTerms(tt.info)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SearchTerms() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchQuery(t *testing.T) {
	got := SearchQuery(Info{Title: "Deep Learning", Author: "Yann LeCun"})
	if got != `"Deep Learning" "Yann LeCun"` {
		t.Errorf("SearchQuery() = %q", got)
	}
}

func TestFindDOI(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Published online. doi: 10.1038/nature14539.", "10.1038/nature14539"},
		{"https://doi.org/10.1016/j.artint.2021.103500)", "10.1016/j.artint.2021.103500"},
		{"no identifier here", ""},
		{"10.12/short", ""},
	}
	for _, tt := range tests {
		if got := FindDOI(tt.text); got != tt.want {
			t.Errorf("FindDOI(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestInfoDOI(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"title placeholder", Info{Title: "doi:10.1038/nature14539"}, "10.1038/nature14539"},
		{"subject", Info{Title: "Deep Learning", Subject: "Nature 521, doi:10.1038/nature14539"}, "10.1038/nature14539"},
		{"keywords", Info{Keywords: "learning; 10.1016/j.artint.2021.103500"}, "10.1016/j.artint.2021.103500"},
		{"title wins", Info{Title: "doi:10.1038/nature14539", Subject: "10.1016/j.artint.2021.103500"}, "10.1038/nature14539"},
		{"author ignored", Info{Author: "10.1038/nature14539"}, ""},
		{"none", Info{Title: "Deep Learning"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InfoDOI(tt.info); got != tt.want {
				t.Errorf("InfoDOI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDOIURL(t *testing.T) {
	if got := DOIURL("10.1/xyz"); got != "https://doi.org/10.1/xyz" {
		t.Errorf("DOIURL() = %q", got)
	}
}

func TestReadInfo_MissingFile(t *testing.T) {
	if _, err := ReadInfo(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("ReadInfo() of missing file should fail")
	}
}

func TestOpener_Command(t *testing.T) {
	tests := []struct {
		reader string
		goos   string
		want   string
	}{
		{"", "linux", "xdg-open /p.pdf"},
		{"zathura", "linux", "zathura /p.pdf"},
		{"skim", "darwin", "open -a Skim /p.pdf"},
		{"system", "darwin", "open /p.pdf"},
	}
	for _, tt := range tests {
		cmd, err := NewOpener(tt.reader).Command(tt.goos, "/p.pdf")
		if err != nil {
			t.Fatalf("Command() error = %v", err)
		}
		if got := strings.Join(cmd.Args, " "); got != tt.want {
			t.Errorf("Command(%q, %q) = %q, want %q", tt.reader, tt.goos, got, tt.want)
		}
	}

	if _, err := NewOpener("").Command("plan9", "/p.pdf"); err == nil {
		t.Error("Command() on unsupported platform should fail")
	}
}

func TestOpener_MissingFile(t *testing.T) {
	err := NewOpener("").Open(filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Open() error = %v", err)
	}
}
