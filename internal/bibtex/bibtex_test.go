package bibtex

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func deepLearningRecord() *Record {
	r := NewRecord("article")
	r.Key = "Public2019DeepLearning"
	r.Set("title", "Deep Learning")
	r.Set("author", "Public, Jane Q")
	r.Set("year", "2019")
	r.Set("journal", "Nature")
	r.Set("doi", "10.1/xyz")
	return r
}

func TestMarshal_Canonical(t *testing.T) {
	got, err := Marshal(deepLearningRecord())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `@article {Public2019DeepLearning,
    author = {Public, Jane Q},
    doi = {10.1/xyz},
    journal = {Nature},
    title = {Deep Learning},
    year = {2019},
}`
	if got != want {
		t.Errorf("Marshal() =\n%s\nwant:\n%s", got, want)
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("Marshal() output should not end with a newline")
	}
}

func TestMarshal_NoFields(t *testing.T) {
	r := NewRecord("misc")
	r.Key = "FIXME"

	got, err := Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got != "@misc {FIXME,\n}" {
		t.Errorf("Marshal() = %q", got)
	}
}

func TestMarshal_RejectsUnsafeValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"newline", "Deep\nLearning"},
		{"carriage return", "Deep\rLearning"},
		{"unbalanced open", "Deep {Learning"},
		{"unbalanced close", "Deep Learning}"},
		{"close before open", "}Deep{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := deepLearningRecord()
			r.Set("title", tt.value)
			_, err := Marshal(r)
			if !errors.Is(err, ErrUnsafeValue) {
				t.Errorf("Marshal() error = %v, want ErrUnsafeValue", err)
			}
		})
	}
}

func TestMarshal_BalancedBracesAllowed(t *testing.T) {
	r := deepLearningRecord()
	r.Set("title", "Sequencing {DNA} at scale")
	if _, err := Marshal(r); err != nil {
		t.Errorf("Marshal() error = %v", err)
	}
}

func TestSetEmptyRemovesField(t *testing.T) {
	r := deepLearningRecord()
	r.Set("journal", "")
	if _, ok := r.Get("journal"); ok {
		t.Error("Set with empty value should remove the field")
	}
	if r.Has("journal") {
		t.Error("Has(journal) = true after removal")
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Deep Learning", "Deep Learning"},
		{"Deep\n  Learning", "Deep Learning"},
		{"Deep {Learning", "Deep Learning"},
		{"Deep} Learning", "Deep Learning"},
		{"{DNA} repair", "{DNA} repair"},
		{"}{", ""},
	}

	for _, tt := range tests {
		got := Sanitize(tt.in)
		if got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if !SafeValue(got) {
			t.Errorf("Sanitize(%q) = %q is not safe", tt.in, got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	first := deepLearningRecord()
	second := NewRecord("inproceedings")
	second.Key = "Doe2020BraceTitle"
	second.Set("title", "A {GPU} Method, Revisited")
	second.Set("pages", "5--12")

	text, err := MarshalList([]*Record{first, second})
	if err != nil {
		t.Fatalf("MarshalList() error = %v", err)
	}

	records, err := ParseString(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Parse() returned %d records, want 2", len(records))
	}

	for i, want := range []*Record{first, second} {
		got := records[i]
		if got.Type != want.Type || got.Key != want.Key {
			t.Errorf("record %d = %s/%s, want %s/%s", i, got.Type, got.Key, want.Type, want.Key)
		}
		if len(got.Fields) != len(want.Fields) {
			t.Errorf("record %d has %d fields, want %d", i, len(got.Fields), len(want.Fields))
		}
		for name, v := range want.Fields {
			if got.Fields[name] != v {
				t.Errorf("record %d field %s = %q, want %q", i, name, got.Fields[name], v)
			}
		}
	}
}

func TestParse_ToleratesSpacing(t *testing.T) {
	input := `
@article{Smith2020Foo,
  title   =   {Foo},
}

@book {Jones2021Bar,
    year = {2021},
}
`
	records, err := ParseString(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Key != "Smith2020Foo" || records[0].Fields["title"] != "Foo" {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].Type != "book" || records[1].Fields["year"] != "2021" {
		t.Errorf("second record = %+v", records[1])
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"bad header", "@article Smith2020\n}", 1},
		{"field outside entry", "title = {Foo},", 1},
		{"close outside entry", "}", 1},
		{"nested entry", "@article {A,\n@article {B,\n}", 2},
		{"malformed field", "@article {A,\n  title {Foo},\n}", 2},
		{"empty value", "@article {A,\n  title = {},\n}", 2},
		{"unterminated", "@article {A,\n  title = {Foo},", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse() error = %v, want *SyntaxError", err)
			}
			if se.Line != tt.line {
				t.Errorf("SyntaxError.Line = %d, want %d", se.Line, tt.line)
			}
			if !IsSyntaxError(err) {
				t.Error("IsSyntaxError() = false")
			}
		})
	}
}

func TestParseFile_Missing(t *testing.T) {
	records, err := ParseFile(filepath.Join(t.TempDir(), "missing.bib"))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("ParseFile() returned %d records, want 0", len(records))
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.bib")
	text, err := Marshal(deepLearningRecord())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(records) != 1 || records[0].Key != "Public2019DeepLearning" {
		t.Errorf("ParseFile() = %+v", records)
	}
}
