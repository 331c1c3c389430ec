package source

import "testing"

func TestForFile(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"notes.txt", "*source.TextParser", false},
		{"README.MD", "*source.MarkdownParser", false},
		{"guide.markdown", "*source.MarkdownParser", false},
		{"page.htm", "*source.HTMLParser", false},
		{"report.PDF", "*source.PDFParser", false},
		{"memo.docx", "*source.DOCXParser", false},
		{"table.csv", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ForFile(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := typeName(p); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if !IsSupportedExtension(tt.name) {
				t.Errorf("expected %s to be supported", tt.name)
			}
		})
	}
}

func typeName(p Parser) string {
	switch p.(type) {
	case *TextParser:
		return "*source.TextParser"
	case *MarkdownParser:
		return "*source.MarkdownParser"
	case *HTMLParser:
		return "*source.HTMLParser"
	case *PDFParser:
		return "*source.PDFParser"
	case *DOCXParser:
		return "*source.DOCXParser"
	}
	return "unknown"
}
