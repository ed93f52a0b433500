package textsearch

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestHighlight(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		keyword string
		want    string
	}{
		{"single match", "risk factors", "risk", "<mark>risk</mark> factors"},
		{"case preserved", "Risk and RISK", "risk", "<mark>Risk</mark> and <mark>RISK</mark>"},
		{"no match", "nothing here", "risk", "nothing here"},
		{"empty keyword", "text", "", "text"},
		{"whitespace keyword", "text", "   ", "text"},
		{"empty text", "", "risk", ""},
		{"adjacent matches", "abab", "ab", "<mark>ab</mark><mark>ab</mark>"},
		{"japanese", "経営リスクとリスク管理", "リスク", "経営<mark>リスク</mark>と<mark>リスク</mark>管理"},
		{"dotted capital i match", "İstanbul", "istanbul", "<mark>İstanbul</mark>"},
		{"length-changing fold before match", "İstanbulのリスク", "リスク", "İstanbulの<mark>リスク</mark>"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Highlight(c.text, c.keyword)
			if got != c.want {
				t.Errorf("Highlight(%q, %q) = %q, want %q", c.text, c.keyword, got, c.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Highlight(%q, %q) produced invalid UTF-8", c.text, c.keyword)
			}
		})
	}
}

func TestTruncateWithinBudget(t *testing.T) {
	p := Truncate("short text", 100)
	if p.Truncated {
		t.Error("text within budget should not be truncated")
	}
	if p.Text != "short text" {
		t.Errorf("text should be unchanged, got %q", p.Text)
	}
	if p.Length != 10 {
		t.Errorf("expected length 10, got %d", p.Length)
	}
}

func TestTruncateOverBudget(t *testing.T) {
	text := strings.Repeat("a", 50)
	p := Truncate(text, 20)
	if !p.Truncated {
		t.Error("expected truncation")
	}
	if len(p.Text) != 20 {
		t.Errorf("expected 20 characters, got %d", len(p.Text))
	}
	if p.Length != 50 {
		t.Errorf("length should report the full text, got %d", p.Length)
	}
}

func TestTruncateRuneSafe(t *testing.T) {
	text := strings.Repeat("あ", 30)
	p := Truncate(text, 10)
	if !p.Truncated {
		t.Error("expected truncation")
	}
	if !utf8.ValidString(p.Text) {
		t.Error("truncation split a rune")
	}
	if utf8.RuneCountInString(p.Text) != 10 {
		t.Errorf("expected 10 runes, got %d", utf8.RuneCountInString(p.Text))
	}
}

func TestTruncateDefaultBudget(t *testing.T) {
	text := strings.Repeat("x", PreviewBudget+5)
	p := Truncate(text, 0)
	if !p.Truncated {
		t.Error("expected default budget to apply")
	}
	if utf8.RuneCountInString(p.Text) != PreviewBudget {
		t.Errorf("expected %d runes, got %d", PreviewBudget, utf8.RuneCountInString(p.Text))
	}
}
