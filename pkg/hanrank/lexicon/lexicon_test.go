package lexicon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cognicore/hanrank/pkg/hanrank/classify"
	"github.com/cognicore/hanrank/pkg/hanrank/internalerr"
)

func TestDefaultLexicon(t *testing.T) {
	lex := Default()

	stats := lex.Stats()
	if stats.Stopwords == 0 || stats.ProperNouns == 0 || stats.CompoundPatterns == 0 || stats.PersonPatterns == 0 {
		t.Fatalf("Default lexicon has empty tables: %+v", stats)
	}

	for _, w := range []string{"속보", "통과", "가결", "단독"} {
		if !lex.Stopwords().IsStop(w) {
			t.Errorf("Expected %q to be a stop word", w)
		}
	}
	if lex.Stopwords().IsStop("국회") {
		t.Error("국회 should not be a stop word")
	}
}

func TestDefaultCompoundPatterns(t *testing.T) {
	lex := Default()

	tests := []struct {
		token string
		want  bool
	}{
		{"삼성전자", true},
		{"대통령실", true},
		{"특검법", true},
		{"경찰청장", true},
		{"의사협회", true},
		{"전국광역시도의사협회장", true},
		{"한국은행", false},
		{"반응", false},
		// Anchored: the suffix must end the token.
		{"법원장실무", false},
	}

	for _, tt := range tests {
		got := false
		for _, re := range lex.compound {
			if re.MatchString(tt.token) {
				got = true
				break
			}
		}
		if got != tt.want {
			t.Errorf("compound(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestDefaultPersonPatterns(t *testing.T) {
	lex := Default()

	tests := []struct {
		text string
		want string
	}{
		{"김철수 장관 사퇴", "김철수"},
		{"이영희 전 의원 출마", "이영희"},
		{"홍길동 신임 위원장 취임", "홍길동"},
		{"대통령실 반응", ""},
	}

	for _, tt := range tests {
		got := ""
		for _, re := range lex.person {
			if m := re.FindStringSubmatch(tt.text); m != nil {
				got = m[re.SubexpIndex("name")]
				break
			}
		}
		if got != tt.want {
			t.Errorf("person(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestRulesOrder(t *testing.T) {
	rules := Default().Rules()
	want := []classify.Category{classify.Compound, classify.Organization, classify.Person}
	if len(rules) != len(want) {
		t.Fatalf("Expected %d rules, got %d", len(want), len(rules))
	}
	for i, r := range rules {
		if r.Category() != want[i] {
			t.Errorf("rule %d category = %v, want %v", i, r.Category(), want[i])
		}
	}
}

func TestParseMacros(t *testing.T) {
	lex, err := Parse([]byte(`
vocab:
  ROLES: [장관, 차관]
stopwords: [속보, 속보, ""]
proper_nouns: [국민의힘, 국민의힘]
compound_patterns:
  - "[가-힣]+${ROLES}"
person_patterns:
  - "([가-힣]{2,4})\\s*${ROLES}"
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if lex.Stopwords().Len() != 1 {
		t.Errorf("Expected 1 stop word, got %d", lex.Stopwords().Len())
	}
	if got := lex.ProperNouns(); len(got) != 1 || got[0] != "국민의힘" {
		t.Errorf("ProperNouns() = %v", got)
	}
	if !lex.compound[0].MatchString("국방부장관") {
		t.Error("Expanded compound pattern should match 국방부장관")
	}
	if lex.compound[0].MatchString("장관") {
		t.Error("Compound pattern needs a stem before the suffix")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "stopwords: [", "parse lexicon"},
		{"unknown macro", "compound_patterns: [\"[가-힣]+${NOPE}\"]", "unknown vocab"},
		{"bad regexp", "compound_patterns: [\"[가-힣\"]", "compound_patterns[0]"},
		{"empty pattern", "compound_patterns: [\"\"]", "empty pattern"},
		{"person without group", "person_patterns: [\"[가-힣]+ 장관\"]", "no capture group"},
		{"empty vocab", "vocab:\n  ROLES: []\n", "vocab ROLES is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	if err := os.WriteFile(path, DefaultYAML(), 0o644); err != nil {
		t.Fatal(err)
	}

	lex, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if lex.Stats() != Default().Stats() {
		t.Errorf("Loaded stats %+v differ from default %+v", lex.Stats(), Default().Stats())
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	if err := os.WriteFile(path, []byte("stopwords: [속보]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Lexicon, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(l *Lexicon) { reloaded <- l })
	}()

	// Give the watcher time to register.
	time.Sleep(200 * time.Millisecond)

	// A broken file is skipped.
	if err := os.WriteFile(path, []byte("stopwords: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	select {
	case <-reloaded:
		t.Fatal("Broken lexicon should not be delivered")
	default:
	}

	if err := os.WriteFile(path, []byte("stopwords: [속보, 단독]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case lex := <-reloaded:
		if lex.Stopwords().Len() != 2 {
			t.Errorf("Expected 2 stop words after reload, got %d", lex.Stopwords().Len())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
