package hanrank

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/hanrank/pkg/hanrank/cluster"
	"github.com/cognicore/hanrank/pkg/hanrank/internalerr"
	"github.com/cognicore/hanrank/pkg/hanrank/lexicon"
	"github.com/cognicore/hanrank/pkg/hanrank/tokenize"
)

var batch = []string{
	"[속보] 한국은행 기준금리 동결",
	"특검법 국회 통과",
	"국회 본회의 특검법 가결",
	"대통령실 반응",
	"검찰 압수수색 착수",
	"검찰청 검찰 소환 통보",
	"검찰청 압수수색 검찰 반발",
	"김철수 장관 사퇴 논란 확산",
	"삼성전자 주가 급등 반도체 호황",
	"서울 아파트값 상승세 지속",
	"【단독】 정부 부동산 대책 발표",
	"2025년 예산안 국회 제출",
}

func newExtractor(t *testing.T, opts Options) *Extractor {
	t.Helper()
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

func keywordNames(kws []Keyword) []string {
	out := make([]string, len(kws))
	for i, k := range kws {
		out[i] = k.Keyword
	}
	return out
}

func TestExtractScenarioParliament(t *testing.T) {
	e := newExtractor(t, Options{Limit: 5, KeywordsPerTitle: 2})

	got := e.Extract([]string{"특검법 국회 통과", "국회 본회의 특검법 가결", "대통령실 반응"})

	counts := make(map[string]int)
	for _, k := range got {
		counts[k.Keyword] = k.ArticleCount
	}
	assert.Equal(t, 2, counts["특검법"])
	assert.Equal(t, 2, counts["국회"])
	assert.Equal(t, 1, counts["대통령실"])
	assert.NotContains(t, counts, "통과")
	assert.NotContains(t, counts, "가결")
	assert.Equal(t, []string{"국회", "특검법", "대통령실", "반응", "본회의"}, keywordNames(got))
}

func TestExtractScenarioBracketTag(t *testing.T) {
	e := newExtractor(t, Options{})

	got := e.Extract([]string{"[속보] 한국은행 기준금리 동결"})

	names := keywordNames(got)
	assert.NotContains(t, names, "속보")
	assert.Equal(t, []string{"기준금리", "한국은행"}, names)
}

func TestExtractScenarioProsecution(t *testing.T) {
	e := newExtractor(t, Options{})

	got := e.Extract([]string{
		"검찰 압수수색 착수",
		"검찰청 검찰 소환 통보",
		"검찰청 압수수색 검찰 반발",
	})

	require.NotEmpty(t, got)
	assert.Equal(t, "검찰청", got[0].Keyword)
	assert.Equal(t, 3, got[0].ArticleCount)
	assert.Equal(t, []string{"검찰", "검찰청"}, got[0].Variants)
	assert.NotContains(t, keywordNames(got), "검찰")
}

func TestExtractPersonName(t *testing.T) {
	e := newExtractor(t, Options{})

	got := e.Extract([]string{"김철수 장관 사퇴 논란 확산"})

	names := keywordNames(got)
	assert.Contains(t, names, "김철수")
	assert.NotContains(t, names, "장관")
}

func TestExtractEmpty(t *testing.T) {
	e := newExtractor(t, Options{})

	got := e.Extract(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	res := e.ExtractWithStats([]string{})
	assert.Empty(t, res.Keywords)
	assert.Equal(t, Stats{}, res.Stats)
}

func TestExtractDeterministic(t *testing.T) {
	e := newExtractor(t, Options{})

	first := e.Extract(batch)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Extract(batch))
	}
}

func TestExtractLimit(t *testing.T) {
	for _, limit := range []int{1, 3, 5} {
		e := newExtractor(t, Options{Limit: limit})
		assert.LessOrEqual(t, len(e.Extract(batch)), limit)
	}
}

func TestExtractProperties(t *testing.T) {
	e := newExtractor(t, Options{Limit: 20, KeywordsPerTitle: 4})
	stop := e.Lexicon().Stopwords()

	got := e.Extract(batch)
	require.NotEmpty(t, got)

	seen := make(map[string]bool)
	for _, k := range got {
		assert.False(t, stop.IsStop(k.Keyword), "stop word %q in output", k.Keyword)
		assert.Contains(t, k.Variants, k.Keyword)
		for _, v := range k.Variants {
			assert.False(t, stop.IsStop(v), "stop word %q in variants", v)
			assert.NotContains(t, v, "■")
			assert.False(t, seen[v], "variant %q appears in two entries", v)
			seen[v] = true
		}

		n := 0
		for _, title := range batch {
			for _, v := range k.Variants {
				if strings.Contains(title, v) {
					n++
					break
				}
			}
		}
		assert.Equal(t, n, k.ArticleCount, "article count for %q", k.Keyword)
	}

	for i := range got {
		for j := range got {
			if i == j {
				continue
			}
			assert.NotContains(t, got[i].Keyword, got[j].Keyword)
		}
	}

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		ordered := prev.ArticleCount > cur.ArticleCount ||
			(prev.ArticleCount == cur.ArticleCount && prev.Keyword < cur.Keyword)
		assert.True(t, ordered, "%v before %v", prev, cur)
	}
}

func TestExtractStripNumeric(t *testing.T) {
	titles := []string{"2025년 예산안 국회 제출"}

	plain := newExtractor(t, Options{KeywordsPerTitle: 4})
	assert.Contains(t, keywordNames(plain.Extract(titles)), "2025년")

	stripped := newExtractor(t, Options{KeywordsPerTitle: 4, StripNumeric: true})
	assert.NotContains(t, keywordNames(stripped.Extract(titles)), "2025년")
}

// fakeTokenizer splits on spaces, fails on titles containing fail and panics
// on titles containing boom.
type fakeTokenizer struct {
	fail, boom string
	nouns      func(w string) bool
	pos        map[string][]tokenize.Tagged
}

func (f fakeTokenizer) Nouns(text string) ([]string, error) {
	if f.fail != "" && strings.Contains(text, f.fail) {
		return nil, errors.New("analyzer crashed")
	}
	if f.boom != "" && strings.Contains(text, f.boom) {
		panic("analyzer panicked")
	}
	var out []string
	for _, w := range strings.Fields(text) {
		if f.nouns == nil || f.nouns(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f fakeTokenizer) POS(text string) ([]tokenize.Tagged, error) {
	if tagged, ok := f.pos[text]; ok {
		return tagged, nil
	}
	return []tokenize.Tagged{{Text: text, Tag: "Verb"}}, nil
}

func TestExtractSkipsFailingTitles(t *testing.T) {
	e := newExtractor(t, Options{Tokenizer: fakeTokenizer{fail: "오류", boom: "폭발"}})

	res := e.ExtractWithStats([]string{
		"국회 예산안 심사",
		"오류 국회 예산안",
		"폭발 국회 예산안",
		"국회 예산안 처리",
	})

	assert.Equal(t, 4, res.Stats.Titles)
	assert.Equal(t, 2, res.Stats.Processed)
	assert.Equal(t, 2, res.Stats.Skipped)
	require.NotEmpty(t, res.Keywords)
	for _, k := range res.Keywords {
		if k.Keyword == "국회" {
			assert.Equal(t, 2, k.ArticleCount)
		}
	}
}

func TestExtractSupplementPOS(t *testing.T) {
	tok := fakeTokenizer{
		nouns: func(w string) bool { return len([]rune(w)) != 3 },
		pos: map[string][]tokenize.Tagged{
			"비대위": {{Text: "비대위", Tag: tokenize.TagNoun}},
			"출범해": {{Text: "출범", Tag: tokenize.TagNoun}, {Text: "해", Tag: "Verb"}},
		},
	}
	titles := []string{"여당 비대위 출범해"}

	off := newExtractor(t, Options{Tokenizer: tok, KeywordsPerTitle: 4})
	assert.Equal(t, []string{"여당"}, keywordNames(off.Extract(titles)))

	on := newExtractor(t, Options{Tokenizer: tok, KeywordsPerTitle: 4, SupplementPOS: true})
	assert.Equal(t, []string{"비대위", "여당"}, keywordNames(on.Extract(titles)))
}

func TestExtractCustomLexicon(t *testing.T) {
	lex, err := lexicon.Parse([]byte("stopwords: [국회]\n"))
	require.NoError(t, err)

	e := newExtractor(t, Options{Lexicon: lex})
	got := e.Extract([]string{"특검법 국회 통과"})

	assert.Equal(t, []string{"통과", "특검법"}, keywordNames(got))
}

func TestNewRejectsBadOptions(t *testing.T) {
	for _, opts := range []Options{
		{Limit: -1},
		{KeywordsPerTitle: -2},
		{MergeRatio: 1.5},
		{PromoteMin: -1},
	} {
		_, err := New(opts)
		assert.True(t, errors.Is(err, internalerr.ErrInvalidConfig), "%+v", opts)
	}
}

func TestNewDefaults(t *testing.T) {
	e := newExtractor(t, Options{})
	opts := e.Options()
	assert.Equal(t, DefaultLimit, opts.Limit)
	assert.Equal(t, DefaultKeywordsPerTitle, opts.KeywordsPerTitle)
	assert.NotNil(t, opts.Lexicon)
	assert.NotNil(t, opts.Tokenizer)
}

func TestTitleTokens(t *testing.T) {
	e := newExtractor(t, Options{Tokenizer: fakeTokenizer{fail: "오류"}})

	got := e.TitleTokens([]string{"속보 국회 예산안", "오류 발생"})

	require.Len(t, got, 2)
	assert.Equal(t, []string{"속보", "국회", "예산안"}, got[0])
	assert.Nil(t, got[1])
}

func TestExtractKeepsNounsEndingInParticles(t *testing.T) {
	e := newExtractor(t, Options{Limit: 20, KeywordsPerTitle: 4})

	got := keywordNames(e.Extract([]string{
		"김정은 미사일 발사",
		"전공의 복귀 거부",
		"경상남도 산불 확산",
		"민주주의 위기 경고",
	}))

	for _, want := range []string{"김정은", "전공의", "경상남도", "민주주의"} {
		assert.Contains(t, got, want)
	}
	for _, broken := range []string{"김정", "전공", "경상남", "민주주"} {
		assert.NotContains(t, got, broken)
	}
}

func TestExtractStripsParticleWhenStemInBatch(t *testing.T) {
	e := newExtractor(t, Options{})

	got := e.Extract([]string{"검찰은 침묵", "검찰 압수수색 착수"})

	counts := make(map[string]int)
	for _, k := range got {
		counts[k.Keyword] = k.ArticleCount
	}
	assert.Equal(t, 2, counts["검찰"])
	assert.NotContains(t, counts, "검찰은")
}

func TestNoCooccurrenceFloor(t *testing.T) {
	titles := []string{"하마스 가자지구 공습", "하마스 가자지구 휴전"}

	floored := newExtractor(t, Options{})
	assert.Equal(t, cluster.DefaultMinCooccurrence, floored.Options().MinCooccurrence)
	assert.ElementsMatch(t, []string{"가자지구", "하마스"}, keywordNames(floored.Extract(titles)))

	plain := newExtractor(t, Options{MinCooccurrence: cluster.NoCooccurrenceFloor})
	assert.Equal(t, cluster.NoCooccurrenceFloor, plain.Options().MinCooccurrence)

	got := plain.Extract(titles)
	require.Len(t, got, 1)
	assert.Equal(t, "가자지구", got[0].Keyword)
	assert.Equal(t, 2, got[0].ArticleCount)
	assert.Equal(t, []string{"가자지구", "하마스"}, got[0].Variants)
}
