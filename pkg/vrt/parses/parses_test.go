package parses

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/vrttools/pkg/vrt/store"
	"github.com/cognicore/vrttools/pkg/vrt/store/memstore"
	"github.com/cognicore/vrttools/pkg/vrt/store/sqlite"
	"github.com/cognicore/vrttools/pkg/vrt/stream"
)

type warnings []string

func (w *warnings) Warnf(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

// ext builds an external token row: index, form, -, lemma, -, pos, -,
// morph, -, head, -, deprel.
func ext(index, form, lemma string) []string {
	return []string{index, form, "_", lemma, "_", "N", "_", "Case=Nom", "_", "0", "_", "root"}
}

func merge(t *testing.T, m *Merger, input string, parsed []store.Sentence) string {
	t.Helper()
	var out bytes.Buffer
	if err := m.Merge("d/f.vrt", stream.FromString(input), parsed, &out); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	return out.String()
}

func TestMergeAlignedSentences(t *testing.T) {
	var w warnings
	m := NewMerger(memstore.New(), Options{}, &w)
	input := "<text>\n" +
		"<sentence id=\"1\">\n" +
		"Kissa\tx\n" +
		"istuu\ty\n" +
		"</sentence>\n" +
		"<sentence id=\"2\">\n" +
		"Koira\tz\n" +
		"</sentence>\n" +
		"</text>\n"
	parsed := []store.Sentence{
		{Tokens: [][]string{ext("1", "Kissa", "kissa"), ext("2", "istuu", "istua")}, Status: "ok"},
		{Tokens: [][]string{ext("1", "Koira", "koira")}, Status: "fail"},
	}

	got := merge(t, m, input, parsed)
	want := "<text>\n" +
		"<sentence local_id=\"1\" id=\"0\" parse_state=\"ok\">\n" +
		"Kissa\tkissa\tN\tCase=Nom\t0\troot\t1\tx\n" +
		"istuu\tistua\tN\tCase=Nom\t0\troot\t2\ty\n" +
		"</sentence>\n" +
		"<sentence local_id=\"2\" id=\"1\" parse_state=\"fail\">\n" +
		"Koira\tkoira\tN\tCase=Nom\t0\troot\t1\tz\n" +
		"</sentence>\n" +
		"</text>\n"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
	if len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}
	if m.Sentences() != 2 {
		t.Errorf("Sentences = %d, want 2", m.Sentences())
	}
}

func TestMergeGlobalCounterSpansDocuments(t *testing.T) {
	var w warnings
	m := NewMerger(memstore.New(), Options{}, &w)
	parsed := []store.Sentence{{Tokens: [][]string{ext("1", "a", "a")}, Status: "ok"}}

	merge(t, m, "<sentence>\na\n</sentence>\n", parsed)
	got := merge(t, m, "<sentence>\na\n</sentence>\n", parsed)
	if !strings.HasPrefix(got, `<sentence id="1" parse_state="ok">`+"\n") {
		t.Errorf("second document starts %q", got)
	}
}

func TestMergeFormMismatchWarnsOnce(t *testing.T) {
	var w warnings
	m := NewMerger(memstore.New(), Options{}, &w)
	input := "<sentence>\nKissa\nistuu\n</sentence>\n"
	parsed := []store.Sentence{
		{Tokens: [][]string{ext("1", "Kissa", "kissa"), ext("2", "istui", "istua")}, Status: "ok"},
	}

	got := merge(t, m, input, parsed)
	if len(w) != 1 {
		t.Fatalf("warnings = %v, want exactly one", w)
	}
	if !strings.Contains(w[0], `"istuu" != "istui"`) || !strings.Contains(w[0], "sentence 1") {
		t.Errorf("warning %q", w[0])
	}
	if n := strings.Count(got, "\n"); n != 4 {
		t.Errorf("row count changed: %d lines in %q", n, got)
	}
	if !strings.Contains(got, "istui\tistua\t") {
		t.Errorf("external values not used: %q", got)
	}
}

func TestMergeEmptyTokenPassesThrough(t *testing.T) {
	var w warnings
	m := NewMerger(memstore.New(), Options{}, &w)
	input := "<sentence>\n\nb\n</sentence>\n"
	parsed := []store.Sentence{
		{Tokens: [][]string{ext("1", "x", "x"), ext("2", "b", "b")}, Status: "ok"},
	}

	got := merge(t, m, input, parsed)
	want := "<sentence id=\"0\" parse_state=\"ok\">\n" +
		"\n" +
		"b\tb\tN\tCase=Nom\t0\troot\t2\n" +
		"</sentence>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}
}

func TestMergeLemmaWithoutCompoundBoundary(t *testing.T) {
	var w warnings
	m := NewMerger(memstore.New(), Options{LemmaWithoutCompoundBoundary: true}, &w)
	parsed := []store.Sentence{
		{Tokens: [][]string{ext("1", "kotikissa", "koti|kissa")}, Status: "ok"},
	}

	got := merge(t, m, "<sentence>\nkotikissa\n</sentence>\n", parsed)
	if !strings.Contains(got, "kotikissa\tkotikissa\tkoti|kissa\tN\t") {
		t.Errorf("got %q", got)
	}
}

func TestMergeKeepsNestedStructures(t *testing.T) {
	var w warnings
	m := NewMerger(memstore.New(), Options{}, &w)
	input := "<sentence>\n<ne type=\"PER\">\nMatti\n</ne>\nnukkuu\n</sentence>\n"
	parsed := []store.Sentence{
		{Tokens: [][]string{ext("1", "Matti", "Matti"), ext("2", "nukkuu", "nukkua")}, Status: "ok"},
	}

	got := merge(t, m, input, parsed)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 6 || lines[1] != `<ne type="PER">` || lines[3] != "</ne>" {
		t.Errorf("got %q", got)
	}
	if !strings.HasPrefix(lines[4], "nukkuu\tnukkua") {
		t.Errorf("second token %q", lines[4])
	}
}

func TestMergeMissingSentence(t *testing.T) {
	var w warnings
	m := NewMerger(memstore.New(), Options{}, &w)
	input := "<sentence id=\"9\">\na\n</sentence>\n"

	got := merge(t, m, input, nil)
	if got != input {
		t.Errorf("unparsed sentence changed: %q", got)
	}
	if len(w) != 1 || !strings.Contains(w[0], "no parse") {
		t.Errorf("warnings = %v", w)
	}
}

func TestMergeTokenCountMismatch(t *testing.T) {
	var w warnings
	m := NewMerger(memstore.New(), Options{}, &w)
	parsed := []store.Sentence{{Tokens: [][]string{ext("1", "a", "a")}, Status: "ok"}}

	got := merge(t, m, "<sentence>\na\nb\n</sentence>\n", parsed)
	if !strings.Contains(got, "\nb\n") {
		t.Errorf("surplus token not kept: %q", got)
	}
	if len(w) != 1 || !strings.Contains(w[0], "2 != 1") {
		t.Errorf("warnings = %v", w)
	}
}

func TestDocKey(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"corpus/1999/a.vrt", "1999/a.vrt"},
		{"1999/a.vrt", "1999/a.vrt"},
		{"a.vrt", "a.vrt"},
		{"./a.vrt", "./a.vrt"},
		{"../a.vrt", "../a.vrt"},
		{"/a.vrt", "a.vrt"},
		{"corpus//1999/a.vrt", "1999/a.vrt"},
	}
	for _, tt := range tests {
		if got := DocKey(tt.path); got != tt.want {
			t.Errorf("DocKey(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	m := NewMerger(memstore.New(), Options{OutputDir: "out"}, nil)
	if got, want := m.OutputPath("in/1999/a.vrt"), filepath.Join("out", "1999", "a.vrt"); got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}

func TestMergeFileWithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	dbPath := filepath.Join(dir, "parses.db")
	b, err := sqlite.CreateSQLite(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	err = b.AddDocument(ctx, store.Document{Key: "1999/a.vrt", Sentences: []store.Sentence{
		{Tokens: [][]string{ext("1", "Hei", "hei")}, Status: "ok"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	b.Close()

	in := filepath.Join(dir, "in", "1999", "a.vrt")
	if err := os.MkdirAll(filepath.Dir(in), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(in, []byte("<text>\n<sentence id=\"1\">\nHei\n</sentence>\n</text>\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	var w warnings
	m := NewMerger(st, Options{OutputDir: filepath.Join(dir, "out")}, &w)
	if err := m.MergeFile(ctx, in); err != nil {
		t.Fatalf("MergeFile: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "out", "1999", "a.vrt"))
	if err != nil {
		t.Fatal(err)
	}
	want := "<text>\n" +
		"<sentence local_id=\"1\" id=\"0\" parse_state=\"ok\">\n" +
		"Hei\thei\tN\tCase=Nom\t0\troot\t1\n" +
		"</sentence>\n" +
		"</text>\n"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}
}
