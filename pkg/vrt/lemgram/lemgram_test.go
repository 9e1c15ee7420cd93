package lemgram

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/cognicore/vrttools/pkg/vrt/stream"
)

func newAdder() *Adder {
	return &Adder{
		PosMap:     map[string]string{"N": "nn", "V": "vb", "A": "jj"},
		LemmaField: DefaultLemmaField,
		PosField:   DefaultPosField,
	}
}

func TestSplitSet(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"|", nil},
		{"|a|b|", []string{"a", "b"}},
		{"a", []string{"a"}},
		{"", []string{""}},
		{"||", []string{""}},
	}
	for _, tt := range tests {
		if got := SplitSet(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitSet(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLemgrams(t *testing.T) {
	a := newAdder()
	tests := []struct {
		name   string
		fields []string
		want   []string
	}{
		{"single", []string{"kissat", "kissa", "N"}, []string{"kissa..nn.1"}},
		{"pairwise", []string{"w", "|a|b|", "|N|V|"}, []string{"a..nn.1", "b..vb.1"}},
		{"cross product", []string{"w", "|a|b|", "N"}, []string{"a..nn.1", "b..nn.1"}},
		{"unmapped pos", []string{"w", "a", "Q"}, []string{"a..xx.1"}},
		{"duplicates removed", []string{"w", "|a|a|", "|N|N|"}, []string{"a..nn.1"}},
		{"empty lemma falls back to form", []string{"juoksi", "", "V"}, []string{"juoksi..vb.1"}},
		{"empty lemma set falls back to form", []string{"juoksi", "|", "V"}, []string{"juoksi..vb.1"}},
		{"empty pos set", []string{"w", "a", "|"}, nil},
		{"short row", []string{"w"}, []string{"w..xx.1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Lemgrams(tt.fields); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSkipEmptyLemmas(t *testing.T) {
	a := newAdder()
	a.SkipEmptyLemmas = true
	got := a.Lemgrams([]string{"juoksi", "", "V"})
	if !reflect.DeepEqual(got, []string{"..vb.1"}) {
		t.Errorf("got %q", got)
	}
}

func TestProcess(t *testing.T) {
	in := "<sentence>\nkissa\tkissa\tN\n\nw\ta\t|\n</sentence>\n"
	var out bytes.Buffer
	if err := newAdder().Process(stream.FromString(in), &out); err != nil {
		t.Fatal(err)
	}
	want := "<sentence>\nkissa\tkissa\tN\t|kissa..nn.1|\nw\ta\t|\t|\n</sentence>\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}
