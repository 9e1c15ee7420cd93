package scramble

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/cognicore/vrttools/pkg/vrt/stream"
)

// twoTexts has two texts of three two-token sentences each.
const twoTexts = `<corpus>
<text id="1">
<sentence id="1">
a1
a2
</sentence>
<sentence id="2">
b1
b2
</sentence>
<sentence id="3">
c1
c2
</sentence>
</text>
<text id="2">
<sentence id="4">
d1
d2
</sentence>
<sentence id="5">
e1
e2
</sentence>
<sentence id="6">
f1
f2
</sentence>
</text>
</corpus>
`

func run(t *testing.T, s *Scrambler, input string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := s.Process(stream.FromString(input), &buf); err != nil {
		t.Fatalf("Process: %v", err)
	}
	return buf.String()
}

func sortedLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	sort.Strings(lines)
	return lines
}

func TestScrambleIsPermutation(t *testing.T) {
	out := run(t, New(DefaultUnit, DefaultWithin, DefaultSeed), twoTexts)
	if !reflect.DeepEqual(sortedLines(out), sortedLines(twoTexts)) {
		t.Fatalf("output is not a permutation of the input:\n%s", out)
	}
	// text boundaries stay in place
	outLines := strings.SplitAfter(out, "\n")
	inLines := strings.SplitAfter(twoTexts, "\n")
	for _, i := range []int{0, 1, 14, 15, 28, 29} {
		if outLines[i] != inLines[i] {
			t.Errorf("line %d moved: %q != %q", i, outLines[i], inLines[i])
		}
	}
}

func TestScrambleKeepsUnitsWhole(t *testing.T) {
	out := run(t, New(DefaultUnit, DefaultWithin, 7), twoTexts)
	for _, unit := range []string{"a", "b", "c", "d", "e", "f"} {
		block := unit + "1\n" + unit + "2\n</sentence>\n"
		if !strings.Contains(out, block) {
			t.Errorf("unit %s was split:\n%s", unit, out)
		}
	}
	// units of the first text stay in the first text
	first, second, _ := strings.Cut(out, "<text id=\"2\">")
	for _, unit := range []string{"a1", "b1", "c1"} {
		if !strings.Contains(first, unit) || strings.Contains(second, unit) {
			t.Errorf("%s crossed a text boundary", unit)
		}
	}
}

func TestScrambleDeterministic(t *testing.T) {
	a := run(t, New(DefaultUnit, DefaultWithin, 12345), twoTexts)
	b := run(t, New(DefaultUnit, DefaultWithin, 12345), twoTexts)
	if a != b {
		t.Fatalf("same seed gave different output:\n%s\n---\n%s", a, b)
	}
}

func TestScrambleChangesOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("<text>\n")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "<sentence>\nw%d\n</sentence>\n", i)
	}
	b.WriteString("</text>\n")
	in := b.String()

	out := run(t, New(DefaultUnit, DefaultWithin, DefaultSeed), in)
	if out == in {
		t.Error("twenty units came out in input order")
	}
	if !reflect.DeepEqual(sortedLines(out), sortedLines(in)) {
		t.Error("output is not a permutation of the input")
	}
}

func TestScrambleLinesOutsideWithinUntouched(t *testing.T) {
	in := "<?xml version=\"1.0\"?>\n<sentence>\nx\n</sentence>\n<sentence>\ny\n</sentence>\n"
	out := run(t, New(DefaultUnit, DefaultWithin, DefaultSeed), in)
	if out != in {
		t.Errorf("lines outside texts changed:\n%s", out)
	}
}

func TestScrambleLeadingLinesStayFirst(t *testing.T) {
	in := "<text>\n<head>\nTitle\n</head>\n<sentence>\na\n</sentence>\n<sentence>\nb\n</sentence>\n</text>\n"
	out := run(t, New(DefaultUnit, DefaultWithin, DefaultSeed), in)
	if !strings.HasPrefix(out, "<text>\n<head>\nTitle\n</head>\n<sentence>\n") {
		t.Errorf("lines before the first unit moved:\n%s", out)
	}
}

func TestScrambleUnterminatedWithin(t *testing.T) {
	in := "<text>\n<sentence>\na\n</sentence>\n<sentence>\nb\n</sentence>\n"
	out := run(t, New(DefaultUnit, DefaultWithin, DefaultSeed), in)
	if out != in {
		t.Errorf("buffered lines lost or reordered at end of input:\n%s", out)
	}
}

func TestScrambleCustomStructures(t *testing.T) {
	in := "<doc>\n<p>\n1\n</p>\n<p>\n2\n</p>\n</doc>\n<text>\n<p>\n3\n</p>\n</text>\n"
	out := run(t, New("p", "doc", DefaultSeed), in)
	if !reflect.DeepEqual(sortedLines(out), sortedLines(in)) {
		t.Fatal("not a permutation")
	}
	if !strings.HasSuffix(out, "<text>\n<p>\n3\n</p>\n</text>\n") {
		t.Errorf("structure outside doc changed:\n%s", out)
	}
}

// oneText is a text of three two-token sentences.
const oneText = `<text>
<sentence id="1">
a1
a2
</sentence>
<sentence id="2">
b1
b2
</sentence>
<sentence id="3">
c1
c2
</sentence>
</text>
`

func TestSeedFixesOrder(t *testing.T) {
	tests := []struct {
		seed int64
		want []string // sentence ids in output order
	}{
		{DefaultSeed, []string{"1", "3", "2"}},
		{7, []string{"2", "1", "3"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.seed), func(t *testing.T) {
			out := run(t, New(DefaultUnit, DefaultWithin, tt.seed), oneText)
			var got []string
			for _, line := range strings.Split(out, "\n") {
				if strings.HasPrefix(line, `<sentence id="`) {
					got = append(got, strings.TrimSuffix(strings.TrimPrefix(line, `<sentence id="`), `">`))
				}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
			if !strings.HasPrefix(out, "<text>\n") || !strings.HasSuffix(out, "</text>\n") {
				t.Errorf("enclosing markers moved: %q", out)
			}
		})
	}
}
