package fieldpath

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "single_name", input: "a", want: "a"},
		{name: "dotted", input: "a.b.c", want: "a.b.c"},
		{name: "indexed", input: "a.b[3].c", want: "a.b[3].c"},
		{name: "unspecified_index", input: "a[]", want: "a[]"},
		{name: "blank_index", input: "a[ ]", want: "a[]"},
		{name: "nested_indexes", input: "a[0][1]", want: "a[0][1]"},
		{name: "leading_index", input: "[2].a", want: "[2].a"},
		{name: "quoted_with_dot", input: "a.`b.c`.d", want: "a.`b.c`.d"},
		{name: "quoted_without_need", input: "`a`.b", want: "`a`.b"},
		{name: "quoted_brackets", input: "`x[1]`", want: "`x[1]`"},
		{name: "escaped_backtick", input: "`a\\`b`", want: "`a\\`b`"},
		{name: "empty_quoted", input: "a.``", want: "a.``"},
		{name: "empty_path", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got := p.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}

			again, err := Parse(p.String())
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", p.String(), err)
			}
			if !again.Equal(p) {
				t.Errorf("Parse(String()) = %v, want %v", again, p)
			}
		})
	}
}

func TestRenderQuotesWhenRequired(t *testing.T) {
	p := New(NewNamed("a.b", false, NewNamed("c`d", false, NewNamed("e\\f", false, nil))))

	want := "`a.b`.`c\\`d`.e\\f"
	if got := p.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	parsed, err := Parse(p.String())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parsed.Equal(p) {
		t.Errorf("Parse(String()) = %v, want %v", parsed, p)
	}

	var names []string
	for seg := range parsed.Segments() {
		names = append(names, seg.Name())
	}
	if !slices.Equal(names, []string{"a.b", "c`d", "e\\f"}) {
		t.Errorf("names = %q", names)
	}
}

func TestEscaped(t *testing.T) {
	p := MustParse("a.b[2].c")
	if got, want := p.Escaped(), "`a`.`b`[2].`c`"; got != want {
		t.Errorf("Escaped() = %q, want %q", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{input: "a..b", wantErr: ErrSyntax},
		{input: "a.", wantErr: ErrSyntax},
		{input: ".a", wantErr: ErrSyntax},
		{input: "a[1", wantErr: ErrSyntax},
		{input: "a[x]", wantErr: ErrSyntax},
		{input: "a]b", wantErr: ErrSyntax},
		{input: "a[0]b", wantErr: ErrSyntax},
		{input: "`abc", wantErr: ErrSyntax},
		{input: "`a`b", wantErr: ErrSyntax},
		{input: "a`b", wantErr: ErrSyntax},
		{input: "a[-1]", wantErr: ErrInvalidArgument},
		{input: "a[-7].b", wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestNewIndexedRejectsNegative(t *testing.T) {
	if _, err := NewIndexed(-1, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NewIndexed(-1) error = %v, want ErrInvalidArgument", err)
	}
	seg, err := NewIndexed(0, nil)
	if err != nil {
		t.Fatalf("NewIndexed(0) error = %v", err)
	}
	if !seg.HasIndex() || seg.Index() != 0 {
		t.Errorf("HasIndex() = %t, Index() = %d", seg.HasIndex(), seg.Index())
	}
	if unspecified := NewAnyIndexed(nil); unspecified.HasIndex() || unspecified.Index() != NoIndex {
		t.Errorf("NewAnyIndexed: HasIndex() = %t, Index() = %d", unspecified.HasIndex(), unspecified.Index())
	}
}

func TestClassification(t *testing.T) {
	root := MustParse("a.b[1]").Root()

	if !root.IsNamed() || root.IsIndexed() {
		t.Errorf("root kind: named=%t indexed=%t", root.IsNamed(), root.IsIndexed())
	}
	if !root.IsMap() || root.IsArray() || root.IsLeaf() {
		t.Errorf("a: map=%t array=%t leaf=%t", root.IsMap(), root.IsArray(), root.IsLeaf())
	}

	b := root.Child()
	if !b.IsArray() || b.IsMap() || b.IsLeaf() {
		t.Errorf("b: map=%t array=%t leaf=%t", b.IsMap(), b.IsArray(), b.IsLeaf())
	}

	idx := b.Child()
	if !idx.IsIndexed() || !idx.IsLeaf() {
		t.Errorf("[1]: indexed=%t leaf=%t", idx.IsIndexed(), idx.IsLeaf())
	}
	if idx.Name() != "" {
		t.Errorf("indexed Name() = %q, want empty", idx.Name())
	}
}

func TestEqualAndHash(t *testing.T) {
	tests := []struct {
		a, b  string
		equal bool
	}{
		{a: "Field.A", b: "field.a", equal: true},
		{a: "a.b[2]", b: "A.B[2]", equal: true},
		{a: "`a`.b", b: "a.b", equal: true},
		{a: "Äpfel.x", b: "äPFEL.X", equal: true},
		{a: "a.b", b: "a.b.c", equal: false},
		{a: "a[1]", b: "a[2]", equal: false},
		{a: "a[]", b: "a[0]", equal: false},
		{a: "a.b", b: "a[0]", equal: false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			if got := a.Equal(b); got != tt.equal {
				t.Errorf("Equal() = %t, want %t", got, tt.equal)
			}
			if got := b.Equal(a); got != tt.equal {
				t.Errorf("reverse Equal() = %t, want %t", got, tt.equal)
			}
			if tt.equal {
				if a.Hash() != b.Hash() {
					t.Errorf("Hash() = %d and %d for equal paths", a.Hash(), b.Hash())
				}
				if a.Compare(b) != 0 {
					t.Errorf("Compare() = %d for equal paths", a.Compare(b))
				}
			}
		})
	}
}

func TestHashIsMemoizedConcurrently(t *testing.T) {
	p := MustParse("x.y[4].z")
	want := MustParse("X.Y[4].Z").Hash()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := p.Hash(); got != want {
				t.Errorf("Hash() = %d, want %d", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{a: "a", b: "a", want: 0},
		{a: "a", b: "B", want: -1},
		{a: "b", b: "A", want: 1},
		{a: "a", b: "a.b", want: -1},
		{a: "a.b", b: "a", want: 1},
		{a: "a[1]", b: "a[2]", want: -1},
		{a: "a[10]", b: "a[9]", want: 1},
		{a: "a[]", b: "a[0]", want: -1},
		{a: "a.b", b: "a[0]", want: 1},
		{a: "[0]", b: "a", want: -1},
		{a: "", b: "a", want: -1},
		{a: "", b: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			if got := a.Compare(b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := b.Compare(a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestCompareIsTotalOrder(t *testing.T) {
	inputs := []string{"", "a", "A.b", "a.c", "a[0]", "a[1]", "a[]", "a[0].b", "b", "[3]", "[]", "a.b.c", "`a.b`"}
	paths := make([]Path, len(inputs))
	for i, in := range inputs {
		paths[i] = MustParse(in)
	}

	for _, p := range paths {
		if p.Compare(p) != 0 {
			t.Errorf("Compare(%v, %v) != 0", p, p)
		}
		for _, q := range paths {
			if sign(p.Compare(q)) != -sign(q.Compare(p)) {
				t.Errorf("antisymmetry violated for %v, %v", p, q)
			}
			for _, r := range paths {
				if p.Compare(q) <= 0 && q.Compare(r) <= 0 && p.Compare(r) > 0 {
					t.Errorf("transitivity violated for %v <= %v <= %v", p, q, r)
				}
			}
		}
	}

	sorted := slices.Clone(paths)
	slices.SortFunc(sorted, Path.Compare)
	if !slices.IsSortedFunc(sorted, Path.Compare) {
		t.Errorf("sorted paths not ordered: %v", sorted)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestContains(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{a: "a", b: "a.b.c", want: true},
		{a: "a.b.c", b: "a", want: true},
		{a: "a", b: "b", want: false},
		{a: "a.b", b: "a.c", want: false},
		{a: "A.b", b: "a.B.c", want: true},
		{a: "a[2]", b: "a[3]", want: true},
		{a: "a[0].x", b: "a[5].y", want: true},
		{a: "[1]", b: "z", want: true},
		{a: "z", b: "[1]", want: true},
		{a: "", b: "a.b", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := MustParse(tt.a).Contains(MustParse(tt.b)); got != tt.want {
				t.Errorf("Contains(%q, %q) = %t, want %t", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestIsAtOrBelowAndAbove(t *testing.T) {
	tests := []struct {
		a, b  string
		below bool
		above bool
	}{
		{a: "a.b.c", b: "a", below: true, above: false},
		{a: "a", b: "a.b.c", below: false, above: true},
		{a: "a.b", b: "A.B", below: true, above: true},
		{a: "a[2]", b: "a[3]", below: false, above: false},
		{a: "a[2].x", b: "a[2]", below: true, above: false},
		{a: "a.b", b: "a.c", below: false, above: false},
		{a: "a", b: "", below: true, above: false},
		{a: "", b: "a", below: false, above: true},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			if got := a.IsAtOrBelow(b); got != tt.below {
				t.Errorf("IsAtOrBelow(%q, %q) = %t, want %t", tt.a, tt.b, got, tt.below)
			}
			if got := a.IsAtOrAbove(b); got != tt.above {
				t.Errorf("IsAtOrAbove(%q, %q) = %t, want %t", tt.a, tt.b, got, tt.above)
			}
		})
	}
}

func TestCloneWithNewChild(t *testing.T) {
	base := MustParse("a.b")
	tail := MustParse("[1].c")

	grafted := New(base.Root().CloneWithNewChild(tail.Root()))
	if got, want := grafted.String(), "a.b[1].c"; got != want {
		t.Fatalf("CloneWithNewChild() = %q, want %q", got, want)
	}
	if base.String() != "a.b" || tail.String() != "[1].c" {
		t.Errorf("inputs modified: %q, %q", base, tail)
	}
	if !grafted.Root().Child().IsArray() {
		t.Errorf("grafted b should classify as array")
	}
	if base.Root().Child().IsArray() {
		t.Errorf("original b should still be a leaf")
	}

	clone := grafted.Root().Clone()
	if clone == grafted.Root() || !clone.Equal(grafted.Root()) {
		t.Errorf("Clone() = %v, want equal distinct chain", clone)
	}
}

func TestPathHelpers(t *testing.T) {
	p := Named("a", "b")
	p = p.Child("c")
	p, err := p.Element(2)
	if err != nil {
		t.Fatalf("Element() error = %v", err)
	}

	if got, want := p.String(), "a.b.c[2]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := p.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}
	if got, want := p.Parent().String(), "a.b.c"; got != want {
		t.Errorf("Parent() = %q, want %q", got, want)
	}
	if got := p.Leaf().Index(); got != 2 {
		t.Errorf("Leaf().Index() = %d, want 2", got)
	}
	if !MustParse("a").Parent().IsEmpty() {
		t.Errorf("Parent() of single segment should be empty")
	}
	if _, err := p.Element(-3); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Element(-3) error = %v", err)
	}

	var decoded Path
	if err := decoded.UnmarshalText([]byte("x.`y.z`")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	text, _ := decoded.MarshalText()
	if string(text) != "x.`y.z`" {
		t.Errorf("MarshalText() = %q", text)
	}
}

func TestQuoteName(t *testing.T) {
	tests := map[string]string{
		"plain": "plain",
		"a.b":   "`a.b`",
		"":      "``",
		"x`y":   "`x\\`y`",
	}
	for in, want := range tests {
		if got := QuoteName(in); got != want {
			t.Errorf("QuoteName(%q) = %q, want %q", in, got, want)
		}
	}
}
