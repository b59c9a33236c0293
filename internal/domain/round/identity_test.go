package round

import "testing"

func TestTagParts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in        string
		wantName  string
		wantWorld string
		wantTag   string
	}{
		{"Alice@Balmung", "Alice", "Balmung", "Alice@Balmung"},
		{"Alice@Balmung [2]", "Alice", "Balmung", "Alice@Balmung"},
		{"  Alice@Balmung [17]  ", "Alice", "Balmung", "Alice@Balmung"},
		{"Alice", "Alice", "unknown", "Alice"},
		{"Alice@", "Alice", "unknown", "Alice@"},
		{"A@B@Crystal", "A@B", "Crystal", "A@B@Crystal"},
		{"", "", "unknown", ""},
	}

	for _, tc := range cases {
		name, world, tag := TagParts(tc.in)
		if name != tc.wantName || world != tc.wantWorld || tag != tc.wantTag {
			t.Fatalf("TagParts(%q) = (%q, %q, %q), want (%q, %q, %q)",
				tc.in, name, world, tag, tc.wantName, tc.wantWorld, tc.wantTag)
		}
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Balmung", "balmung"},
		{"  Mixed Case Name  ", "mixed_case_name"},
		{"O'Brien's  World", "obriens_world"},
		{"__already__slugged__", "already_slugged"},
		{"!!!", ""},
		{"a  b\tc", "a_b_c"},
	}

	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPlayerID(t *testing.T) {
	t.Parallel()

	if got := PlayerID("Alice Smith@Crystal Sea [3]"); got != "crystal_sea:alice_smith" {
		t.Fatalf("unexpected player id %q", got)
	}
	if got := PlayerID("Bob"); got != "unknown:bob" {
		t.Fatalf("unexpected player id %q", got)
	}
}

func TestComboKeyIsOrderSensitive(t *testing.T) {
	t.Parallel()

	a := ComboKey([]int{10, 2})
	b := ComboKey([]int{2, 10})
	if a != "10-2" || b != "2-10" {
		t.Fatalf("unexpected combo keys %q, %q", a, b)
	}
	if a == b {
		t.Fatal("combo keys must preserve card order")
	}
	if got := ComboKey(nil); got != "" {
		t.Fatalf("empty hand combo key = %q, want empty", got)
	}
}

func TestOutcomeOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		result int
		want   Buckets
	}{
		{1, Buckets{Wins: 1}},
		{2, Buckets{Pushes: 1}},
		{0, Buckets{Losses: 1}},
		{3, Buckets{Losses: 1}},
		{6, Buckets{Losses: 1}},
		{4, Buckets{Other: 1}},
		{-1, Buckets{Other: 1}},
		{99, Buckets{Other: 1}},
	}

	for _, tc := range cases {
		if got := OutcomeOf(tc.result); got != tc.want {
			t.Fatalf("OutcomeOf(%d) = %+v, want %+v", tc.result, got, tc.want)
		}
	}
}
