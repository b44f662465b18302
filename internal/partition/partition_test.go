package partition

import "testing"

func TestKeyer(t *testing.T) {
	keyer := NewKeyer("Jazz", nil)

	t.Run("For normalizes case", func(t *testing.T) {
		want := Key{Kind: Catalog, Name: "jazz"}
		for _, genre := range []string{"Jazz", "jazz", "JAZZ"} {
			if got := keyer.For(genre); got != want {
				t.Errorf("For(%q) = %v, want %v", genre, got, want)
			}
		}
	})

	t.Run("For substitutes default genre", func(t *testing.T) {
		if got := keyer.For(""); got != (Key{Kind: Catalog, Name: "jazz"}) {
			t.Errorf("For(\"\") = %v, want catalog:jazz", got)
		}
	})

	t.Run("For keeps genres apart", func(t *testing.T) {
		if keyer.For("jazz") == keyer.For("rock") {
			t.Error("jazz and rock should map to different partitions")
		}
	})

	t.Run("Fingerprint uses configured scheme", func(t *testing.T) {
		delimited := NewKeyer("Jazz", DelimitedFingerprint)
		if delimited.Fingerprint("AB", "C", "") == delimited.Fingerprint("A", "BC", "") {
			t.Error("delimited keyer should separate field boundaries")
		}
		if keyer.Fingerprint("AB", "C", "") != keyer.Fingerprint("A", "BC", "") {
			t.Error("default keyer should hash the plain concatenation")
		}
	})
}

func TestFingerprint(t *testing.T) {
	tt := []struct {
		name   string
		artist string
		title  string
		album  string
		want   string
	}{
		{
			name:   "known song",
			artist: "Miles Davis",
			title:  "So What",
			album:  "Kind of Blue",
			want:   "b31ddabf947782d2f8a218543637b2242de7339ede5bf88c4f36831b07e4d6dc",
		},
		{
			name: "empty fields",
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			first := Fingerprint(tc.artist, tc.title, tc.album)
			second := Fingerprint(tc.artist, tc.title, tc.album)

			if first != second {
				t.Errorf("Fingerprint() not deterministic: %s != %s", first, second)
			}
			if first != tc.want {
				t.Errorf("Fingerprint() = %s, want %s", first, tc.want)
			}
		})
	}

	t.Run("case sensitive", func(t *testing.T) {
		if Fingerprint("miles davis", "so what", "kind of blue") == Fingerprint("Miles Davis", "So What", "Kind of Blue") {
			t.Error("fingerprint should be case sensitive")
		}
	})

	t.Run("delimited is deterministic and 64 hex chars", func(t *testing.T) {
		a := DelimitedFingerprint("Miles Davis", "So What", "Kind of Blue")
		b := DelimitedFingerprint("Miles Davis", "So What", "Kind of Blue")
		if a != b {
			t.Errorf("DelimitedFingerprint() not deterministic")
		}
		if len(a) != 64 {
			t.Errorf("expected 64 hex chars, got %d", len(a))
		}
	})
}

func TestFingerprintByName(t *testing.T) {
	for _, name := range []string{"", "concat", "delimited"} {
		if _, err := FingerprintByName(name); err != nil {
			t.Errorf("FingerprintByName(%q) unexpected error: %v", name, err)
		}
	}

	if _, err := FingerprintByName("md5"); err == nil {
		t.Error("expected error for unknown scheme")
	}
}

func TestOwnedPartitions(t *testing.T) {
	t.Run("anonymous users have no cart or history", func(t *testing.T) {
		if _, ok := CartOf(""); ok {
			t.Error("CartOf(\"\") should not be addressable")
		}
		if _, ok := HistoryOf(""); ok {
			t.Error("HistoryOf(\"\") should not be addressable")
		}
	})

	t.Run("cart and history are disjoint", func(t *testing.T) {
		cart, _ := CartOf("u1")
		history, _ := HistoryOf("u1")
		if cart == history {
			t.Error("cart and history keys must differ")
		}
		if !cart.Owned() || !history.Owned() {
			t.Error("cart and history keys should be owned")
		}
	})
}

func TestParse(t *testing.T) {
	tt := []struct {
		in      string
		want    Key
		wantErr bool
	}{
		{in: "catalog:jazz", want: Key{Kind: Catalog, Name: "jazz"}},
		{in: "cart:u1", want: Key{Kind: Cart, Name: "u1"}},
		{in: "history:u1", want: Key{Kind: History, Name: "u1"}},
		{in: "catalog:", want: Key{Kind: Catalog, Name: ""}},
		{in: "cart:", wantErr: true},
		{in: "wishlist:u1", wantErr: true},
		{in: "jazz", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
			if !tc.wantErr && got.String() != tc.in {
				t.Errorf("String() = %q, want %q", got.String(), tc.in)
			}
		})
	}
}

func TestKeyText(t *testing.T) {
	tt := []struct {
		key  Key
		text string
	}{
		{key: Key{Kind: Cart, Name: "u1"}, text: "cart:u1"},
		{key: Key{Kind: Catalog, Name: "jazz"}, text: "catalog:jazz"},
		{key: Key{}, text: ""},
	}

	for _, tc := range tt {
		t.Run(tc.text, func(t *testing.T) {
			text, err := tc.key.MarshalText()
			if err != nil || string(text) != tc.text {
				t.Fatalf("MarshalText() = %q, %v; want %q", text, err, tc.text)
			}

			var got Key
			if err := got.UnmarshalText(text); err != nil || got != tc.key {
				t.Errorf("UnmarshalText(%q) = %v, %v; want %v", text, got, err, tc.key)
			}
		})
	}

	var k Key
	if err := k.UnmarshalText([]byte("jazz")); err == nil {
		t.Error("expected malformed text to be rejected")
	}
}
