package partition

import (
	"fmt"
	"strings"
)

// Kind names a partition family.
type Kind string

const (
	Catalog Kind = "catalog"
	Cart    Kind = "cart"
	History Kind = "history"
)

// Valid reports whether k is one of the known partition families.
func (k Kind) Valid() bool {
	switch k {
	case Catalog, Cart, History:
		return true
	default:
		return false
	}
}

// Key identifies a single partition: a family plus the genre or user id that scopes it.
type Key struct {
	Kind Kind
	Name string
}

// String renders the key as "kind:name".
func (k Key) String() string {
	return string(k.Kind) + ":" + k.Name
}

// IsZero reports whether the key was never assigned.
func (k Key) IsZero() bool {
	return k.Kind == "" && k.Name == ""
}

// MarshalText renders the key with [Key.String]. The zero key renders as empty text.
func (k Key) MarshalText() ([]byte, error) {
	if k.IsZero() {
		return nil, nil
	}
	return []byte(k.String()), nil
}

// UnmarshalText parses text with [Parse]. Empty text is the zero key.
func (k *Key) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*k = Key{}
		return nil
	}
	key, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = key
	return nil
}

// Owned reports whether the key belongs to a per-user family (cart or history).
func (k Key) Owned() bool {
	return k.Kind == Cart || k.Kind == History
}

// Parse reverses [Key.String].
func Parse(s string) (Key, error) {
	kind, name, ok := strings.Cut(s, ":")
	if !ok {
		return Key{}, fmt.Errorf("malformed partition key %q", s)
	}

	key := Key{Kind: Kind(kind), Name: name}
	if !key.Kind.Valid() {
		return Key{}, fmt.Errorf("unknown partition kind %q", kind)
	}
	if key.Owned() && name == "" {
		return Key{}, fmt.Errorf("partition %q requires a user id", kind)
	}

	return key, nil
}

// CartOf returns the cart partition for userID. ok is false for anonymous users.
func CartOf(userID string) (Key, bool) {
	if userID == "" {
		return Key{}, false
	}
	return Key{Kind: Cart, Name: userID}, true
}

// HistoryOf returns the purchase history partition for userID. ok is false for anonymous users.
func HistoryOf(userID string) (Key, bool) {
	if userID == "" {
		return Key{}, false
	}
	return Key{Kind: History, Name: userID}, true
}

// Keyer maps genre names to catalog partitions and computes song fingerprints.
type Keyer struct {
	defaultGenre string
	fingerprint  FingerprintFunc
}

// NewKeyer creates a [Keyer] that substitutes defaultGenre for empty genre names.
//
// A nil fingerprint function selects [Fingerprint].
func NewKeyer(defaultGenre string, fn FingerprintFunc) *Keyer {
	if fn == nil {
		fn = Fingerprint
	}
	return &Keyer{defaultGenre: defaultGenre, fingerprint: fn}
}

// DefaultGenre returns the genre used when none is given.
func (k *Keyer) DefaultGenre() string {
	return k.defaultGenre
}

// For returns the catalog partition for genre.
func (k *Keyer) For(genre string) Key {
	if genre == "" {
		genre = k.defaultGenre
	}
	return Key{Kind: Catalog, Name: strings.ToLower(genre)}
}

// Fingerprint computes the uid of a song from its descriptive fields.
func (k *Keyer) Fingerprint(artistName, title, albumName string) string {
	return k.fingerprint(artistName, title, albumName)
}
