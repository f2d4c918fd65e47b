package politician

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// SlotFamily is a group of numbered overflow columns holding several
// values of the same kind (politician_url, politician_url2, ...).
type SlotFamily int

// Slot families, in the order their columns appear in storage.
const (
	FamilyFacebookURL SlotFamily = iota
	FamilyAlternateName
	FamilyEmail
	FamilyPhone
	FamilyTwitterHandle
	FamilyURL
	numSlotFamilies
)

type slotFamilyDef struct {
	name    string
	columns []string
	clean   func(string) string
	key     func(string) string
}

var slotFamilyDefs = [numSlotFamilies]slotFamilyDef{
	FamilyFacebookURL: {
		name:    "facebook_url",
		columns: []string{"facebook_url", "facebook_url2", "facebook_url3"},
		clean:   strings.TrimSpace,
		key:     urlKey,
	},
	FamilyAlternateName: {
		name:    "alternate_name",
		columns: []string{"google_civic_candidate_name", "google_civic_candidate_name2", "google_civic_candidate_name3"},
		clean:   collapseSpaces,
		key:     func(s string) string { return Fold(collapseSpaces(s)) },
	},
	FamilyEmail: {
		name:    "email",
		columns: []string{"politician_email", "politician_email2", "politician_email3"},
		clean:   strings.TrimSpace,
		key:     func(s string) string { return strings.ToLower(strings.TrimSpace(s)) },
	},
	FamilyPhone: {
		name:    "phone_number",
		columns: []string{"politician_phone_number", "politician_phone_number2", "politician_phone_number3"},
		clean:   strings.TrimSpace,
		key:     phoneKey,
	},
	FamilyTwitterHandle: {
		name: "twitter_handle",
		columns: []string{
			"politician_twitter_handle", "politician_twitter_handle2", "politician_twitter_handle3",
			"politician_twitter_handle4", "politician_twitter_handle5",
		},
		clean: func(s string) string { return strings.TrimPrefix(strings.TrimSpace(s), "@") },
		key:   NormalizeTwitterHandle,
	},
	FamilyURL: {
		name: "url",
		columns: []string{
			"politician_url", "politician_url2", "politician_url3", "politician_url4", "politician_url5",
		},
		clean: strings.TrimSpace,
		key:   urlKey,
	},
}

// SlotFamilies lists every slot family.
func SlotFamilies() []SlotFamily {
	out := make([]SlotFamily, 0, numSlotFamilies)
	for f := range numSlotFamilies {
		out = append(out, f)
	}
	return out
}

// ParseSlotFamily resolves a family by name.
func ParseSlotFamily(name string) (SlotFamily, bool) {
	for f := range numSlotFamilies {
		if slotFamilyDefs[f].name == name {
			return f, true
		}
	}
	return 0, false
}

func (f SlotFamily) valid() bool { return f >= 0 && f < numSlotFamilies }

func (f SlotFamily) String() string {
	if !f.valid() {
		return "slot_family(" + strconv.Itoa(int(f)) + ")"
	}
	return slotFamilyDefs[f].name
}

// Limit is the number of slots in the family.
func (f SlotFamily) Limit() int {
	if !f.valid() {
		return 0
	}
	return len(slotFamilyDefs[f].columns)
}

// Columns returns the storage columns of the family, first slot first.
func (f SlotFamily) Columns() []string {
	if !f.valid() {
		return nil
	}
	return slices.Clone(slotFamilyDefs[f].columns)
}

// Key returns the comparison key of v within the family. Two values with
// the same key are duplicates.
func (f SlotFamily) Key(v string) string {
	if !f.valid() {
		return v
	}
	return slotFamilyDefs[f].key(v)
}

// Slots is a fixed-capacity ordered set of values for one family. Values
// are kept left-aligned and unique by family key.
type Slots struct {
	family SlotFamily
	values []string
}

// NewSlots builds a slot set, keeping the first Limit distinct non-empty values.
func NewSlots(f SlotFamily, values ...string) Slots {
	s := Slots{family: f}
	for _, v := range values {
		s.PushIfRoom(v)
	}
	return s
}

// Family returns the slot family.
func (s *Slots) Family() SlotFamily { return s.family }

// PushIfRoom appends v into the next free slot. It returns false when v is
// empty, already present, or the family is full.
func (s *Slots) PushIfRoom(v string) bool {
	v = slotFamilyDefs[s.family].clean(v)
	if v == "" || s.Contains(v) || s.Full() {
		return false
	}
	s.values = append(s.values, v)
	return true
}

// Contains reports whether a value with the same family key is present.
func (s *Slots) Contains(v string) bool {
	k := s.family.Key(v)
	for _, existing := range s.values {
		if s.family.Key(existing) == k {
			return true
		}
	}
	return false
}

// Full reports whether every slot is occupied.
func (s *Slots) Full() bool { return len(s.values) >= s.family.Limit() }

// Len is the number of occupied slots.
func (s *Slots) Len() int { return len(s.values) }

// At returns the value in slot i (zero-based), or "" when unoccupied.
func (s *Slots) At(i int) string {
	if i < 0 || i >= len(s.values) {
		return ""
	}
	return s.values[i]
}

// Values returns a copy of the occupied slots.
func (s *Slots) Values() []string { return slices.Clone(s.values) }

// MarshalJSON renders the slots as a JSON array.
func (s Slots) MarshalJSON() ([]byte, error) {
	if s.values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.values)
}

// NormalizeTwitterHandle lower-cases a handle and strips a leading @.
func NormalizeTwitterHandle(h string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "@"))
}

func urlKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, "/")
}

func phoneKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return b.String()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
