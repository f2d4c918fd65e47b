package politician

import (
	"context"
	"io"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Fixture is a YAML document of politicians and their dependent rows, used
// to seed a store for local work and tests.
type Fixture struct {
	Politicians   []FixtureRecord    `yaml:"politicians"`
	References    []FixtureReference `yaml:"references"`
	NotDuplicates [][2]string        `yaml:"not_duplicates"`
}

// FixtureRecord describes one politician. Attributes are keyed by column
// name, slots by family name.
type FixtureRecord struct {
	WeVoteID   string              `yaml:"we_vote_id"`
	Attributes map[string]string   `yaml:"attributes"`
	Slots      map[string][]string `yaml:"slots"`
}

// FixtureReference is one dependent row pointing at a politician.
type FixtureReference struct {
	Kind               RefKind `yaml:"kind"`
	WeVoteID           string  `yaml:"we_vote_id"`
	PoliticianWeVoteID string  `yaml:"politician_we_vote_id"`
}

// FixtureStats counts the rows written by LoadFixture.
type FixtureStats struct {
	Politicians   int
	References    int
	NotDuplicates int
}

// ParseFixture decodes a fixture document.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !eris.Is(err, io.EOF) {
		return nil, eris.Wrap(err, "politician: decode fixture")
	}
	return &f, nil
}

// Record converts the fixture entry into a Record.
func (fr FixtureRecord) Record() (*Record, error) {
	if fr.WeVoteID == "" {
		return nil, eris.New("politician: fixture record without we_vote_id")
	}
	r := &Record{WeVoteID: fr.WeVoteID}

	names := make([]string, 0, len(fr.Attributes))
	for name := range fr.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a, err := ParseAttribute(name)
		if err != nil {
			return nil, eris.Wrapf(err, "politician: fixture %s", fr.WeVoteID)
		}
		v, err := ParseValue(a.Kind(), fr.Attributes[name])
		if err != nil {
			return nil, eris.Wrapf(err, "politician: fixture %s %s", fr.WeVoteID, name)
		}
		if err := r.Set(a, v); err != nil {
			return nil, err
		}
	}

	for name, values := range fr.Slots {
		f, ok := ParseSlotFamily(name)
		if !ok {
			return nil, eris.Errorf("politician: fixture %s: unknown slot family %q", fr.WeVoteID, name)
		}
		s := r.Slots(f)
		for _, v := range values {
			s.PushIfRoom(v)
		}
	}
	return r, nil
}

// LoadFixture writes every politician, reference and not-duplicate pair in
// f within one transaction.
func LoadFixture(ctx context.Context, s Store, f *Fixture) (FixtureStats, error) {
	var stats FixtureStats
	records := make([]*Record, 0, len(f.Politicians))
	for _, fr := range f.Politicians {
		r, err := fr.Record()
		if err != nil {
			return stats, err
		}
		records = append(records, r)
	}

	err := s.WithTx(ctx, func(tx Tx) error {
		for _, r := range records {
			if err := tx.Create(ctx, r); err != nil {
				return err
			}
			stats.Politicians++
		}
		for _, ref := range f.References {
			if err := tx.AddReference(ctx, ref.Kind, ref.WeVoteID, ref.PoliticianWeVoteID); err != nil {
				return err
			}
			stats.References++
		}
		for _, pair := range f.NotDuplicates {
			if err := tx.CreateNotDuplicates(ctx, pair[0], pair[1]); err != nil {
				return err
			}
			stats.NotDuplicates++
		}
		return nil
	})
	if err != nil {
		return FixtureStats{}, eris.Wrap(err, "politician: load fixture")
	}
	return stats, nil
}
