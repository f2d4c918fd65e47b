package politician

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const politicianTable = "politicians"

// dialect captures the few places where PostgreSQL and SQLite disagree.
type dialect struct {
	name       string
	idColumn   string
	boolColumn string
	intColumn  string
	dateColumn string
	dateSelect func(col string) string
	forUpdate  string
}

var postgresDialect = dialect{
	name:       "postgres",
	idColumn:   "id BIGSERIAL PRIMARY KEY",
	boolColumn: "BOOLEAN NOT NULL DEFAULT FALSE",
	intColumn:  "BIGINT NOT NULL DEFAULT 0",
	dateColumn: "DATE",
	dateSelect: func(col string) string { return "to_char(" + col + ", 'YYYY-MM-DD') AS " + col },
	forUpdate:  " FOR UPDATE",
}

// SQLite keeps dates as ISO text so the driver hands them back untouched.
// Row locking comes from immediate transactions instead of FOR UPDATE.
var sqliteDialect = dialect{
	name:       "sqlite",
	idColumn:   "id INTEGER PRIMARY KEY AUTOINCREMENT",
	boolColumn: "BOOLEAN NOT NULL DEFAULT 0",
	intColumn:  "INTEGER NOT NULL DEFAULT 0",
	dateColumn: "TEXT",
	dateSelect: func(col string) string { return col },
}

// slotColumns lists every overflow column in family order.
func slotColumns() []string {
	var cols []string
	for _, f := range SlotFamilies() {
		cols = append(cols, f.Columns()...)
	}
	return cols
}

// writeColumns lists every politician column except the surrogate id.
func writeColumns() []string {
	cols := []string{"we_vote_id"}
	for _, a := range Attributes() {
		cols = append(cols, a.String())
	}
	return append(cols, slotColumns()...)
}

func (d dialect) selectList() string {
	cols := []string{"id", "we_vote_id"}
	for _, a := range Attributes() {
		if a.Kind() == KindDate {
			cols = append(cols, d.dateSelect(a.String()))
			continue
		}
		cols = append(cols, a.String())
	}
	cols = append(cols, slotColumns()...)
	return strings.Join(cols, ", ")
}

func (d dialect) schema() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS " + politicianTable + " (\n")
	b.WriteString("\t" + d.idColumn + ",\n")
	b.WriteString("\twe_vote_id TEXT NOT NULL UNIQUE")
	for _, a := range Attributes() {
		b.WriteString(",\n\t" + a.String() + " ")
		switch a.Kind() {
		case KindBool:
			b.WriteString(d.boolColumn)
		case KindInt:
			b.WriteString(d.intColumn)
		case KindDate:
			b.WriteString(d.dateColumn)
		default:
			b.WriteString("TEXT")
			if a.Unique() {
				b.WriteString(" UNIQUE")
			}
		}
	}
	for _, col := range slotColumns() {
		b.WriteString(",\n\t" + col + " TEXT")
	}
	b.WriteString("\n);\n\n")

	b.WriteString(`CREATE INDEX IF NOT EXISTS idx_politicians_state_code ON politicians(state_code);
CREATE INDEX IF NOT EXISTS idx_politicians_last_name ON politicians(last_name);

CREATE TABLE IF NOT EXISTS politician_possible_duplicates (
	` + d.idColumn + `,
	politician1_we_vote_id TEXT NOT NULL,
	politician2_we_vote_id TEXT NOT NULL DEFAULT '',
	state_code             TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_possible_duplicates_p1 ON politician_possible_duplicates(politician1_we_vote_id);
CREATE INDEX IF NOT EXISTS idx_possible_duplicates_p2 ON politician_possible_duplicates(politician2_we_vote_id);
CREATE INDEX IF NOT EXISTS idx_possible_duplicates_state ON politician_possible_duplicates(state_code);

CREATE TABLE IF NOT EXISTS politicians_are_not_duplicates (
	` + d.idColumn + `,
	politician1_we_vote_id TEXT NOT NULL,
	politician2_we_vote_id TEXT NOT NULL,
	UNIQUE (politician1_we_vote_id, politician2_we_vote_id)
);

CREATE TABLE IF NOT EXISTS politician_seo_friendly_paths (
	` + d.idColumn + `,
	politician_we_vote_id TEXT NOT NULL,
	final_pathname_string TEXT NOT NULL UNIQUE
);
`)
	for _, k := range RefKinds() {
		if k == RefSEOPath {
			continue
		}
		t := k.Table()
		b.WriteString("\nCREATE TABLE IF NOT EXISTS " + t + " (\n\t" + d.idColumn +
			",\n\twe_vote_id TEXT NOT NULL DEFAULT '',\n\tpolitician_we_vote_id TEXT NOT NULL\n);\n")
		b.WriteString("CREATE INDEX IF NOT EXISTS idx_" + t + "_politician ON " + t + "(politician_we_vote_id);\n")
	}
	return b.String()
}

// recordArgs returns the values of writeColumns for r. Empty strings are
// stored as NULL so unique columns admit any number of blanks.
func recordArgs(r *Record) ([]any, error) {
	args := []any{r.WeVoteID}
	for _, a := range Attributes() {
		v, err := r.Get(a)
		if err != nil {
			return nil, err
		}
		switch a.Kind() {
		case KindBool:
			args = append(args, v.Bool())
		case KindInt:
			args = append(args, v.Int())
		case KindDate:
			if d := v.Date(); d != nil {
				args = append(args, d.Format(time.DateOnly))
			} else {
				args = append(args, nil)
			}
		default:
			args = append(args, nullString(v.Str()))
		}
	}
	for _, f := range SlotFamilies() {
		s := r.Slots(f)
		for i := range f.Limit() {
			args = append(args, nullString(s.At(i)))
		}
	}
	return args, nil
}

// scanRecord reads one row produced by dialect.selectList.
func scanRecord(scan func(dest ...any) error) (*Record, error) {
	r := &Record{}
	dests := []any{&r.ID, &r.WeVoteID}
	var fill []func() error

	for _, a := range Attributes() {
		switch a.Kind() {
		case KindBool:
			var p *bool
			dests = append(dests, &p)
			fill = append(fill, func() error {
				if p == nil {
					return nil
				}
				return r.Set(a, BoolValue(*p))
			})
		case KindInt:
			var p *int64
			dests = append(dests, &p)
			fill = append(fill, func() error {
				if p == nil {
					return nil
				}
				return r.Set(a, IntValue(*p))
			})
		case KindDate:
			var p *string
			dests = append(dests, &p)
			fill = append(fill, func() error {
				if p == nil || *p == "" {
					return nil
				}
				t, err := time.Parse(time.DateOnly, *p)
				if err != nil {
					return eris.Wrapf(err, "politician: parse %s", a)
				}
				return r.Set(a, DateValue(&t))
			})
		default:
			var p *string
			dests = append(dests, &p)
			fill = append(fill, func() error {
				if p == nil {
					return nil
				}
				return r.Set(a, StringValue(*p))
			})
		}
	}
	for _, f := range SlotFamilies() {
		for range f.Limit() {
			var p *string
			dests = append(dests, &p)
			fill = append(fill, func() error {
				if p != nil {
					r.Slots(f).PushIfRoom(*p)
				}
				return nil
			})
		}
	}

	if err := scan(dests...); err != nil {
		return nil, err
	}
	for _, fn := range fill {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
