package politician

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/wevote/dedupe-cli/internal/db"
)

// ErrNotFound is returned by writes that address a missing politician.
var ErrNotFound = eris.New("politician: not found")

// execer is the statement surface both drivers are adapted to. Queries are
// written with `?` placeholders.
type execer interface {
	exec(ctx context.Context, query string, args ...any) (int64, error)
	query(ctx context.Context, query string, args []any, fn func(scan func(dest ...any) error) error) error
}

// queries implements Tx on top of an execer. Stores and transactions both
// embed it.
type queries struct {
	c execer
	d dialect
}

var _ Tx = (*queries)(nil)

func (q *queries) one(ctx context.Context, query string, args ...any) (*Record, error) {
	var out *Record
	err := q.c.query(ctx, query, args, func(scan func(dest ...any) error) error {
		r, err := scanRecord(scan)
		if err != nil {
			return err
		}
		if out == nil {
			out = r
		}
		return nil
	})
	return out, err
}

func (q *queries) many(ctx context.Context, query string, args ...any) ([]Record, error) {
	var out []Record
	err := q.c.query(ctx, query, args, func(scan func(dest ...any) error) error {
		r, err := scanRecord(scan)
		if err != nil {
			return err
		}
		out = append(out, *r)
		return nil
	})
	return out, err
}

func (q *queries) column(ctx context.Context, query string, args ...any) ([]string, error) {
	var out []string
	err := q.c.query(ctx, query, args, func(scan func(dest ...any) error) error {
		var s string
		if err := scan(&s); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

func (q *queries) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := q.c.query(ctx, query, args, func(scan func(dest ...any) error) error {
		return scan(&n)
	})
	return n, err
}

func (q *queries) selectFrom() string {
	return "SELECT " + q.d.selectList() + " FROM " + politicianTable
}

func (q *queries) GetByWeVoteID(ctx context.Context, weVoteID string) (*Record, error) {
	r, err := q.one(ctx, q.selectFrom()+" WHERE we_vote_id = ?", weVoteID)
	return r, eris.Wrapf(err, "%s: get politician %s", q.d.name, weVoteID)
}

func (q *queries) GetForUpdate(ctx context.Context, weVoteID string) (*Record, error) {
	r, err := q.one(ctx, q.selectFrom()+" WHERE we_vote_id = ?"+q.d.forUpdate, weVoteID)
	return r, eris.Wrapf(err, "%s: lock politician %s", q.d.name, weVoteID)
}

func (q *queries) ListByState(ctx context.Context, stateCode string, limit int) ([]Record, error) {
	query := q.selectFrom()
	var args []any
	if stateCode != "" {
		query += " WHERE UPPER(state_code) = ?"
		args = append(args, strings.ToUpper(stateCode))
	}
	query += " ORDER BY id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	out, err := q.many(ctx, query, args...)
	return out, eris.Wrapf(err, "%s: list politicians in %q", q.d.name, stateCode)
}

// nameColumns are the four name fields searched by the finder.
func nameColumns() []string {
	return append([]string{"politician_name"}, FamilyAlternateName.Columns()...)
}

func (q *queries) FindByTwitterHandles(ctx context.Context, handles []string) ([]Record, error) {
	var keys []string
	for _, h := range handles {
		if k := NormalizeTwitterHandle(h); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}
	var w where
	var ors []string
	for _, col := range FamilyTwitterHandle.Columns() {
		ors = append(ors, "LOWER("+col+") IN ("+db.Placeholders(len(keys))+")")
		for _, k := range keys {
			w.args = append(w.args, k)
		}
	}
	w.add("(" + strings.Join(ors, " OR ") + ")")
	out, err := q.many(ctx, q.selectFrom()+w.String()+" ORDER BY id", w.args...)
	return out, eris.Wrap(err, q.d.name+": find by twitter handle")
}

func (q *queries) FindByExactName(ctx context.Context, names []string, stateCode string) ([]Record, error) {
	var keys []string
	for _, n := range names {
		if n = strings.ToLower(collapseSpaces(n)); n != "" {
			keys = append(keys, n)
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}
	var w where
	var ors []string
	for _, col := range nameColumns() {
		ors = append(ors, "LOWER("+col+") IN ("+db.Placeholders(len(keys))+")")
		for _, k := range keys {
			w.args = append(w.args, k)
		}
	}
	w.add("(" + strings.Join(ors, " OR ") + ")")
	w.state(stateCode)
	out, err := q.many(ctx, q.selectFrom()+w.String()+" ORDER BY id", w.args...)
	return out, eris.Wrap(err, q.d.name+": find by exact name")
}

func (q *queries) FindByNameParts(ctx context.Context, first, last, stateCode string) ([]Record, error) {
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	if first == "" || last == "" {
		return nil, nil
	}
	var w where
	var ors []string
	for _, col := range nameColumns() {
		ors = append(ors, "(LOWER("+col+") LIKE ? ESCAPE '\\' AND LOWER("+col+") LIKE ? ESCAPE '\\')")
		w.args = append(w.args, likeContains(first), likeContains(last))
	}
	w.add("(" + strings.Join(ors, " OR ") + ")")
	w.state(stateCode)
	out, err := q.many(ctx, q.selectFrom()+w.String()+" ORDER BY id", w.args...)
	return out, eris.Wrap(err, q.d.name+": find by name parts")
}

func (q *queries) NotDuplicatePartners(ctx context.Context, weVoteID string) ([]string, error) {
	out, err := q.column(ctx, `SELECT politician2_we_vote_id FROM politicians_are_not_duplicates WHERE politician1_we_vote_id = ?
UNION SELECT politician1_we_vote_id FROM politicians_are_not_duplicates WHERE politician2_we_vote_id = ?`,
		weVoteID, weVoteID)
	return out, eris.Wrapf(err, "%s: not-duplicate partners of %s", q.d.name, weVoteID)
}

func (q *queries) PairedWeVoteIDs(ctx context.Context) ([]string, error) {
	out, err := q.column(ctx, `SELECT politician1_we_vote_id FROM politicians_are_not_duplicates
UNION SELECT politician2_we_vote_id FROM politicians_are_not_duplicates
UNION SELECT politician1_we_vote_id FROM politician_possible_duplicates
UNION SELECT politician2_we_vote_id FROM politician_possible_duplicates WHERE politician2_we_vote_id <> ''`)
	return out, eris.Wrap(err, q.d.name+": paired politicians")
}

func (q *queries) ListDuplicatePairs(ctx context.Context, stateCode string) ([]DuplicatePair, error) {
	query := "SELECT id, politician1_we_vote_id, politician2_we_vote_id, state_code FROM politician_possible_duplicates"
	var args []any
	if stateCode != "" {
		query += " WHERE UPPER(state_code) = ?"
		args = append(args, strings.ToUpper(stateCode))
	}
	query += " ORDER BY id"

	var out []DuplicatePair
	err := q.c.query(ctx, query, args, func(scan func(dest ...any) error) error {
		var p DuplicatePair
		if err := scan(&p.ID, &p.PoliticianWeVoteID, &p.PoliticianWeVoteID2, &p.StateCode); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, eris.Wrapf(err, "%s: list duplicate pairs in %q", q.d.name, stateCode)
}

func (q *queries) SEOPathTaken(ctx context.Context, path string) (bool, error) {
	n, err := q.count(ctx, `SELECT (SELECT COUNT(*) FROM politicians WHERE seo_friendly_path = ?)
	+ (SELECT COUNT(*) FROM politician_seo_friendly_paths WHERE final_pathname_string = ?)`, path, path)
	if err != nil {
		return false, eris.Wrapf(err, "%s: seo path taken %q", q.d.name, path)
	}
	return n > 0, nil
}

func (q *queries) CountReferences(ctx context.Context, kind RefKind, weVoteID string) (int64, error) {
	t := kind.Table()
	if t == "" {
		return 0, eris.Errorf("%s: unknown reference kind %q", q.d.name, kind)
	}
	n, err := q.count(ctx, "SELECT COUNT(*) FROM "+t+" WHERE politician_we_vote_id = ?", weVoteID)
	return n, eris.Wrapf(err, "%s: count %s references", q.d.name, kind)
}

func (q *queries) Create(ctx context.Context, r *Record) error {
	args, err := recordArgs(r)
	if err != nil {
		return eris.Wrapf(err, "%s: create politician %s", q.d.name, r.WeVoteID)
	}
	cols := writeColumns()
	query := "INSERT INTO " + politicianTable + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		db.Placeholders(len(cols)) + ") RETURNING id"
	n, err := q.count(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "%s: create politician %s", q.d.name, r.WeVoteID)
	}
	r.ID = n
	return nil
}

func (q *queries) Update(ctx context.Context, r *Record) error {
	args, err := recordArgs(r)
	if err != nil {
		return eris.Wrapf(err, "%s: update politician %s", q.d.name, r.WeVoteID)
	}
	cols := writeColumns()[1:]
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	args = append(args[1:], r.WeVoteID)
	n, err := q.c.exec(ctx, "UPDATE "+politicianTable+" SET "+strings.Join(sets, ", ")+" WHERE we_vote_id = ?", args...)
	if err != nil {
		return eris.Wrapf(err, "%s: update politician %s", q.d.name, r.WeVoteID)
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s: update politician %s", q.d.name, r.WeVoteID)
	}
	return nil
}

func (q *queries) Delete(ctx context.Context, weVoteID string) error {
	n, err := q.c.exec(ctx, "DELETE FROM "+politicianTable+" WHERE we_vote_id = ?", weVoteID)
	if err != nil {
		return eris.Wrapf(err, "%s: delete politician %s", q.d.name, weVoteID)
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s: delete politician %s", q.d.name, weVoteID)
	}
	return nil
}

func (q *queries) MoveReferences(ctx context.Context, kind RefKind, from, to string) (int64, error) {
	t := kind.Table()
	if t == "" {
		return 0, eris.Errorf("%s: unknown reference kind %q", q.d.name, kind)
	}
	n, err := q.c.exec(ctx, "UPDATE "+t+" SET politician_we_vote_id = ? WHERE politician_we_vote_id = ?", to, from)
	return n, eris.Wrapf(err, "%s: move %s references %s -> %s", q.d.name, kind, from, to)
}

// AddReference records a dependent row of kind pointing at a politician.
func (q *queries) AddReference(ctx context.Context, kind RefKind, refWeVoteID, politicianWeVoteID string) error {
	if kind == RefSEOPath {
		return q.ArchiveSEOPath(ctx, politicianWeVoteID, refWeVoteID)
	}
	t := kind.Table()
	if t == "" {
		return eris.Errorf("%s: unknown reference kind %q", q.d.name, kind)
	}
	_, err := q.c.exec(ctx, "INSERT INTO "+t+" (we_vote_id, politician_we_vote_id) VALUES (?, ?)", refWeVoteID, politicianWeVoteID)
	return eris.Wrapf(err, "%s: add %s reference", q.d.name, kind)
}

func (q *queries) ArchiveSEOPath(ctx context.Context, weVoteID, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	_, err := q.c.exec(ctx, `INSERT INTO politician_seo_friendly_paths (politician_we_vote_id, final_pathname_string)
VALUES (?, ?) ON CONFLICT (final_pathname_string) DO NOTHING`, weVoteID, path)
	return eris.Wrapf(err, "%s: archive seo path %q", q.d.name, path)
}

func (q *queries) CreateDuplicatePair(ctx context.Context, p *DuplicatePair) error {
	id, err := q.count(ctx, `INSERT INTO politician_possible_duplicates (politician1_we_vote_id, politician2_we_vote_id, state_code)
VALUES (?, ?, ?) RETURNING id`, p.PoliticianWeVoteID, p.PoliticianWeVoteID2, p.StateCode)
	if err != nil {
		return eris.Wrapf(err, "%s: create duplicate pair %s/%s", q.d.name, p.PoliticianWeVoteID, p.PoliticianWeVoteID2)
	}
	p.ID = id
	return nil
}

func (q *queries) DeleteDuplicatePair(ctx context.Context, a, b string) (int64, error) {
	n, err := q.c.exec(ctx, `DELETE FROM politician_possible_duplicates
WHERE (politician1_we_vote_id = ? AND politician2_we_vote_id = ?) OR (politician1_we_vote_id = ? AND politician2_we_vote_id = ?)`,
		a, b, b, a)
	return n, eris.Wrapf(err, "%s: delete duplicate pair %s/%s", q.d.name, a, b)
}

func (q *queries) DeleteDuplicatePairsFor(ctx context.Context, weVoteID string) (int64, error) {
	n, err := q.c.exec(ctx, `DELETE FROM politician_possible_duplicates
WHERE politician1_we_vote_id = ? OR politician2_we_vote_id = ?`, weVoteID, weVoteID)
	return n, eris.Wrapf(err, "%s: delete duplicate pairs for %s", q.d.name, weVoteID)
}

func (q *queries) CreateNotDuplicates(ctx context.Context, a, b string) error {
	_, err := q.c.exec(ctx, `INSERT INTO politicians_are_not_duplicates (politician1_we_vote_id, politician2_we_vote_id)
SELECT ?, ? WHERE NOT EXISTS (
	SELECT 1 FROM politicians_are_not_duplicates
	WHERE (politician1_we_vote_id = ? AND politician2_we_vote_id = ?) OR (politician1_we_vote_id = ? AND politician2_we_vote_id = ?)
)`, a, b, a, b, b, a)
	return eris.Wrapf(err, "%s: create not-duplicates %s/%s", q.d.name, a, b)
}

// where accumulates AND-ed conditions and their arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) state(stateCode string) {
	if stateCode != "" {
		w.add("UPPER(state_code) = ?", strings.ToUpper(stateCode))
	}
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeContains(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
