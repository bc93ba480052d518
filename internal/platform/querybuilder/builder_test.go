package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("t.id", "t.name").
		From("tournaments t").
		Join("JOIN matches m ON m.tournament_id = t.id").
		Where(Eq("t.external_id", "ext-1"), IsNull("m.ended_at")).
		OrderBy("t.id").
		Limit(10).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT t.id, t.name FROM tournaments t JOIN matches m ON m.tournament_id = t.id WHERE t.external_id = $1 AND m.ended_at IS NULL ORDER BY t.id LIMIT 10 FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "ext-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderExprAndAny(t *testing.T) {
	query, args, err := Select("id").
		From("tournaments").
		Where(
			Expr("(external_id = ? OR ? = ANY(merged_external_ids))", "a", "a"),
			Any("id", []int64{1, 2}),
			NotIn("name", nil),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM tournaments WHERE (external_id = $1 OR $2 = ANY(merged_external_ids)) AND id = ANY($3) AND 1=1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("players").
		Columns("name", "club").
		Values("Anna", "KC Mitte").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO players (name, club) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Anna" || args[1] != "KC Mitte" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderRejectsShortRow(t *testing.T) {
	_, _, err := InsertInto("players").Columns("name", "club").Values("Anna").ToSQL()
	if err == nil {
		t.Fatalf("expected mismatched row error")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("players").
		Set("club", "KC Nord").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(7))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE players SET club = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "KC Nord" || args[1] != int64(7) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("matches").
		Where(Eq("tournament_id", int64(3)), In("external_id", []any{"m1", "m2"})).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM matches WHERE tournament_id = $1 AND external_id IN ($2, $3)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilderRequiresCondition(t *testing.T) {
	if _, _, err := DeleteFrom("matches").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional delete")
	}
}

func TestInsertModelSkipsOmitInsert(t *testing.T) {
	type row struct {
		ID   int64  `db:"id,omitinsert"`
		Name string `db:"name"`
		Club string `db:"club"`
		skip string
	}

	query, args, err := InsertModel("players", row{ID: 9, Name: "Anna", Club: "KC"}, "RETURNING id")
	if err != nil {
		t.Fatalf("build insert model: %v", err)
	}
	wantQuery := "INSERT INTO players (name, club) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if !reflect.DeepEqual(args, []any{"Anna", "KC"}) {
		t.Fatalf("unexpected args: %+v", args)
	}

	cols := Columns(row{}, "p")
	if !reflect.DeepEqual(cols, []string{"p.id", "p.name", "p.club"}) {
		t.Fatalf("unexpected columns: %+v", cols)
	}
}
