package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("player_id", "fixture_id", "score").
		From("draft_picks").
		Where(Eq("room_code", "ROOM1"), Eq("gameweek", 3), Expr("fixture_id <> ? AND score <> ?", int64(101), "0-0")).
		OrderBy("created_at").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT player_id, fixture_id, score FROM draft_picks WHERE room_code = $1 AND gameweek = $2 AND fixture_id <> $3 AND score <> $4 ORDER BY created_at LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "ROOM1" || args[2] != int64(101) || args[3] != "0-0" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectRequiresColumnsAndTable(t *testing.T) {
	if _, _, err := Select().From("draft_picks").ToSQL(); err == nil {
		t.Fatalf("expected error without columns")
	}
	if _, _, err := Select("player_id").ToSQL(); err == nil {
		t.Fatalf("expected error without table")
	}
}

func TestInsertModelsUpsert(t *testing.T) {
	type row struct {
		RoomCode string `db:"room_code"`
		PlayerID string `db:"player_id"`
		Points   int    `db:"points"`
		ignored  string
	}

	b, err := InsertModels("draft_scores", []row{
		{RoomCode: "ROOM1", PlayerID: "a", Points: 4},
		{RoomCode: "ROOM1", PlayerID: "b", Points: 1},
	})
	if err != nil {
		t.Fatalf("insert models: %v", err)
	}
	query, args, err := b.OnConflictUpdate("room_code", "player_id").ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO draft_scores (room_code, player_id, points) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (room_code, player_id) DO UPDATE SET points = EXCLUDED.points"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 || args[5] != 1 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilderRequiresWhere(t *testing.T) {
	if _, _, err := DeleteFrom("room_lobby").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional delete")
	}

	query, args, err := DeleteFrom("room_lobby").Where(Eq("room_code", "ROOM1"), Eq("user_id", "u1")).ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	if query != "DELETE FROM room_lobby WHERE room_code = $1 AND user_id = $2" || len(args) != 2 {
		t.Fatalf("unexpected query: %s %+v", query, args)
	}
}
