package command

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/clickermsu/leaderboard-go/internal/core/domain"
	"github.com/clickermsu/leaderboard-go/internal/storage/memory"
)

func seededTable(t *testing.T) *memory.Table {
	t.Helper()
	tbl := memory.New()
	ctx := context.Background()
	for _, u := range []domain.User{
		{ID: 1, Username: "alice", Password: "pw"},
		{ID: 5, Username: "bob", Password: "pw"},
		{ID: 3, Username: "carol", Password: "pw"},
	} {
		if err := tbl.Insert(ctx, u); err != nil {
			t.Fatalf("Insert(%s): %v", u.Username, err)
		}
	}
	return tbl
}

func TestApp_HasCommands(t *testing.T) {
	app := App()
	want := []string{"top", "rank", "list", "delete", "export", "import", "verify"}
	for _, name := range want {
		if app.Command(name) == nil {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestRunTop_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := runTop(context.Background(), seededTable(t), &buf, 2, "table"); err != nil {
		t.Fatalf("runTop: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "bob") || !strings.Contains(out, "carol") {
		t.Fatalf("output = %q", out)
	}
	if strings.Contains(out, "alice") {
		t.Fatalf("alice should be truncated from top 2: %q", out)
	}
	if strings.Index(out, "bob") > strings.Index(out, "carol") {
		t.Fatalf("bob should rank above carol: %q", out)
	}
}

func TestRunTop_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := runTop(context.Background(), seededTable(t), &buf, 10, "json"); err != nil {
		t.Fatalf("runTop: %v", err)
	}
	if !strings.Contains(buf.String(), "\"bob\"") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestRunRank(t *testing.T) {
	var buf bytes.Buffer
	if err := runRank(context.Background(), seededTable(t), &buf, "carol", "table"); err != nil {
		t.Fatalf("runRank: %v", err)
	}
	if !strings.Contains(buf.String(), "#2") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestRunRank_Unknown(t *testing.T) {
	var buf bytes.Buffer
	err := runRank(context.Background(), seededTable(t), &buf, "ghost", "table")
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunList_PreservesInsertionOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := runList(context.Background(), seededTable(t), &buf, "table"); err != nil {
		t.Fatalf("runList: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "alice") > strings.Index(out, "bob") {
		t.Fatalf("insertion order lost: %q", out)
	}
}

func TestRunDelete(t *testing.T) {
	tbl := seededTable(t)
	var buf bytes.Buffer
	if err := runDelete(context.Background(), tbl, &buf, 5); err != nil {
		t.Fatalf("runDelete: %v", err)
	}
	if !strings.Contains(buf.String(), "deleted 1 record(s)") {
		t.Fatalf("output = %q", buf.String())
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d after delete", tbl.Len())
	}
}

func TestRunVerify(t *testing.T) {
	rows := domain.Snapshot{
		{ID: 1, Username: "alice", Password: "pw"},
	}
	var buf bytes.Buffer
	if err := runVerify(context.Background(), &buf, rows); err != nil {
		t.Fatalf("runVerify: %v", err)
	}
	if !strings.Contains(buf.String(), "ok: 1 record(s)") {
		t.Fatalf("output = %q", buf.String())
	}

	bad := domain.Snapshot{{ID: 2, Username: ""}}
	if err := runVerify(context.Background(), &buf, bad); err == nil {
		t.Fatal("blank username should fail verification")
	}
}
