package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/CrowderSoup/gamific/ordering"
	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "gamific.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type fixture struct {
	account string
	user    string
	journey string
}

func seedJourney(t *testing.T, store *Store) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{account: uuid.NewString(), user: uuid.NewString(), journey: uuid.NewString()}
	q := store.Queries()
	if err := q.EnsureUser(ctx, User{ID: f.user, AccountID: f.account, Email: "avery@example.com", Name: "Avery"}); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if err := q.InsertJourney(ctx, Journey{ID: f.journey, AccountID: f.account, Name: "Sprint 1"}); err != nil {
		t.Fatalf("insert journey: %v", err)
	}
	return f
}

func insertColumn(t *testing.T, store *Store, f fixture, name string, position *int) Column {
	t.Helper()
	ctx := context.Background()
	var c Column
	err := store.WithTx(ctx, func(q *Queries) error {
		m := ordering.New(q.Siblings(JourneyColumnFamily))
		pos, err := m.InsertAt(ctx, f.journey, position)
		if err != nil {
			return err
		}
		c = Column{ID: uuid.NewString(), AccountID: f.account, JourneyID: f.journey, Name: name, Color: "#fff", Position: pos}
		if err := q.InsertColumn(ctx, JourneyColumnFamily, c); err != nil {
			return err
		}
		return m.Verify(ctx, f.journey)
	})
	if err != nil {
		t.Fatalf("insert column %s: %v", name, err)
	}
	return c
}

func columnNames(t *testing.T, store *Store, journeyID string) []string {
	t.Helper()
	columns, err := store.Queries().ColumnsOf(context.Background(), JourneyColumnFamily, journeyID)
	if err != nil {
		t.Fatalf("list columns: %v", err)
	}
	names := make([]string, len(columns))
	for i, c := range columns {
		if c.Position != i {
			t.Fatalf("expected %s at position %d, got %d", c.Name, i, c.Position)
		}
		names[i] = c.Name
	}
	return names
}

func TestOpenAppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamific.db")
	for i := 0; i < 2; i++ {
		store, err := Open(context.Background(), DriverSQLite, path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		var n int
		if err := store.Queries().queryRow(context.Background(), `SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
			t.Fatalf("count migrations: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 recorded migration, got %d", n)
		}
		store.Close()
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "x"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestRebindDollar(t *testing.T) {
	got := rebindDollar(`UPDATE tasks SET position = position + ? WHERE column_id = ? AND position >= ?`)
	want := `UPDATE tasks SET position = position + $1 WHERE column_id = $2 AND position >= $3`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestInsertColumnAtExplicitPosition(t *testing.T) {
	store := newTestStore(t)
	f := seedJourney(t, store)
	insertColumn(t, store, f, "A", nil)
	insertColumn(t, store, f, "B", nil)
	insertColumn(t, store, f, "C", nil)

	one := 1
	insertColumn(t, store, f, "D", &one)

	got := columnNames(t, store, f.journey)
	want := []string{"A", "D", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDeleteTaskThenRemoveAtClosesGap(t *testing.T) {
	store := newTestStore(t)
	f := seedJourney(t, store)
	ctx := context.Background()
	column := insertColumn(t, store, f, "Todo", nil)

	missionID := uuid.NewString()
	missionColumnID := uuid.NewString()
	q := store.Queries()
	if err := q.InsertMission(ctx, Mission{ID: missionID, AccountID: f.account, ColumnID: column.ID, Name: "Launch"}); err != nil {
		t.Fatalf("insert mission: %v", err)
	}
	if err := q.InsertColumn(ctx, MissionColumnFamily, Column{ID: missionColumnID, AccountID: f.account, MissionID: missionID, Name: "Doing", Color: "red"}); err != nil {
		t.Fatalf("insert mission column: %v", err)
	}

	ids := map[string]string{}
	for i, name := range []string{"T1", "T2", "T3"} {
		ids[name] = uuid.NewString()
		err := q.InsertTask(ctx, Task{ID: ids[name], AccountID: f.account, ColumnID: missionColumnID, UserID: f.user, Name: name, Position: i})
		if err != nil {
			t.Fatalf("insert task: %v", err)
		}
	}

	err := store.WithTx(ctx, func(q *Queries) error {
		if err := q.DeleteTask(ctx, f.account, ids["T2"]); err != nil {
			return err
		}
		m := ordering.New(q.Siblings(TaskFamily))
		if err := m.RemoveAt(ctx, missionColumnID, 1); err != nil {
			return err
		}
		return m.Verify(ctx, missionColumnID)
	})
	if err != nil {
		t.Fatalf("delete task: %v", err)
	}

	tasks, err := q.TasksIn(ctx, missionColumnID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Name != "T1" || tasks[0].Position != 0 || tasks[1].Name != "T3" || tasks[1].Position != 1 {
		t.Fatalf("unexpected tasks after delete: %+v", tasks)
	}
}

func TestWithTxRollsBackOnInconsistentOrdering(t *testing.T) {
	store := newTestStore(t)
	f := seedJourney(t, store)
	ctx := context.Background()
	insertColumn(t, store, f, "A", nil)

	err := store.WithTx(ctx, func(q *Queries) error {
		err := q.InsertColumn(ctx, JourneyColumnFamily, Column{ID: uuid.NewString(), AccountID: f.account, JourneyID: f.journey, Name: "Gap", Color: "x", Position: 5})
		if err != nil {
			return err
		}
		return ordering.New(q.Siblings(JourneyColumnFamily)).Verify(ctx, f.journey)
	})
	if !errors.Is(err, ordering.ErrInconsistentOrdering) {
		t.Fatalf("expected ErrInconsistentOrdering, got %v", err)
	}

	if got := columnNames(t, store, f.journey); len(got) != 1 {
		t.Fatalf("expected rollback to leave 1 column, got %v", got)
	}
}

func TestNameTakenIsCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	f := seedJourney(t, store)
	c := insertColumn(t, store, f, "todo", nil)
	ctx := context.Background()

	taken, err := store.Queries().NameTaken(ctx, JourneyColumnFamily, f.journey, "Todo", "")
	if err != nil {
		t.Fatalf("NameTaken: %v", err)
	}
	if !taken {
		t.Fatal("expected Todo to collide with todo")
	}

	taken, err = store.Queries().NameTaken(ctx, JourneyColumnFamily, f.journey, "TODO", c.ID)
	if err != nil {
		t.Fatalf("NameTaken: %v", err)
	}
	if taken {
		t.Fatal("expected the column itself to be excluded")
	}
}

func TestGetIsScopedToAccount(t *testing.T) {
	store := newTestStore(t)
	f := seedJourney(t, store)

	_, err := store.Queries().GetJourney(context.Background(), uuid.NewString(), f.journey)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another account, got %v", err)
	}
}

func TestDeleteJourneyCascades(t *testing.T) {
	store := newTestStore(t)
	f := seedJourney(t, store)
	ctx := context.Background()
	insertColumn(t, store, f, "A", nil)

	if err := store.Queries().DeleteJourney(ctx, f.account, f.journey); err != nil {
		t.Fatalf("delete journey: %v", err)
	}
	columns, err := store.Queries().ListColumns(ctx, JourneyColumnFamily, f.account)
	if err != nil {
		t.Fatalf("list columns: %v", err)
	}
	if len(columns) != 0 {
		t.Fatalf("expected columns to cascade, got %d", len(columns))
	}
}

func TestSubtasksKeepInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	f := seedJourney(t, store)
	ctx := context.Background()
	column := insertColumn(t, store, f, "A", nil)
	q := store.Queries()

	missionID, missionColumnID, taskID := uuid.NewString(), uuid.NewString(), uuid.NewString()
	if err := q.InsertMission(ctx, Mission{ID: missionID, AccountID: f.account, ColumnID: column.ID, Name: "M"}); err != nil {
		t.Fatalf("insert mission: %v", err)
	}
	if err := q.InsertColumn(ctx, MissionColumnFamily, Column{ID: missionColumnID, AccountID: f.account, MissionID: missionID, Name: "C", Color: "x"}); err != nil {
		t.Fatalf("insert mission column: %v", err)
	}
	if err := q.InsertTask(ctx, Task{ID: taskID, AccountID: f.account, ColumnID: missionColumnID, UserID: f.user, Name: "T", RelatedTasks: []string{"a"}}); err != nil {
		t.Fatalf("insert task: %v", err)
	}

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := q.InsertSubtask(ctx, Subtask{ID: uuid.NewString(), AccountID: f.account, TaskID: taskID, Name: name}); err != nil {
			t.Fatalf("insert subtask: %v", err)
		}
	}

	task, err := q.GetTask(ctx, f.account, taskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if len(task.Subtasks) != 3 || task.Subtasks[0].Name != "zeta" || task.Subtasks[2].Name != "mid" {
		t.Fatalf("unexpected subtask order: %+v", task.Subtasks)
	}
	if len(task.RelatedTasks) != 1 || task.RelatedTasks[0] != "a" {
		t.Fatalf("unexpected related tasks: %v", task.RelatedTasks)
	}
}

func TestNameTakenIgnoresSurroundingSpaces(t *testing.T) {
	store := newTestStore(t)
	f := seedJourney(t, store)
	ctx := context.Background()
	err := store.Queries().InsertColumn(ctx, JourneyColumnFamily, Column{ID: uuid.NewString(), AccountID: f.account, JourneyID: f.journey, Name: " Todo ", Color: "x"})
	if err != nil {
		t.Fatalf("insert column: %v", err)
	}

	for _, name := range []string{"todo", " TODO", "Todo  "} {
		taken, err := store.Queries().NameTaken(ctx, JourneyColumnFamily, f.journey, name, "")
		if err != nil {
			t.Fatalf("NameTaken: %v", err)
		}
		if !taken {
			t.Fatalf("expected %q to collide with \" Todo \"", name)
		}
	}
}

func TestEnsureUserKeepsAccount(t *testing.T) {
	store := newTestStore(t)
	f := seedJourney(t, store)
	ctx := context.Background()
	q := store.Queries()

	err := q.EnsureUser(ctx, User{ID: f.user, AccountID: uuid.NewString(), Email: "intruder@example.com", Name: "Intruder"})
	if !errors.Is(err, ErrAccountMismatch) {
		t.Fatalf("expected ErrAccountMismatch, got %v", err)
	}

	u, err := q.GetUser(ctx, f.account, f.user)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Email != "avery@example.com" || u.Name != "Avery" {
		t.Fatalf("expected user untouched, got %+v", u)
	}

	if err := q.EnsureUser(ctx, User{ID: f.user, AccountID: f.account, Email: "avery@new.example.com", Name: "Avery"}); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if u, _ = q.GetUser(ctx, f.account, f.user); u.Email != "avery@new.example.com" {
		t.Fatalf("expected email refreshed, got %s", u.Email)
	}
}
