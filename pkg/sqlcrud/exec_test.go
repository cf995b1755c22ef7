package sqlcrud_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/sqlcrud/pkg/sqlcrud"
)

func Test_Users_Scenario_Insert_Get_Update_Delete_Count(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	id, err := db.Insert(ctx, sqlcrud.Insert{Record: sqlcrud.Record{}.Set("name", "Ana").Set("age", 30)})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	row := mustGetUser(ctx, t, db, 1)
	name, _ := row.String("name")
	age, _ := row.Int64("age")
	assert.Equal(t, "Ana", name)
	assert.Equal(t, int64(30), age)

	err = db.Update(ctx, sqlcrud.Update{
		Record: sqlcrud.Record{}.Set("age", 31),
		Where:  sqlcrud.Where{}.Set("id", 1),
	})
	require.NoError(t, err)

	age, _ = mustGetUser(ctx, t, db, 1).Int64("age")
	assert.Equal(t, int64(31), age)

	err = db.Delete(ctx, sqlcrud.Delete{Where: sqlcrud.Where{}.Set("id", 1)})
	require.NoError(t, err)

	assert.Equal(t, int64(0), mustCount(ctx, t, db))
}

func Test_Insert_Round_Trips_All_Value_Types(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	rec := sqlcrud.Record{}.
		Set("name", "Zoë").
		Set("age", int64(44)).
		Set("score", 9.5).
		Set("avatar", []byte{0x00, 0xff, 0x10})

	id := mustInsert(ctx, t, db, rec)

	got := mustGetUser(ctx, t, db, id).Map()

	want := map[string]any{
		"id":     id,
		"name":   "Zoë",
		"age":    int64(44),
		"score":  9.5,
		"avatar": []byte{0x00, 0xff, 0x10},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
}

func Test_Insert_Stores_Null_When_Value_Nil(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	id := mustInsert(ctx, t, db, sqlcrud.Record{}.Set("name", nil).Set("age", 3))

	row := mustGetUser(ctx, t, db, id)
	assert.True(t, row.IsNull("name"))
	assert.False(t, row.IsNull("age"))
}

func Test_Insert_Returns_Increasing_IDs_When_Called_Repeatedly(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	first := mustInsert(ctx, t, db, user("a", 1))
	second := mustInsert(ctx, t, db, user("b", 2))

	assert.Equal(t, first+1, second)
}

func Test_Insert_Returns_DatabaseError_When_Column_Unknown(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)

	_, err := db.Insert(t.Context(), sqlcrud.Insert{Record: sqlcrud.Record{}.Set("nope", 1)})

	var dbErr *sqlcrud.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "insert", dbErr.Op)
	assert.Equal(t, "users", dbErr.Table)
	assert.Equal(t, "INSERT INTO users (nope) VALUES (?)", dbErr.Query)
	assert.Equal(t, sqlite3.ErrError, dbErr.Code())
	assert.Contains(t, err.Error(), "(table=users)")
}

func Test_Insert_Returns_Constraint_Code_When_Primary_Key_Duplicated(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	id := mustInsert(ctx, t, db, user("Ana", 30))

	_, err := db.Insert(ctx, sqlcrud.Insert{Record: sqlcrud.Record{}.Set("id", id).Set("name", "Bo")})

	var dbErr *sqlcrud.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, sqlite3.ErrConstraint, dbErr.Code())
	assert.Equal(t, sqlite3.ErrConstraintPrimaryKey, dbErr.ExtendedCode())
	assert.Equal(t, int64(1), mustCount(ctx, t, db))
}

func Test_Insert_Returns_ConfigurationError_When_Record_Missing(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)

	_, err := db.Insert(t.Context(), sqlcrud.Insert{})
	require.ErrorIs(t, err, sqlcrud.ErrEmptyRecord)

	var cfgErr *sqlcrud.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "record", cfgErr.Field)
}

func Test_Insert_Returns_ErrNoTable_When_No_Table_Selected(t *testing.T) {
	t.Parallel()

	db, err := sqlcrud.Open(t.Context(), sqlcrud.Config{Path: testDBPath(t)})
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Insert(t.Context(), sqlcrud.Insert{Record: user("Ana", 1)})
	require.ErrorIs(t, err, sqlcrud.ErrNoTable)
}

func Test_Update_Leaves_Other_Rows_Unchanged_When_Where_Matches_One(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	ana := mustInsert(ctx, t, db, user("Ana", 30))
	bo := mustInsert(ctx, t, db, user("Bo", 40))

	err := db.Update(ctx, sqlcrud.Update{
		Record: sqlcrud.Record{}.Set("name", "Ana B.").Set("age", 31),
		Where:  sqlcrud.Where{}.Set("id", ana).Set("name", "Ana"),
	})
	require.NoError(t, err)

	row := mustGetUser(ctx, t, db, ana)
	name, _ := row.String("name")
	age, _ := row.Int64("age")
	assert.Equal(t, "Ana B.", name)
	assert.Equal(t, int64(31), age)

	row = mustGetUser(ctx, t, db, bo)
	name, _ = row.String("name")
	age, _ = row.Int64("age")
	assert.Equal(t, "Bo", name)
	assert.Equal(t, int64(40), age)
}

func Test_Update_Returns_ErrEmptyWhere_When_Where_Missing(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	mustInsert(ctx, t, db, user("Ana", 30))

	err := db.Update(ctx, sqlcrud.Update{Record: sqlcrud.Record{}.Set("age", 0)})
	require.ErrorIs(t, err, sqlcrud.ErrEmptyWhere)

	age, _ := mustGetUser(ctx, t, db, 1).Int64("age")
	assert.Equal(t, int64(30), age)
}

func Test_Update_Updates_Every_Row_When_AllRows(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	mustInsert(ctx, t, db, user("Ana", 30))
	mustInsert(ctx, t, db, user("Bo", 40))

	err := db.Update(ctx, sqlcrud.Update{Record: sqlcrud.Record{}.Set("age", 0), AllRows: true})
	require.NoError(t, err)

	var ages []int64
	require.NoError(t, db.ScanAll(ctx, &ages, "SELECT age FROM users ORDER BY id"))
	assert.Equal(t, []int64{0, 0}, ages)
}

func Test_Delete_Removes_Exactly_Matching_Rows(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	mustInsert(ctx, t, db, user("Ana", 30))
	mustInsert(ctx, t, db, user("Bo", 30))
	mustInsert(ctx, t, db, user("Cy", 40))

	before := mustCount(ctx, t, db)

	var matching int64
	require.NoError(t, db.ScanOne(ctx, &matching, "SELECT COUNT(*) FROM users WHERE age = ?", 30))

	err := db.Delete(ctx, sqlcrud.Delete{Where: sqlcrud.Where{}.Set("age", 30)})
	require.NoError(t, err)

	assert.Equal(t, before-matching, mustCount(ctx, t, db))

	row, err := db.GetRow(ctx, "SELECT name FROM users")
	require.NoError(t, err)

	name, _ := row.String("name")
	assert.Equal(t, "Cy", name)
}

func Test_Delete_Returns_ErrEmptyWhere_When_Where_Missing(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	mustInsert(ctx, t, db, user("Ana", 30))

	err := db.Delete(ctx, sqlcrud.Delete{})
	require.ErrorIs(t, err, sqlcrud.ErrEmptyWhere)
	assert.Equal(t, int64(1), mustCount(ctx, t, db))
}

func Test_Delete_Removes_Every_Row_When_AllRows(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	mustInsert(ctx, t, db, user("Ana", 30))
	mustInsert(ctx, t, db, user("Bo", 40))

	require.NoError(t, db.Delete(ctx, sqlcrud.Delete{AllRows: true}))
	assert.Equal(t, int64(0), mustCount(ctx, t, db))
}

func Test_Count_Equals_Inserts_Minus_Deletes(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	const inserts, deletes = 10, 4

	ids := make([]int64, 0, inserts)
	for i := range inserts {
		ids = append(ids, mustInsert(ctx, t, db, user("u", int64(i))))
	}

	for _, id := range ids[:deletes] {
		require.NoError(t, db.Delete(ctx, sqlcrud.Delete{Where: sqlcrud.Where{}.Set("id", id)}))
	}

	assert.Equal(t, int64(inserts-deletes), mustCount(ctx, t, db))
}

func Test_Count_Returns_DatabaseError_When_Table_Missing(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)

	_, err := db.Count(t.Context(), "missing")

	var dbErr *sqlcrud.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "count", dbErr.Op)
	assert.Equal(t, "SELECT COUNT(*) FROM missing", dbErr.Query)
}

func Test_Exec_Returns_DatabaseError_When_SQL_Malformed(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)

	err := db.Exec(t.Context(), "CREATE TABLEX broken")

	var dbErr *sqlcrud.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "exec", dbErr.Op)
	assert.Equal(t, sqlite3.ErrError, dbErr.Code())
}

func Test_InsertNoCommit_Is_Visible_Before_Commit_When_Read_On_Same_DB(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	id, err := db.InsertNoCommit(ctx, sqlcrud.Insert{Record: user("Ana", 30)})
	require.NoError(t, err)
	require.True(t, db.InTx())

	mustGetUser(ctx, t, db, id)

	require.NoError(t, db.Commit())
	require.False(t, db.InTx())
}

func Test_NoCommit_Changes_Are_Discarded_When_Rolled_Back(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	mustInsert(ctx, t, db, user("Ana", 30))

	_, err := db.InsertNoCommit(ctx, sqlcrud.Insert{Record: user("Bo", 40)})
	require.NoError(t, err)

	err = db.UpdateNoCommit(ctx, sqlcrud.Update{Record: sqlcrud.Record{}.Set("age", 99), Where: sqlcrud.Where{}.Set("id", 1)})
	require.NoError(t, err)

	require.NoError(t, db.ExecNoCommit(ctx, "DELETE FROM users WHERE name = ?", "Ana"))
	assert.Equal(t, int64(1), mustCount(ctx, t, db))

	require.NoError(t, db.Rollback())

	assert.Equal(t, int64(1), mustCount(ctx, t, db))

	age, _ := mustGetUser(ctx, t, db, 1).Int64("age")
	assert.Equal(t, int64(30), age)
}

func Test_Committing_Operation_Commits_Pending_NoCommit_Work(t *testing.T) {
	t.Parallel()

	path := testDBPath(t)
	db := openTestDBAt(t, path)
	ctx := t.Context()

	_, err := db.InsertNoCommit(ctx, sqlcrud.Insert{Record: user("Ana", 30)})
	require.NoError(t, err)

	mustInsert(ctx, t, db, user("Bo", 40))
	require.False(t, db.InTx())
	require.NoError(t, db.Close())

	reopened := openTestDBAt(t, path)
	assert.Equal(t, int64(2), mustCount(ctx, t, reopened))
}

func Test_Close_Discards_Pending_Changes_When_Not_Committed(t *testing.T) {
	t.Parallel()

	path := testDBPath(t)
	db := openTestDBAt(t, path)
	ctx := t.Context()

	mustInsert(ctx, t, db, user("Ana", 30))

	_, err := db.InsertNoCommit(ctx, sqlcrud.Insert{Record: user("Bo", 40)})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened := openTestDBAt(t, path)
	assert.Equal(t, int64(1), mustCount(ctx, t, reopened))
}

func Test_Failed_Commit_Operation_Keeps_Pending_Work_When_Statement_Fails(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	_, err := db.InsertNoCommit(ctx, sqlcrud.Insert{Record: user("Ana", 30)})
	require.NoError(t, err)

	_, err = db.Insert(ctx, sqlcrud.Insert{Record: sqlcrud.Record{}.Set("nope", 1)})
	require.Error(t, err)

	require.True(t, db.InTx(), "pending transaction must survive a failed statement")
	require.NoError(t, db.Commit())
	assert.Equal(t, int64(1), mustCount(ctx, t, db))
}

func Test_Commit_And_Rollback_Are_NoOps_When_Nothing_Pending(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)

	require.NoError(t, db.Commit())
	require.NoError(t, db.Rollback())
}
