package activity

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/profiles"
	"github.com/shaygp/boxd/internal/repository"
	"github.com/shaygp/boxd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLedger(t *testing.T) (*Ledger, *gorm.DB) {
	db := testutil.NewDB(t)
	resolver := profiles.NewResolver(repository.NewProfileRepository(db), nil, 0)
	return NewLedger(repository.NewActivityRepository(db, 10), resolver), db
}

func ids(records []models.Activity) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestAppendStampsIdentity(t *testing.T) {
	ledger, db := newLedger(t)
	alice := testutil.CreateUser(t, db, "alice")
	ledger.now = func() time.Time { return testutil.Base }

	review := "  Wet race, brilliant strategy calls  "
	record, err := ledger.Append(context.Background(), AppendInput{
		ActorID:    alice.ID,
		Kind:       models.ActivityReview,
		TargetID:   "log-1",
		TargetKind: models.TargetRaceLog,
		Content:    &review,
		Race:       &models.RaceMetadata{Season: 2024, Round: 8, RaceName: "Monaco Grand Prix", Circuit: "Monaco"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, testutil.Base, record.CreatedAt)
	assert.Equal(t, "alice", record.Actor.DisplayName)
	require.NotNil(t, record.Content)
	assert.Equal(t, "Wet race, brilliant strategy calls", *record.Content)

	stored, err := ledger.QueryByActor(context.Background(), alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, alice.ID, stored[0].Actor.ID)
	require.NotNil(t, stored[0].Race)
	assert.Equal(t, "Monaco Grand Prix", stored[0].Race.RaceName)
}

func TestAppendValidates(t *testing.T) {
	ledger, db := newLedger(t)
	alice := testutil.CreateUser(t, db, "alice")
	ctx := context.Background()

	_, err := ledger.Append(ctx, AppendInput{Kind: models.ActivityLog, TargetID: "x", TargetKind: models.TargetRaceLog})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = ledger.Append(ctx, AppendInput{ActorID: alice.ID, Kind: "comment", TargetID: "x", TargetKind: models.TargetRaceLog})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = ledger.Append(ctx, AppendInput{ActorID: alice.ID, Kind: models.ActivityLike, TargetID: "x", TargetKind: models.TargetComment})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = ledger.Append(ctx, AppendInput{ActorID: "ghost", Kind: models.ActivityLog, TargetID: "x", TargetKind: models.TargetRaceLog})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEveryActionIsItsOwnRecord(t *testing.T) {
	ledger, db := newLedger(t)
	alice := testutil.CreateUser(t, db, "alice")
	ctx := context.Background()

	in := AppendInput{ActorID: alice.ID, Kind: models.ActivityLike, TargetID: "log-1", TargetKind: models.TargetRaceLog}
	_, err := ledger.Append(ctx, in)
	require.NoError(t, err)
	_, err = ledger.Append(ctx, in)
	require.NoError(t, err)

	records, err := ledger.QueryGlobal(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestQueryOrderBreaksTiesByID(t *testing.T) {
	ledger, db := newLedger(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	testutil.CreateActivity(t, db, "b", alice, testutil.Base)
	testutil.CreateActivity(t, db, "a", bob, testutil.Base)
	testutil.CreateActivity(t, db, "c", alice, testutil.Base.Add(time.Minute))
	testutil.CreateActivity(t, db, "d", bob, testutil.Base.Add(-time.Minute))

	records, err := ledger.QueryGlobal(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(records))

	mine, err := ledger.QueryByActor(context.Background(), alice.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, ids(mine))
}

func TestCursorPagination(t *testing.T) {
	ledger, db := newLedger(t)
	alice := testutil.CreateUser(t, db, "alice")
	for i, id := range []string{"a1", "a2", "a3", "a4", "a5"} {
		testutil.CreateActivity(t, db, id, alice, testutil.Base.Add(time.Duration(i)*time.Second))
	}
	// same instant as a3, sorts after it
	testutil.CreateActivity(t, db, "a3x", alice, testutil.Base.Add(2*time.Second))
	ctx := context.Background()

	first, err := ledger.QueryGlobalPage(ctx, repository.Page{Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"a5", "a4", "a3"}, ids(first))

	last := first[len(first)-1]
	token := repository.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	cursor, err := repository.DecodeCursor(token)
	require.NoError(t, err)

	second, err := ledger.QueryGlobalPage(ctx, repository.Page{Limit: 3, Before: cursor})
	require.NoError(t, err)
	assert.Equal(t, []string{"a3x", "a2", "a1"}, ids(second))
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := repository.DecodeCursor("not base64!")
	assert.Error(t, err)

	c, err := repository.DecodeCursor("")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestMembershipLimit(t *testing.T) {
	ledger, _ := newLedger(t)

	tooMany := make([]string, 11)
	for i := range tooMany {
		tooMany[i] = string(rune('a' + i))
	}
	_, err := ledger.QueryByActors(context.Background(), tooMany, repository.Page{Limit: 5})
	assert.ErrorIs(t, err, apperrors.ErrMembershipLimit)

	records, err := ledger.QueryByActors(context.Background(), tooMany[:10], repository.Page{Limit: 5})
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestEnrichPatchesWithoutWritingBack(t *testing.T) {
	ledger, db := newLedger(t)
	alice := testutil.CreateUser(t, db, "alice")

	stale := &models.Activity{
		ID:         "stale",
		ActorID:    alice.ID,
		Kind:       models.ActivityLog,
		TargetID:   "log-1",
		TargetKind: models.TargetRaceLog,
		CreatedAt:  testutil.Base,
	}
	require.NoError(t, db.Create(stale).Error)

	records, err := ledger.QueryGlobal(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].Actor.DisplayName)

	var raw models.Activity
	require.NoError(t, db.First(&raw, "id = ?", "stale").Error)
	assert.Empty(t, raw.Actor.DisplayName, "stored snapshot untouched")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, MaxLimit, ClampLimit(1000))
	assert.Equal(t, 7, ClampLimit(7))
}
