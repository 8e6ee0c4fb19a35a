package member_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/member-sync/internal/member"
	"github.com/hugh/member-sync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	rows  map[string]member.Record
	err   error
	calls int
}

func (f *fakeReader) Lookup(_ context.Context, email string) (*member.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for k, rec := range f.rows {
		if member.SameEmail(k, email) {
			rec := rec
			return &rec, nil
		}
	}
	return nil, nil
}

type fakeWriter struct {
	err    error
	writes []member.Identity
	fields []member.Fields
}

func (f *fakeWriter) Write(_ context.Context, who member.Identity, fields member.Fields) error {
	f.writes = append(f.writes, who)
	f.fields = append(f.fields, fields)
	return f.err
}

type fakeRepair struct {
	users []uuid.UUID
}

func (f *fakeRepair) EnqueueMirror(_ context.Context, userID uuid.UUID) error {
	f.users = append(f.users, userID)
	return nil
}

type failingStore struct {
	member.Store
}

func (failingStore) UpdateMember(context.Context, uuid.UUID, string, member.Fields) error {
	return errors.New("database down")
}

func sheetWith(email string, row int, fields member.Fields) *fakeReader {
	return &fakeReader{rows: map[string]member.Record{
		email: {Email: email, Fields: fields, RowIndex: row},
	}}
}

func TestReconciler_GetRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("database wins when it holds a value", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()
		testutil.CreateTestMember(t, tc.DB, tc.User, "111", "")

		reader := sheetWith(tc.User.Email, 2, member.Fields{Tel: "000", Topic: "sheet-topic"})
		r := member.NewReconciler(member.NewGormStore(tc.DB), reader, nil, testutil.DiscardLogger())

		rec, source, err := r.GetRecord(ctx, tc.User.ID, tc.User.Email)
		require.NoError(t, err)
		assert.Equal(t, member.SourceDatabase, source)
		assert.Equal(t, "111", rec.Tel)
		assert.Equal(t, "", rec.Topic)
		assert.Equal(t, 0, reader.calls)
	})

	t.Run("spreadsheet used when database is empty", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		reader := sheetWith(tc.User.Email, 4, member.Fields{Tel: "000", Title: "t"})
		r := member.NewReconciler(member.NewGormStore(tc.DB), reader, nil, testutil.DiscardLogger())

		rec, source, err := r.GetRecord(ctx, tc.User.ID, tc.User.Email)
		require.NoError(t, err)
		assert.Equal(t, member.SourceSpreadsheet, source)
		assert.Equal(t, "000", rec.Tel)
		assert.Equal(t, 4, rec.RowIndex)
	})

	t.Run("skeleton for a first-time member", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		r := member.NewReconciler(member.NewGormStore(tc.DB), &fakeReader{}, nil, testutil.DiscardLogger())

		rec, source, err := r.GetRecord(ctx, tc.User.ID, tc.User.Email)
		require.NoError(t, err)
		assert.Equal(t, member.SourceEmpty, source)
		assert.Equal(t, member.Skeleton(tc.User.Email), rec)
	})

	t.Run("spreadsheet failures propagate", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		r := member.NewReconciler(member.NewGormStore(tc.DB), &fakeReader{err: errors.New("boom")}, nil, testutil.DiscardLogger())

		_, _, err := r.GetRecord(ctx, tc.User.ID, tc.User.Email)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestReconciler_SaveRecord(t *testing.T) {
	ctx := context.Background()
	fields := member.Fields{Tel: "999", Topic: "go", Keyword: "k", Title: "T", SocialLink: "http://ig/me"}

	t.Run("writes both stores", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		writer := &fakeWriter{}
		reader := sheetWith(tc.User.Email, 7, member.Fields{})
		store := member.NewGormStore(tc.DB)
		r := member.NewReconciler(store, reader, writer, testutil.DiscardLogger())

		res, err := r.SaveRecord(ctx, tc.User.ID, tc.User.Email, fields)
		require.NoError(t, err)
		assert.True(t, res.Synced())

		require.Len(t, writer.writes, 1)
		assert.Equal(t, member.Identity{Email: tc.User.Email, RowIndex: 7}, writer.writes[0])
		assert.Equal(t, fields, writer.fields[0])

		stored, err := store.GetMember(ctx, tc.User.ID)
		require.NoError(t, err)
		assert.Equal(t, fields, stored.Fields)
	})

	t.Run("spreadsheet failure is partial and keeps the database write", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		repair := &fakeRepair{}
		store := member.NewGormStore(tc.DB)
		r := member.NewReconciler(store, &fakeReader{}, &fakeWriter{err: errors.New("sheet offline")},
			testutil.DiscardLogger(), member.WithRepair(repair))

		res, err := r.SaveRecord(ctx, tc.User.ID, tc.User.Email, fields)
		require.NoError(t, err)
		assert.Equal(t, member.StatusPartial, res.Status)
		assert.Contains(t, res.Detail, "sheet offline")
		assert.Equal(t, []uuid.UUID{tc.User.ID}, repair.users)

		stored, err := store.GetMember(ctx, tc.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "999", stored.Tel)
	})

	t.Run("permanent spreadsheet failures are not queued for repair", func(t *testing.T) {
		for _, cause := range []error{member.ErrRowNotOwned, member.ErrNoRow} {
			tc := testutil.NewTestContext(t)

			repair := &fakeRepair{}
			r := member.NewReconciler(member.NewGormStore(tc.DB), &fakeReader{}, &fakeWriter{err: cause},
				testutil.DiscardLogger(), member.WithRepair(repair))

			res, err := r.SaveRecord(ctx, tc.User.ID, tc.User.Email, fields)
			require.NoError(t, err)
			assert.Equal(t, member.StatusPartial, res.Status)
			assert.Empty(t, repair.users, cause.Error())
			tc.Cleanup()
		}
	})

	t.Run("writes disabled is not queued for repair", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		repair := &fakeRepair{}
		r := member.NewReconciler(member.NewGormStore(tc.DB), &fakeReader{}, nil,
			testutil.DiscardLogger(), member.WithRepair(repair))

		res, err := r.SaveRecord(ctx, tc.User.ID, tc.User.Email, fields)
		require.NoError(t, err)
		assert.Equal(t, member.StatusPartial, res.Status)
		assert.Empty(t, repair.users)
	})

	t.Run("database failure aborts before the spreadsheet", func(t *testing.T) {
		writer := &fakeWriter{}
		r := member.NewReconciler(failingStore{}, &fakeReader{}, writer, testutil.DiscardLogger())

		_, err := r.SaveRecord(ctx, uuid.New(), "a@b.com", fields)
		require.Error(t, err)
		assert.Empty(t, writer.writes)
	})

	t.Run("writes disabled is partial without repair", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		repair := &fakeRepair{}
		r := member.NewReconciler(member.NewGormStore(tc.DB), &fakeReader{}, nil,
			testutil.DiscardLogger(), member.WithRepair(repair))

		res, err := r.SaveRecord(ctx, tc.User.ID, tc.User.Email, fields)
		require.NoError(t, err)
		assert.Equal(t, member.StatusPartial, res.Status)
		assert.Equal(t, member.ErrWritesDisabled.Error(), res.Detail)
		assert.Empty(t, repair.users)
	})

	t.Run("saving twice is idempotent", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		store := member.NewGormStore(tc.DB)
		r := member.NewReconciler(store, &fakeReader{}, &fakeWriter{}, testutil.DiscardLogger())

		_, err := r.SaveRecord(ctx, tc.User.ID, tc.User.Email, fields)
		require.NoError(t, err)
		_, err = r.SaveRecord(ctx, tc.User.ID, tc.User.Email, fields)
		require.NoError(t, err)

		var count int64
		require.NoError(t, tc.DB.Table("members").Where("user_id = ?", tc.User.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestReconciler_Resync(t *testing.T) {
	ctx := context.Background()
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()

	writer := &fakeWriter{}
	r := member.NewReconciler(member.NewGormStore(tc.DB), sheetWith(tc.User.Email, 3, member.Fields{}), writer, testutil.DiscardLogger())

	require.NoError(t, r.Resync(ctx, uuid.New()))
	assert.Empty(t, writer.writes)

	testutil.CreateTestMember(t, tc.DB, tc.User, "555", "topic")
	require.NoError(t, r.Resync(ctx, tc.User.ID))
	require.Len(t, writer.writes, 1)
	assert.Equal(t, 3, writer.writes[0].RowIndex)
	assert.Equal(t, "555", writer.fields[0].Tel)
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, member.IsPermanent(member.ErrWritesDisabled))
	assert.True(t, member.IsPermanent(fmt.Errorf("writing: %w", member.ErrRowNotOwned)))
	assert.True(t, member.IsPermanent(member.ErrNoRow))
	assert.False(t, member.IsPermanent(errors.New("sheet offline")))
}
