// SPDX-License-Identifier: GPL-3.0-only

package registrations

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"aventrada-server/db"
	"aventrada-server/models"
	"aventrada-server/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUpsertCreatesPendingRegistration(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	reg, created, err := Upsert(ctx, conn, Input{
		Email:       "  Alice@Example.COM ",
		FullName:    "Alice Doe",
		PhoneNumber: "+1 650-253-0000",
		Preferences: "concerts",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, "alice@example.com", reg.Email)
	assert.Equal(t, "+16502530000", reg.PhoneNumber)
	assert.Equal(t, models.RegistrationPending, reg.Status)
}

func TestUpsertSameEmailDifferentCaseDoesNotDuplicate(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	first, created, err := Upsert(ctx, conn, Input{Email: "bob@example.com"})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := Upsert(ctx, conn, Input{Email: "BOB@example.com", FullName: "Bob", Preferences: "sports"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Bob", second.FullName)
	assert.Equal(t, "sports", second.Preferences)

	var count int64
	require.NoError(t, conn.Model(&models.Registration{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertConcurrentSignupsCreateOneRow(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "signups.db") + "?_busy_timeout=10000&_txlock=immediate"
	t.Setenv("DB_PATH", dsn)
	conn, _, err := db.Open("sqlite")
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(8)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(conn))

	emails := []string{"dana@example.com", "Dana@Example.com", " DANA@EXAMPLE.COM ", "dana@EXAMPLE.com"}
	const workers = 16

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[string]bool{}
		errs    []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			reg, isNew, err := Upsert(context.Background(), conn, Input{
				Email:    emails[i%len(emails)],
				FullName: fmt.Sprintf("Dana %d", i),
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if isNew {
				created++
			}
			ids[reg.ID] = true
		}(i)
	}
	close(start)
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)

	var count int64
	require.NoError(t, conn.Model(&models.Registration{}).Where("email = ?", "dana@example.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
	require.NoError(t, conn.Model(&models.Registration{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertKeepsExistingNameAndApproval(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	_, _, err := Upsert(ctx, conn, Input{Email: "carol@example.com", FullName: "Carol", Status: models.RegistrationApproved})
	require.NoError(t, err)

	reg, created, err := Upsert(ctx, conn, Input{Email: "carol@example.com", FullName: "Someone Else"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Carol", reg.FullName)
	assert.Equal(t, models.RegistrationApproved, reg.Status)
}

func TestUpsertRejectsBadInput(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	_, _, err := Upsert(ctx, conn, Input{Email: "  "})
	assert.Error(t, err)

	_, _, err = Upsert(ctx, conn, Input{Email: "dan@example.com", Status: "banned"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestFindByEmailUnknown(t *testing.T) {
	conn := testutil.NewTestDB(t)

	_, err := FindByEmail(context.Background(), conn, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByEmailIgnoresCase(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	_, _, err := Upsert(ctx, conn, Input{Email: "erin@example.com"})
	require.NoError(t, err)

	reg, err := FindByEmail(ctx, conn, "ERIN@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "erin@example.com", reg.Email)
}

func TestApproveIsIdempotent(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	_, _, err := Upsert(ctx, conn, Input{Email: "frank@example.com"})
	require.NoError(t, err)

	reg, changed, err := Approve(ctx, conn, "Frank@Example.com", false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.RegistrationApproved, reg.Status)

	reg, changed, err = Approve(ctx, conn, "frank@example.com", false)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.RegistrationApproved, reg.Status)
}

func TestApproveMissing(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	_, _, err := Approve(ctx, conn, "ghost@example.com", false)
	assert.ErrorIs(t, err, ErrNotFound)

	reg, changed, err := Approve(ctx, conn, "ghost@example.com", true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.RegistrationApproved, reg.Status)
}

func TestApproveCreateLosesInsertRace(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	// A signup for the same email lands between Approve's lookup and its insert.
	inserted := false
	err := conn.Callback().Create().Before("gorm:create").Register("test:concurrent_signup", func(tx *gorm.DB) {
		if inserted || tx.Statement.Table != "registrations" {
			return
		}
		inserted = true
		now := time.Now()
		err := tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO registrations (id, email, full_name, phone_number, preferences, status, created_at, updated_at) VALUES (?, ?, '', '', '', ?, ?, ?)",
			uuid.NewString(), "race@example.com", models.RegistrationPending, now, now,
		).Error
		if err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)

	reg, changed, err := Approve(ctx, conn, "Race@Example.com", true)
	require.NoError(t, err)
	require.True(t, inserted)
	assert.True(t, changed)
	assert.Equal(t, models.RegistrationApproved, reg.Status)
	assert.Equal(t, "race@example.com", reg.Email)

	stored, err := FindByEmail(ctx, conn, "race@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationApproved, stored.Status)
	assert.Equal(t, reg.ID, stored.ID)

	var count int64
	require.NoError(t, conn.Model(&models.Registration{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestListAndCountByStatus(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, _, err := Upsert(ctx, conn, Input{Email: email})
		require.NoError(t, err)
	}
	_, _, err := Approve(ctx, conn, "b@example.com", false)
	require.NoError(t, err)

	rows, total, err := List(ctx, conn, Filter{Status: models.RegistrationPending, Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 1)

	counts, err := CountByStatus(ctx, conn)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[models.RegistrationPending])
	assert.EqualValues(t, 1, counts[models.RegistrationApproved])

	_, _, err = List(ctx, conn, Filter{Status: "nope", Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestReconcile(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	users := []models.User{
		{Email: "verified@example.com", Password: "x", IsEmailVerified: true},
		{Email: "unverified@example.com", Password: "x"},
		{Email: "admin@example.com", Password: "x", Role: models.RoleAdmin},
	}
	require.NoError(t, conn.Create(&users).Error)
	_, _, err := Upsert(ctx, conn, Input{Email: "verified@example.com"})
	require.NoError(t, err)

	result, err := Reconcile(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Users)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, result.Approved)

	reg, err := FindByEmail(ctx, conn, "unverified@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationPending, reg.Status)

	again, err := Reconcile(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 0, again.Approved)
}
