package services

import (
	"testing"
	"time"

	"vinvest/internal/models"
	"vinvest/internal/testutil"

	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("alice", "alice@example.com", "password123")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID")
		}
		if user.Username != "alice" {
			t.Errorf("expected username alice, got %s", user.Username)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")); err != nil {
			t.Error("expected password to be stored as a bcrypt hash")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("dup", "dup@example.com", "password123")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("dup2", "DUP@example.com", "password456")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("empty_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("x", "", "password123")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("email_normalized_to_lowercase", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("alice", " Alice@EXAMPLE.COM ", "password123")
		testutil.AssertNoError(t, err)

		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
	})
}

func TestGetUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUser(t, db)
		name, err := svc.GetUsername(user.Email)
		testutil.AssertNoError(t, err)
		if name != user.Username {
			t.Errorf("expected %s, got %s", user.Username, name)
		}
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.GetUsername("ghost@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestDeleteUserData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	for _, u := range []*models.User{user, other} {
		testutil.CreateTestHolding(t, db, u.Email, "AAPL", 1, 100)
		testutil.CreateTestRiskProfile(t, db, u.Email)
		testutil.CreateTestAdviceLog(t, db, u.Email, "hold", time.Now())
		testutil.CreateTestSnapshot(t, db, u.Email, 100, time.Now())
	}
	testutil.CreateTestSubscription(t, db, user.Email, true, nil)

	testutil.AssertNoError(t, svc.DeleteUserData(user.Email))

	for _, model := range []interface{}{&models.Holding{}, &models.RiskProfile{}, &models.AdviceLog{}, &models.PortfolioSnapshot{}} {
		var count int64
		db.Model(model).Where("user_email = ?", user.Email).Count(&count)
		if count != 0 {
			t.Errorf("expected %T rows to be deleted, %d remain", model, count)
		}
		db.Model(model).Where("user_email = ?", other.Email).Count(&count)
		if count != 1 {
			t.Errorf("expected other user's %T row to remain, got %d", model, count)
		}
	}

	var users int64
	db.Model(&models.User{}).Where("email = ?", user.Email).Count(&users)
	if users != 0 {
		t.Error("expected user row to be deleted")
	}

	var subs int64
	db.Model(&models.Subscription{}).Where("user_email = ?", user.Email).Count(&subs)
	if subs != 1 {
		t.Error("expected subscription to be retained")
	}
}
