package services

import (
	"testing"

	"vinvest/internal/models"
	"vinvest/internal/testutil"
)

func TestUpsertRiskProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewRiskProfileService(db)

	has, err := svc.HasRiskProfile("r@test.com")
	testutil.AssertNoError(t, err)
	if has {
		t.Fatal("expected no profile yet")
	}

	_, err = svc.GetRiskProfile("r@test.com")
	testutil.AssertAppError(t, err, "RISK_PROFILE_NOT_FOUND")

	created, err := svc.UpsertRiskProfile("r@test.com", models.RiskProfile{Age: "18-24", InvestmentGoal: "Growth"})
	testutil.AssertNoError(t, err)
	if !created {
		t.Error("expected first upsert to create")
	}

	created, err = svc.UpsertRiskProfile("R@test.com", models.RiskProfile{Age: "35-44", InvestmentGoal: "Income", NetWorth: "$1M+"})
	testutil.AssertNoError(t, err)
	if created {
		t.Error("expected second upsert to update")
	}

	profile, err := svc.GetRiskProfile("r@test.com")
	testutil.AssertNoError(t, err)
	if profile.Age != "35-44" || profile.InvestmentGoal != "Income" || profile.NetWorth != "$1M+" {
		t.Errorf("unexpected profile %+v", profile)
	}

	var count int64
	db.Model(&models.RiskProfile{}).Count(&count)
	if count != 1 {
		t.Errorf("expected one row, got %d", count)
	}

	has, err = svc.HasRiskProfile("r@test.com")
	testutil.AssertNoError(t, err)
	if !has {
		t.Error("expected profile to exist")
	}
}

func TestUpsertRiskProfile_RequiresUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewRiskProfileService(db)

	_, err := svc.UpsertRiskProfile("  ", models.RiskProfile{})
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}
