package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"vinvest/internal/models"
	"vinvest/internal/testutil"

	"gorm.io/gorm"
)

func newTestAdvisory(db *gorm.DB, gen *testutil.FakeGenerator, now Clock) AdvisoryServicer {
	quotes := testutil.NewFakeQuoteSource(map[string]float64{"AAPL": 150})
	holdings := NewHoldingService(db, now)
	valuation := NewValuationService(holdings, quotes, 2, now)
	news := NewNewsService(holdings, quotes, time.UTC, 2)
	return NewAdvisoryService(db, valuation, news, NewRiskProfileService(db), gen, now)
}

func countAdvice(t *testing.T, db *gorm.DB, email string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.AdviceLog{}).Where("user_email = ?", email).Count(&n).Error; err != nil {
		t.Fatalf("failed to count advice: %v", err)
	}
	return n
}

func TestGetAdvice(t *testing.T) {
	t.Run("generates_and_stores_first_advice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestHolding(t, db, "a@test.com", "AAPL", 10, 100)
		testutil.CreateTestRiskProfile(t, db, "a@test.com")

		gen := &testutil.FakeGenerator{Response: "### Action Plan\n1. Hold"}
		svc := newTestAdvisory(db, gen, fixedClock())

		advice, err := svc.GetAdvice(context.Background(), "a@test.com")
		testutil.AssertNoError(t, err)

		if !advice.Generated {
			t.Error("expected freshly generated advice")
		}
		if advice.Advice != gen.Response {
			t.Errorf("expected model response, got %q", advice.Advice)
		}
		if n := countAdvice(t, db, "a@test.com"); n != 1 {
			t.Errorf("expected 1 stored advice, got %d", n)
		}

		prompt := gen.Prompts[0]
		for _, want := range []string{"AAPL", "Growth", "No Disclaimer."} {
			if !strings.Contains(prompt, want) {
				t.Errorf("expected prompt to contain %q", want)
			}
		}
	})

	t.Run("returns_cached_advice_within_cooldown", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestHolding(t, db, "a@test.com", "AAPL", 10, 100)

		now := fixedClock()
		testutil.CreateTestAdviceLog(t, db, "a@test.com", "stored advice", now().Add(-23*time.Hour))

		gen := &testutil.FakeGenerator{Response: "new advice"}
		svc := newTestAdvisory(db, gen, now)

		advice, err := svc.GetAdvice(context.Background(), "a@test.com")
		testutil.AssertNoError(t, err)

		if advice.Generated {
			t.Error("expected cached advice")
		}
		if advice.Advice != "stored advice" {
			t.Errorf("expected stored advice, got %q", advice.Advice)
		}
		if gen.Calls() != 0 {
			t.Errorf("expected no model calls, got %d", gen.Calls())
		}
	})

	t.Run("regenerates_after_cooldown", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestHolding(t, db, "a@test.com", "AAPL", 10, 100)

		now := fixedClock()
		testutil.CreateTestAdviceLog(t, db, "a@test.com", "stale advice", now().Add(-25*time.Hour))

		gen := &testutil.FakeGenerator{Response: "fresh advice"}
		svc := newTestAdvisory(db, gen, now)

		advice, err := svc.GetAdvice(context.Background(), "a@test.com")
		testutil.AssertNoError(t, err)

		if !advice.Generated || advice.Advice != "fresh advice" {
			t.Errorf("expected fresh advice, got %+v", advice)
		}
		if n := countAdvice(t, db, "a@test.com"); n != 2 {
			t.Errorf("expected 2 stored advice entries, got %d", n)
		}
	})

	t.Run("second_call_hits_cache", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestHolding(t, db, "a@test.com", "AAPL", 10, 100)

		gen := &testutil.FakeGenerator{Response: "only once"}
		svc := newTestAdvisory(db, gen, fixedClock())

		first, err := svc.GetAdvice(context.Background(), "a@test.com")
		testutil.AssertNoError(t, err)
		second, err := svc.GetAdvice(context.Background(), "a@test.com")
		testutil.AssertNoError(t, err)

		if !first.Generated || second.Generated {
			t.Errorf("expected generated then cached, got %v then %v", first.Generated, second.Generated)
		}
		if second.Advice != first.Advice {
			t.Errorf("expected identical advice, got %q", second.Advice)
		}
		if gen.Calls() != 1 {
			t.Errorf("expected 1 model call, got %d", gen.Calls())
		}
	})

	t.Run("model_failure_is_not_stored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestHolding(t, db, "a@test.com", "AAPL", 10, 100)

		gen := &testutil.FakeGenerator{Err: errors.New("quota exceeded")}
		svc := newTestAdvisory(db, gen, fixedClock())

		advice, err := svc.GetAdvice(context.Background(), "a@test.com")
		testutil.AssertNoError(t, err)

		if advice.Generated || !advice.Failed {
			t.Error("expected failed generation to be flagged")
		}
		if !strings.Contains(advice.Advice, "quota exceeded") {
			t.Errorf("expected error text as advice, got %q", advice.Advice)
		}
		if n := countAdvice(t, db, "a@test.com"); n != 0 {
			t.Errorf("expected nothing stored, got %d", n)
		}
	})
}

func TestGetRiskScore(t *testing.T) {
	t.Run("parses_integer_response", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestHolding(t, db, "r@test.com", "AAPL", 10, 100)

		gen := &testutil.FakeGenerator{Response: " 53\n"}
		svc := newTestAdvisory(db, gen, fixedClock())

		score, err := svc.GetRiskScore(context.Background(), "r@test.com")
		testutil.AssertNoError(t, err)

		if score.Score == nil || *score.Score != 53 {
			t.Errorf("expected score 53, got %v", score.Score)
		}
		if !strings.Contains(gen.Prompts[0], "whole number") {
			t.Error("expected prompt to ask for a whole number")
		}
	})

	t.Run("keeps_raw_text_when_not_numeric", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		gen := &testutil.FakeGenerator{Response: "About 40%"}
		svc := newTestAdvisory(db, gen, fixedClock())

		score, err := svc.GetRiskScore(context.Background(), "r@test.com")
		testutil.AssertNoError(t, err)

		if score.Score != nil {
			t.Errorf("expected no score, got %d", *score.Score)
		}
		if score.Response != "About 40%" {
			t.Errorf("expected raw response, got %q", score.Response)
		}
	})
}

func TestParseRiskScore(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{"100", 100, true},
		{" 42 ", 42, true},
		{"101", 0, false},
		{"-1", 0, false},
		{"42%", 0, false},
		{"42.5", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseRiskScore(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseRiskScore(%q) = %d, %v; want %d, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}
