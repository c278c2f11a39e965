package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "vinvest/internal/errors"
)

// AssertAppError fails unless err is an *AppError carrying expectedCode.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		t.Fatalf("expected %s, got nil", expectedCode)
	case !errors.As(err, &appErr):
		t.Fatalf("expected %s, got %T: %v", expectedCode, err, err)
	case appErr.Code != expectedCode:
		t.Errorf("expected %s, got %s (%s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError stops the test on any error.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertMoney compares an amount at two decimal places, the precision every
// response and snapshot uses.
func AssertMoney(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if s := got.StringFixed(2); s != want {
		t.Errorf("expected %s, got %s", want, s)
	}
}
