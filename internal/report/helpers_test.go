package report

import (
	"testing"

	"github.com/Veraticus/payee-flow/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, testutil.Dec(want).Equal(got), "expected %s, got %s %v", want, got.String(), msgAndArgs)
}
