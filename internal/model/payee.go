package model

import (
	"strings"

	"github.com/google/uuid"
)

// payeeNamespace scopes name-derived payee identifiers.
var payeeNamespace = uuid.MustParse("6f1d3c5e-8a52-4a8e-9d0b-2f3f2f9d7c41")

// Payee is a counterparty transactions are paid to or received from.
type Payee struct {
	ID   string
	Name string
}

// PayeeIDFromName derives a stable payee identifier from a display name so that
// repeated imports of the same counterparty resolve to one payee.
func PayeeIDFromName(name string) string {
	normalized := strings.ToUpper(strings.Join(strings.Fields(name), " "))
	return uuid.NewSHA1(payeeNamespace, []byte(normalized)).String()
}
