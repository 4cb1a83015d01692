package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/powledger/business/web/errs"
)

const (
	success = "✓"
	failed  = "✗"
)

func Test_Trusted(t *testing.T) {
	base := errors.New("transaction rejected")
	err := fmt.Errorf("submit: %w", errs.NewTrusted(base, http.StatusBadRequest))

	t.Log("Given the need to carry trusted errors through handlers.")
	{
		te := errs.GetTrusted(err)
		if te == nil {
			t.Fatalf("\t%s\tShould find the trusted error.", failed)
		}
		if te.Status != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould keep the status, got %d", failed, te.Status)
		}
		if !errors.Is(err, base) {
			t.Fatalf("\t%s\tShould unwrap to the original error.", failed)
		}
		t.Logf("\t%s\tShould find the trusted error with its status.", success)

		if errs.GetTrusted(base) != nil {
			t.Fatalf("\t%s\tShould not find a trusted error in a plain error.", failed)
		}
		t.Logf("\t%s\tShould not find a trusted error in a plain error.", success)
	}
}
