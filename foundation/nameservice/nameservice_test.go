package nameservice_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/nameservice"
)

const (
	success = "✓"
	failed  = "✗"
)

func Test_Lookup(t *testing.T) {
	ns, err := nameservice.New([]string{"alice:a", "b", " "})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the name service: %v", failed, err)
	}

	tt := []struct {
		addr wallet.Address
		name string
	}{
		{addr: "1HUBHMij46Hae75JPdWjeZ5Q7KaL7EFRSD", name: "alice"},
		{addr: "1JPKvyowP76tLJ6B3yvxB5ZgJPBRu1d9UV", name: "b"},
		{addr: "1Fcz4Q7yz2HFYrzpBvBfSrJB3yaaoYVwbE", name: "1Fcz4Q7yz2HFYrzpBvBfSrJB3yaaoYVwbE"},
	}

	t.Log("Given the need to look up names for addresses.")
	{
		for testID, tst := range tt {
			if got := ns.Lookup(tst.addr); got != tst.name {
				t.Fatalf("\t%s\tTest %d:\tShould get %q, got %q", failed, testID, tst.name, got)
			}
			t.Logf("\t%s\tTest %d:\tShould get %q.", success, testID, tst.name)
		}

		if len(ns.Copy()) != 2 {
			t.Fatalf("\t%s\tShould hold two names, got %d", failed, len(ns.Copy()))
		}
		t.Logf("\t%s\tShould hold two names.", success)
	}
}
