package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

func Test_Load(t *testing.T) {
	gen, err := genesis.Load("")
	if err != nil {
		t.Fatalf("Should be able to load the default genesis: %s", err)
	}

	if gen != genesis.Default() {
		t.Fatalf("Should get back the default genesis for an empty path.")
	}

	path := filepath.Join(t.TempDir(), "genesis.json")
	content := `{"date":"2024-01-01T00:00:00Z","version":"0x1","difficulty":2.5,"mining_reward":10}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Should be able to write the genesis file: %s", err)
	}

	gen, err = genesis.Load(path)
	if err != nil {
		t.Fatalf("Should be able to load the genesis file: %s", err)
	}

	if gen.ProtocolVersion != "0x1" || gen.Difficulty != 2.5 || gen.MiningReward != 10 {
		t.Fatalf("Should get back the values from the file: %+v", gen)
	}

	if err := os.WriteFile(path, []byte(`{"mining_reward":10}`), 0600); err != nil {
		t.Fatalf("Should be able to write the genesis file: %s", err)
	}

	if _, err := genesis.Load(path); err == nil {
		t.Fatalf("Should reject a genesis file without a version.")
	}

	if _, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("Should fail for a missing file.")
	}
}
