package main

import (
	"testing"

	"github.com/kaspanet/ledgersim/infrastructure/config"
)

func TestRunSimulation(t *testing.T) {
	for _, args := range [][]string{
		{"--nodes=3", "--blocks=6", "--transfers=2", "--topology=ring"},
		{"--nodes=4", "--blocks=5", "--transfers=1", "--topology=mesh", "--async"},
		{"--nodes=2", "--blocks=4", "--topology=line", "--snapshotstore=leveldb"},
	} {
		cfg, err := config.LoadConfig(args)
		if err != nil {
			t.Fatalf("LoadConfig: %+v", err)
		}
		cfg.NetParams().MiningDifficulty = 1

		s, err := newSimulation(cfg)
		if err != nil {
			t.Fatalf("newSimulation: %+v", err)
		}
		s.network.Start()
		for i := 0; i < cfg.Blocks; i++ {
			err = s.mineNextBlock(i)
			if err != nil {
				t.Fatalf("%v: mineNextBlock: %+v", args, err)
			}
			if s.transfersDone < cfg.Transfers {
				err = s.transfer(i)
				if err != nil {
					t.Fatalf("%v: transfer: %+v", args, err)
				}
			}
		}
		err = s.checkAgreement()
		if err != nil {
			t.Fatalf("%v: checkAgreement: %+v", args, err)
		}
		if cfg.Transfers > 0 && s.transfersDone == 0 {
			t.Fatalf("%v: no transfer was made", args)
		}
		for _, n := range s.nodes {
			if n.BlockCount() != cfg.Blocks {
				t.Fatalf("%v: node %s holds %d blocks, want %d", args, n.ID(), n.BlockCount(), cfg.Blocks)
			}
		}
		err = s.network.Close()
		if err != nil {
			t.Fatalf("Close: %+v", err)
		}
	}
}
