// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ava-labs/dagsim/app"
	"github.com/ava-labs/dagsim/config"
)

const header = "dagsim, an Avalanche DAG consensus simulation"

func main() {
	fs := config.BuildFlagSet()
	v, err := config.BuildViper(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Printf("couldn't configure flags: %s\n", err)
		os.Exit(1)
	}

	simConfig, err := config.GetConfig(v)
	if err != nil {
		fmt.Printf("couldn't load config: %s\n", err)
		os.Exit(1)
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("%s: %d nodes, %d transactions, seed %d\n",
			header,
			simConfig.Sim.NumNodes,
			simConfig.Sim.NumTransactions,
			simConfig.Sim.Seed,
		)
	}

	exitCode := app.Run(app.New(simConfig))
	os.Exit(exitCode)
}
