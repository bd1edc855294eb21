package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "dev"

var (
	urlFlag = &cli.StringFlag{
		Name:    "url",
		Usage:   "the url of the lockstep daemon to connect to",
		Value:   "http://localhost:7070",
		EnvVars: []string{"LOCKSTEP_URL"},
	}
	rpcUserFlag = &cli.StringFlag{
		Name:    "rpc-user",
		Usage:   "rpc username, leave empty if the daemon runs without auth",
		EnvVars: []string{"LOCKSTEP_RPC_USER"},
	}
	rpcPasswordFlag = &cli.StringFlag{
		Name:    "rpc-password",
		Usage:   "rpc password, leave empty if the daemon runs without auth",
		EnvVars: []string{"LOCKSTEP_RPC_PASSWORD"},
	}
	callerFlag = &cli.StringFlag{
		Name:  "caller",
		Usage: "party on whose behalf the operation runs",
	}
	idFlag = &cli.StringFlag{
		Name:     "id",
		Usage:    "agreement id",
		Required: true,
	}
)

func main() {
	app := cli.NewApp()

	app.Version = version
	app.Name = "Lockstep CLI"
	app.Usage = "conditional settlement command line interface"
	app.Commands = append(
		app.Commands,
		&initiateSwapCommand,
		&completeSwapCommand,
		&refundSwapCommand,
		&getSwapCommand,
		&listSwapsCommand,
		&createEscrowCommand,
		&setConditionMetCommand,
		&setApprovedCommand,
		&claimCommand,
		&refundEscrowCommand,
		&getEscrowCommand,
		&listEscrowsCommand,
	)
	app.Flags = []cli.Flag{
		urlFlag,
		rpcUserFlag,
		rpcPasswordFlag,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(fmt.Errorf("error: %v", err))
		os.Exit(1)
	}
}
