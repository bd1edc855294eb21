package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/urfave/cli/v2"
)

var (
	initiateSwapCommand = cli.Command{
		Name:  "initiate-swap",
		Usage: "Lock deposits for a multi-party atomic swap",
		Flags: []cli.Flag{
			callerFlag,
			&cli.StringSliceFlag{
				Name:     "participant",
				Usage:    "participant party, repeat once per party in deposit order",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "assets",
				Usage:    "deposited assets, JSON encoded: '[{\"ledger\": \"<...>\", \"kind\": <...>, \"unit\": \"<...>\", \"amount\": <...>}, ...]'",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "commitment-hash",
				Usage:    "hex encoded sha256 commitment of the settlement secret",
				Required: true,
			},
			&cli.Int64Flag{
				Name:     "lock-duration",
				Usage:    "seconds until the swap becomes refundable",
				Required: true,
			},
		},
		Action: initiateSwapAction,
	}
	completeSwapCommand = cli.Command{
		Name:  "complete-swap",
		Usage: "Reveal the secret and settle a swap",
		Flags: []cli.Flag{
			callerFlag, idFlag,
			&cli.StringFlag{
				Name:     "secret",
				Usage:    "hex encoded settlement secret",
				Required: true,
			},
		},
		Action: completeSwapAction,
	}
	refundSwapCommand = cli.Command{
		Name:   "refund-swap",
		Usage:  "Return the deposits of an expired swap",
		Flags:  []cli.Flag{callerFlag, idFlag},
		Action: refundSwapAction,
	}
	getSwapCommand = cli.Command{
		Name:   "get-swap",
		Usage:  "Show a swap agreement",
		Flags:  []cli.Flag{idFlag},
		Action: getSwapAction,
	}
	listSwapsCommand = cli.Command{
		Name:   "list-swaps",
		Usage:  "List all swap agreements",
		Action: listSwapsAction,
	}
	createEscrowCommand = cli.Command{
		Name:  "create-escrow",
		Usage: "Lock a deposit behind a condition and an approval",
		Flags: []cli.Flag{
			callerFlag,
			&cli.StringFlag{
				Name:     "depositor",
				Usage:    "party funding the escrow",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "beneficiaries",
				Usage:    "beneficiaries, JSON encoded: '[{\"party\": \"<...>\", \"allocation\": <...>}, ...]'",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "asset",
				Usage:    "escrowed asset, JSON encoded: '{\"ledger\": \"<...>\", \"kind\": <...>, \"unit\": \"<...>\", \"amount\": <...>}'",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "condition",
				Usage: "human readable description of the release condition",
			},
			&cli.Int64Flag{
				Name:  "lock-duration",
				Usage: "seconds until the depositor may reclaim, 0 for no timelock",
			},
		},
		Action: createEscrowAction,
	}
	setConditionMetCommand = cli.Command{
		Name:  "set-condition-met",
		Usage: "Flip the condition gate of an escrow",
		Flags: []cli.Flag{
			callerFlag, idFlag,
			&cli.BoolFlag{Name: "value", Usage: "gate value", Value: true},
		},
		Action: setConditionMetAction,
	}
	setApprovedCommand = cli.Command{
		Name:  "set-approved",
		Usage: "Flip the approval gate of an escrow",
		Flags: []cli.Flag{
			callerFlag, idFlag,
			&cli.BoolFlag{Name: "value", Usage: "gate value", Value: true},
		},
		Action: setApprovedAction,
	}
	claimCommand = cli.Command{
		Name:  "claim",
		Usage: "Claim a beneficiary allocation from a released escrow",
		Flags: []cli.Flag{
			callerFlag, idFlag,
			&cli.StringFlag{
				Name:     "beneficiary",
				Usage:    "claiming party",
				Required: true,
			},
		},
		Action: claimAction,
	}
	refundEscrowCommand = cli.Command{
		Name:   "refund-escrow",
		Usage:  "Return the deposit of an expired escrow to the depositor",
		Flags:  []cli.Flag{callerFlag, idFlag},
		Action: refundEscrowAction,
	}
	getEscrowCommand = cli.Command{
		Name:   "get-escrow",
		Usage:  "Show an escrow agreement",
		Flags:  []cli.Flag{idFlag},
		Action: getEscrowAction,
	}
	listEscrowsCommand = cli.Command{
		Name:   "list-escrows",
		Usage:  "List all escrow agreements",
		Action: listEscrowsAction,
	}
)

func initiateSwapAction(ctx *cli.Context) error {
	var assets json.RawMessage
	if err := json.Unmarshal([]byte(ctx.String("assets")), &assets); err != nil {
		return fmt.Errorf("invalid assets: %s", err)
	}

	return call(ctx, "initiateSwap", map[string]interface{}{
		"caller":         ctx.String("caller"),
		"participants":   ctx.StringSlice("participant"),
		"assets":         assets,
		"commitmentHash": ctx.String("commitment-hash"),
		"lockDuration":   ctx.Int64("lock-duration"),
	})
}

func completeSwapAction(ctx *cli.Context) error {
	return call(ctx, "completeSwap", map[string]interface{}{
		"caller": ctx.String("caller"),
		"id":     ctx.String("id"),
		"secret": ctx.String("secret"),
	})
}

func refundSwapAction(ctx *cli.Context) error {
	return call(ctx, "refundSwap", map[string]interface{}{
		"caller": ctx.String("caller"),
		"id":     ctx.String("id"),
	})
}

func getSwapAction(ctx *cli.Context) error {
	return call(ctx, "getSwap", map[string]interface{}{
		"id": ctx.String("id"),
	})
}

func listSwapsAction(ctx *cli.Context) error {
	return call(ctx, "listSwaps", nil)
}

func createEscrowAction(ctx *cli.Context) error {
	var beneficiaries, asset json.RawMessage
	if err := json.Unmarshal([]byte(ctx.String("beneficiaries")), &beneficiaries); err != nil {
		return fmt.Errorf("invalid beneficiaries: %s", err)
	}
	if err := json.Unmarshal([]byte(ctx.String("asset")), &asset); err != nil {
		return fmt.Errorf("invalid asset: %s", err)
	}

	return call(ctx, "createEscrow", map[string]interface{}{
		"caller":        ctx.String("caller"),
		"depositor":     ctx.String("depositor"),
		"beneficiaries": beneficiaries,
		"asset":         asset,
		"condition":     ctx.String("condition"),
		"lockDuration":  ctx.Int64("lock-duration"),
	})
}

func setConditionMetAction(ctx *cli.Context) error {
	return call(ctx, "setConditionMet", map[string]interface{}{
		"caller": ctx.String("caller"),
		"id":     ctx.String("id"),
		"value":  ctx.Bool("value"),
	})
}

func setApprovedAction(ctx *cli.Context) error {
	return call(ctx, "setApproved", map[string]interface{}{
		"caller": ctx.String("caller"),
		"id":     ctx.String("id"),
		"value":  ctx.Bool("value"),
	})
}

func claimAction(ctx *cli.Context) error {
	return call(ctx, "claimEscrow", map[string]interface{}{
		"caller":      ctx.String("caller"),
		"id":          ctx.String("id"),
		"beneficiary": ctx.String("beneficiary"),
	})
}

func refundEscrowAction(ctx *cli.Context) error {
	return call(ctx, "refundEscrow", map[string]interface{}{
		"caller": ctx.String("caller"),
		"id":     ctx.String("id"),
	})
}

func getEscrowAction(ctx *cli.Context) error {
	return call(ctx, "getEscrow", map[string]interface{}{
		"id": ctx.String("id"),
	})
}

func listEscrowsAction(ctx *cli.Context) error {
	return call(ctx, "listEscrows", nil)
}

type rpcRequest struct {
	Version string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    string `json:"data"`
	} `json:"error,omitempty"`
}

func call(ctx *cli.Context, method string, params interface{}) error {
	body, err := json.Marshal(rpcRequest{
		Version: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, ctx.String("url"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	user, password := ctx.String("rpc-user"), ctx.String("rpc-password")
	if len(user) > 0 || len(password) > 0 {
		login := user + ":" + password
		req.Header.Set(
			"Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(login)),
		)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	// nolint:all
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("unexpected response: %s", string(raw))
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s (%s)", rpcResp.Error.Message, rpcResp.Error.Data)
	}

	return printJSON(rpcResp.Result)
}

func printJSON(resp interface{}) error {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return err
	}

	fmt.Println(string(jsonBytes))
	return nil
}
