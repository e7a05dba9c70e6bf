package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v2"
)

var (
	listswaps = cli.Command{
		Name:  "swaps",
		Usage: "list all swaps submitted to the trading engines",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "only_open",
				Usage: "list only swaps still in progress",
			},
			&cli.BoolFlag{
				Name:  "only_private",
				Usage: "list only the first legs of private orders",
			},
			&cli.BoolFlag{
				Name:  "include_hidden",
				Usage: "list also hidden swaps",
			},
		},
		Action: listSwapsAction,
	}

	swap = cli.Command{
		Name:  "swap",
		Usage: "hide or remove swaps from history",
		Subcommands: []*cli.Command{
			{
				Name:      "hide",
				Usage:     "hide a swap from the default listing",
				ArgsUsage: "<uuid>",
				Action:    hideSwapAction,
			},
			{
				Name:      "remove",
				Usage:     "remove a terminal swap from history",
				ArgsUsage: "<uuid>",
				Action:    removeSwapAction,
			},
		},
	}
)

func listSwapsAction(ctx *cli.Context) error {
	query := url.Values{}
	for _, flag := range []string{"only_open", "only_private", "include_hidden"} {
		if ctx.Bool(flag) {
			query.Set(flag, strconv.FormatBool(true))
		}
	}

	resp, err := doRequest(http.MethodGet, "/v1/swaps", query, nil)
	if err != nil {
		return err
	}
	printRespJSON(ctx, resp)
	return nil
}

func hideSwapAction(ctx *cli.Context) error {
	uuid, err := uuidArg(ctx, "swap hide")
	if err != nil {
		return err
	}
	if _, err := doRequest(
		http.MethodPost, fmt.Sprintf("/v1/swaps/%s/hide", uuid), nil, nil,
	); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "swap %s hidden\n", uuid)
	return nil
}

func removeSwapAction(ctx *cli.Context) error {
	uuid, err := uuidArg(ctx, "swap remove")
	if err != nil {
		return err
	}
	if _, err := doRequest(
		http.MethodDelete, fmt.Sprintf("/v1/swaps/%s", uuid), nil, nil,
	); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "swap %s removed\n", uuid)
	return nil
}

func uuidArg(ctx *cli.Context, command string) (string, error) {
	if ctx.NArg() != 1 {
		return "", &invalidUsageError{ctx, command}
	}
	return url.PathEscape(ctx.Args().First()), nil
}
