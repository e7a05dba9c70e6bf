package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v2"
)

var (
	privateorder = cli.Command{
		Name:  "privateorder",
		Usage: "submit and manage private orders routed through the intermediate currency",
		Subcommands: []*cli.Command{
			privateOrderSubmitCmd,
			privateOrderGetCmd,
			privateOrderCancelCmd,
			privateOrderReportCmd,
		},
	}
	listprivateorders = cli.Command{
		Name:  "privateorders",
		Usage: "list all private orders",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "only_open",
				Usage: "list only private orders in progress",
			},
		},
		Action: listPrivateOrdersAction,
	}

	privateOrderSubmitCmd = &cli.Command{
		Name:  "submit",
		Usage: "buy base currency spending quote_amount of quote currency",
		Flags: []cli.Flag{
			baseFlag,
			quoteFlag,
			&cli.StringFlag{
				Name:     "quote_amount",
				Usage:    "the amount of quote currency to spend",
				Required: true,
			},
		},
		Action: submitPrivateOrderAction,
	}
	privateOrderGetCmd = &cli.Command{
		Name:      "get",
		Usage:     "get the status of a private order",
		ArgsUsage: "<uuid>",
		Action:    getPrivateOrderAction,
	}
	privateOrderCancelCmd = &cli.Command{
		Name:      "cancel",
		Usage:     "cancel a private order whose funds have not been withdrawn yet",
		ArgsUsage: "<uuid>",
		Action:    cancelPrivateOrderAction,
	}
	privateOrderReportCmd = &cli.Command{
		Name:      "report",
		Usage:     "tell where the funds of a private order are expected to be",
		ArgsUsage: "<uuid>",
		Action:    reportPrivateOrderAction,
	}
)

func submitPrivateOrderAction(ctx *cli.Context) error {
	resp, err := doRequest(http.MethodPost, "/v1/private-orders", nil, map[string]string{
		"base":         ctx.String("base"),
		"quote":        ctx.String("quote"),
		"quote_amount": ctx.String("quote_amount"),
	})
	if err != nil {
		return err
	}
	printRespJSON(ctx, resp)
	return nil
}

func listPrivateOrdersAction(ctx *cli.Context) error {
	query := url.Values{}
	if ctx.Bool("only_open") {
		query.Set("only_open", strconv.FormatBool(true))
	}

	resp, err := doRequest(http.MethodGet, "/v1/private-orders", query, nil)
	if err != nil {
		return err
	}
	printRespJSON(ctx, resp)
	return nil
}

func getPrivateOrderAction(ctx *cli.Context) error {
	return privateOrderRequest(ctx, "privateorder get", http.MethodGet, "")
}

func cancelPrivateOrderAction(ctx *cli.Context) error {
	return privateOrderRequest(ctx, "privateorder cancel", http.MethodPost, "/cancel")
}

func reportPrivateOrderAction(ctx *cli.Context) error {
	return privateOrderRequest(ctx, "privateorder report", http.MethodGet, "/report")
}

func privateOrderRequest(ctx *cli.Context, command, method, suffix string) error {
	uuid, err := uuidArg(ctx, command)
	if err != nil {
		return err
	}
	resp, err := doRequest(
		method, fmt.Sprintf("/v1/private-orders/%s%s", uuid, suffix), nil, nil,
	)
	if err != nil {
		return err
	}
	printRespJSON(ctx, resp)
	return nil
}
