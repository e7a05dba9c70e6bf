package main

import (
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var orderbook = cli.Command{
	Name:  "orderbook",
	Usage: "get the order book of a pair",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "base",
			Usage:    "the base currency of the pair",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "quote",
			Usage:    "the quote currency of the pair",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "engine",
			Usage: "the trading engine to get the book from, defaults to the direct one",
		},
	},
	Action: orderBookAction,
}

func orderBookAction(ctx *cli.Context) error {
	query := url.Values{}
	query.Set("base", ctx.String("base"))
	query.Set("quote", ctx.String("quote"))
	if engine := ctx.String("engine"); engine != "" {
		query.Set("engine", engine)
	}

	resp, err := doRequest(http.MethodGet, "/v1/orderbook", query, nil)
	if err != nil {
		return err
	}
	printRespJSON(ctx, resp)
	return nil
}
