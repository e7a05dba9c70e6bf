package main

import (
	"net/http"

	"github.com/urfave/cli/v2"
)

var (
	engineFlag = &cli.StringFlag{
		Name:  "engine",
		Usage: "the trading engine to submit the order to, defaults to the direct one",
	}
	baseFlag = &cli.StringFlag{
		Name:     "base",
		Usage:    "the base currency of the pair",
		Required: true,
	}
	quoteFlag = &cli.StringFlag{
		Name:     "quote",
		Usage:    "the quote currency of the pair",
		Required: true,
	}
	priceFlag = &cli.StringFlag{
		Name:     "price",
		Usage:    "the price of the order",
		Required: true,
	}
)

var marketorder = cli.Command{
	Name:  "marketorder",
	Usage: "submit a single leg market order",
	Flags: []cli.Flag{
		engineFlag,
		baseFlag,
		quoteFlag,
		priceFlag,
		&cli.StringFlag{
			Name:  "side",
			Usage: "buy or sell",
			Value: "buy",
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the amount of base currency to trade",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "quote_amount",
			Usage: "the amount of quote currency committed to the order",
			Value: "0",
		},
	},
	Action: marketOrderAction,
}

var limitorder = cli.Command{
	Name:  "limitorder",
	Usage: "place a limit order",
	Flags: []cli.Flag{
		engineFlag,
		baseFlag,
		quoteFlag,
		priceFlag,
	},
	Action: limitOrderAction,
}

func marketOrderAction(ctx *cli.Context) error {
	resp, err := doRequest(http.MethodPost, "/v1/orders/market", nil, map[string]string{
		"engine":       ctx.String("engine"),
		"base":         ctx.String("base"),
		"quote":        ctx.String("quote"),
		"side":         ctx.String("side"),
		"amount":       ctx.String("amount"),
		"quote_amount": ctx.String("quote_amount"),
		"price":        ctx.String("price"),
	})
	if err != nil {
		return err
	}
	printRespJSON(ctx, resp)
	return nil
}

func limitOrderAction(ctx *cli.Context) error {
	resp, err := doRequest(http.MethodPost, "/v1/orders/limit", nil, map[string]string{
		"engine": ctx.String("engine"),
		"base":   ctx.String("base"),
		"quote":  ctx.String("quote"),
		"price":  ctx.String("price"),
	})
	if err != nil {
		return err
	}
	printRespJSON(ctx, resp)
	return nil
}
