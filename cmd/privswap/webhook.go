package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var (
	webhook = cli.Command{
		Name:  "webhook",
		Usage: "add or remove webhooks",
		Subcommands: []*cli.Command{
			webhookAddCmd, webhookRemoveCmd,
		},
	}
	listwebhooks = cli.Command{
		Name:  "webhooks",
		Usage: "list all webhooks, optionally filtered by target action",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "action",
				Usage: "PRIVATE_ORDER_UPDATED, PRIVATE_ORDER_COMPLETED, PRIVATE_ORDER_FAILED or *",
			},
		},
		Action: listWebhooksAction,
	}

	webhookAddCmd = &cli.Command{
		Name:  "add",
		Usage: "add a (secured) webhook endpoint called whenever a target action occurs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "endpoint",
				Usage:    "the webhook endpoint to be called whenever the target action occurs",
				Required: true,
			},
			&cli.StringFlag{
				Name: "secret",
				Usage: "the eventual secret to use to generate an OAuth token for " +
					"authenticating requests to the webhook endpoint",
			},
			&cli.StringFlag{
				Name:  "action",
				Usage: "PRIVATE_ORDER_UPDATED, PRIVATE_ORDER_COMPLETED, PRIVATE_ORDER_FAILED or *",
				Value: "*",
			},
		},
		Action: addWebhookAction,
	}
	webhookRemoveCmd = &cli.Command{
		Name:      "remove",
		Usage:     "remove some webhook by its id",
		ArgsUsage: "<id>",
		Action:    removeWebhookAction,
	}
)

func addWebhookAction(ctx *cli.Context) error {
	resp, err := doRequest(http.MethodPost, "/v1/webhooks", nil, map[string]string{
		"action":   ctx.String("action"),
		"endpoint": ctx.String("endpoint"),
		"secret":   ctx.String("secret"),
	})
	if err != nil {
		return err
	}
	printRespJSON(ctx, resp)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	id, err := uuidArg(ctx, "webhook remove")
	if err != nil {
		return err
	}
	if _, err := doRequest(http.MethodDelete, "/v1/webhooks/"+id, nil, nil); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "webhook %s removed\n", id)
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	query := url.Values{}
	if action := ctx.String("action"); action != "" {
		query.Set("action", action)
	}

	resp, err := doRequest(http.MethodGet, "/v1/webhooks", query, nil)
	if err != nil {
		return err
	}
	printRespJSON(ctx, resp)
	return nil
}
