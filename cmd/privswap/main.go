package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"
)

var (
	privswapDataDir = btcutil.AppDataDir("privswap", false)
	statePath       = filepath.Join(privswapDataDir, "state.json")
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "privswap"
	app.Usage = "Command line interface for privswapd daemon operators"
	app.Commands = append(
		app.Commands,
		&config,
		&orderbook,
		&marketorder,
		&limitorder,
		&listswaps,
		&swap,
		&privateorder,
		&listprivateorders,
		&webhook,
		&listwebhooks,
	)
	return app
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("invalid config state: %w", err)
	}

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(privswapDataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(privswapDataDir, os.ModeDir|0755); err != nil {
			return err
		}
	}

	currentData, err := getState()
	if err != nil {
		currentData = map[string]string{}
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0644); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

func printRespJSON(ctx *cli.Context, resp []byte) {
	if len(resp) <= 0 {
		return
	}
	var out interface{}
	if err := json.Unmarshal(resp, &out); err != nil {
		fmt.Fprintln(ctx.App.Writer, "unable to decode response: ", err)
		return
	}
	buf, _ := json.MarshalIndent(out, "", "\t")
	fmt.Fprintln(ctx.App.Writer, string(buf))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[privswap] %v\n", err)
	}
	os.Exit(1)
}
