// Command fanout inspects and replays Lambda event payloads locally.
//
//	fanout detect event.json
//	fanout replay --fail poison event.json
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambdacontext"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/bjaus/fanout"
)

const (
	appName  = "fanout"
	appUsage = "Inspects and replays Lambda event payloads"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.WithError(err).Fatal("fanout failed")
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = appUsage
	app.ErrWriter = os.Stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "log-level",
			Value:  "info",
			Usage:  "logrus level",
			EnvVar: fanout.EnvPrefix + "LOG_LEVEL",
		},
	}
	app.Before = func(c *cli.Context) error {
		level, err := log.ParseLevel(c.String("log-level"))
		if err != nil {
			return err
		}
		log.SetLevel(level)
		log.SetOutput(c.App.ErrWriter)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:      "detect",
			Usage:     "Print the shape of an event payload",
			ArgsUsage: "FILE",
			Action:    detect,
		},
		{
			Name:      "replay",
			Usage:     "Run an event payload through an echo function and print the response",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				cli.StringSliceFlag{
					Name:  "fail",
					Usage: "fail messages whose body contains `PATTERN` (repeatable)",
				},
				cli.BoolFlag{
					Name:  "disable-advanced",
					Usage: "decode the payload directly instead of splitting batches",
				},
				cli.BoolFlag{
					Name:  "no-report",
					Usage: "disable partial batch responses for every source",
				},
			},
			Action: replay,
		},
	}
	return app
}

func readPayload(c *cli.Context) ([]byte, error) {
	path := c.Args().First()
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	b, err := os.ReadFile(path)
	return b, errors.Wrapf(err, "read %s", path)
}

func detect(c *cli.Context) error {
	raw, err := readPayload(c)
	if err != nil {
		return err
	}
	shape, err := fanout.DetectPayload(raw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, shape)
	return err
}

func replay(c *cli.Context) error {
	raw, err := readPayload(c)
	if err != nil {
		return err
	}

	cfg := fanout.DefaultConfig()
	if c.Bool("disable-advanced") {
		cfg.AdvancedEventHandling.Enabled = false
	}
	if c.Bool("no-report") {
		cfg.AdvancedEventHandling.SQS.ReportBatchItemFailures = false
		cfg.AdvancedEventHandling.Kinesis.ReportBatchItemFailures = false
		cfg.AdvancedEventHandling.DynamoDB.ReportBatchItemFailures = false
		cfg.AdvancedEventHandling.CloudEvents.ReportBatchItemFailures = false
	}

	p, err := fanout.New(echo(c.StringSlice("fail")), fanout.WithConfig(cfg))
	if err != nil {
		return err
	}

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{
		AwsRequestID: uuid.NewString(),
	})
	out, err := p.Invoke(ctx, raw)
	if err != nil {
		return err
	}
	if out == nil {
		log.Info("No response written")
		return nil
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}

// echo returns its input and fails on any body containing one of patterns.
func echo(patterns []string) *fanout.Function {
	return fanout.FuncOf("echo", func(ctx context.Context, in json.RawMessage) (json.RawMessage, error) {
		for _, p := range patterns {
			if p != "" && bytes.Contains(in, []byte(p)) {
				return nil, errors.Errorf("body matches %q", p)
			}
		}
		log.WithField("body", strings.TrimSpace(string(in))).Info("Handled message")
		return in, nil
	})
}
