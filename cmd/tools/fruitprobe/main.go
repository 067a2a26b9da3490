package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	client "github.com/zhouzirui/fruitstand/backend/internal/client/fruit"
	"github.com/zhouzirui/fruitstand/backend/internal/model/fruit"
)

// fruitprobe exercises a running fruitstand API by hand.
func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file, using system environment")
	}

	app := &cli.App{
		Name:  "fruitprobe",
		Usage: "manual tester for the fruitstand API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "API base URL",
				Value:   "http://localhost:8080",
				EnvVars: []string{"FRUITSTAND_URL"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "request timeout",
				Value: 10 * time.Second,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "create a fruit",
				ArgsUsage: "<name> <price>",
				Action:    runCreate,
			},
			{
				Name:   "list",
				Usage:  "list all fruits",
				Action: runList,
			},
			{
				Name:      "get",
				Usage:     "fetch one fruit",
				ArgsUsage: "<id>",
				Action:    runGet,
			},
			{
				Name:   "watch",
				Usage:  "print fruit events from the live feed until interrupted",
				Action: runWatch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(c *cli.Context) *client.Client {
	return client.New(c.String("addr"), nil)
}

func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, c.Duration("timeout"))
}

func runCreate(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: fruitprobe create <name> <price>", 2)
	}
	price, err := strconv.ParseFloat(c.Args().Get(1), 64)
	if err != nil {
		return cli.Exit(fmt.Sprintf("price must be a number: %v", err), 2)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	created, err := newClient(c).Create(ctx, c.Args().Get(0), price)
	var verr *fruit.ValidationError
	if errors.As(err, &verr) {
		for _, v := range verr.Violations {
			log.WithField("field", v.Field).Warn(v.Message)
		}
		return cli.Exit("rejected by server", 1)
	}
	if err != nil {
		return err
	}
	return printJSON(created)
}

func runList(c *cli.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := newClient(c).List(ctx)
	if err != nil {
		return err
	}
	return printJSON(items)
}

func runGet(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: fruitprobe get <id>", 2)
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return cli.Exit("id must be an integer", 2)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := newClient(c).Get(ctx, id)
	if errors.Is(err, client.ErrNotFound) {
		return cli.Exit(fmt.Sprintf("fruit %d not found", id), 1)
	}
	if err != nil {
		return err
	}
	return printJSON(item)
}

func runWatch(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("addr", c.String("addr")).Info("watching fruit feed")
	return newClient(c).Watch(ctx, func(ev fruit.Event) {
		log.WithFields(log.Fields{
			"id":    ev.Fruit.ID,
			"name":  ev.Fruit.Name,
			"price": ev.Fruit.Price,
			"at":    ev.At.Format(time.RFC3339),
		}).Info(ev.Type)
	})
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
