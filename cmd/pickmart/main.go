package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop cleanly on SIGTERM, watch loops rely on context cancellation
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		cancel()
	}()

	if err := run(ctx, os.Getenv, os.Getwd, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pickmart:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, getenv func(string) string, getwd func() (string, error), args []string, out io.Writer) error {
	c := NewConfig()

	if err := c.LoadDotEnv(getwd); err != nil {
		return err
	}
	c.LoadEnv(getenv)

	rest, err := c.ParseFlags(args)
	if err != nil {
		return err
	}

	app, err := NewApp(ctx, c, out)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Run(ctx, rest)
}
