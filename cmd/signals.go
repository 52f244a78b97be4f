package cmd

import (
	"os"
	"os/signal"
	"syscall"
)

func setupSignals() <-chan os.Signal {
	c := make(chan os.Signal, 1) // Note: A buffered channel is recommended for this; see https://golang.org/pkg/os/signal/#Notify

	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	return c
}
