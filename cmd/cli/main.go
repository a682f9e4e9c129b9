package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/bus-seat-reservation/internal/cli"
	"github.com/iliyamo/bus-seat-reservation/internal/console"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
	"github.com/iliyamo/bus-seat-reservation/internal/seed"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)

	reg := repository.NewRegistry()
	bookings, err := seed.Load(reg, time.Now())
	if err != nil {
		log.WithError(err).Fatal("load sample data")
	}
	fmt.Println("Sample data loaded. Tickets issued for the sample passengers:")
	for _, b := range bookings {
		console.WriteTicket(os.Stdout, b.Trip, b.Seat)
	}
	console.WriteReport(os.Stdout, reg.Summary())
	fmt.Println()

	if err := cli.NewMenu(reg, os.Stdin, os.Stdout, log).Run(); err != nil {
		log.WithError(err).Fatal("menu stopped")
	}
}
