package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gatehouse/marketplace/test/mockaggregator"
)

func main() {
	addr := flag.String("addr", ":8889", "Server address")
	apiKey := flag.String("api-key", "", "Require this bearer token")
	envelope := flag.Bool("envelope", false, `Wrap responses as {"offers": [...]}`)
	flag.Parse()

	state := mockaggregator.NewState()
	state.SetAPIKey(*apiKey)
	state.SetEnvelope(*envelope)
	server := mockaggregator.NewServer(state)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down mock aggregator...")
		os.Exit(0)
	}()

	log.Printf("Starting mock PSCA aggregator on %s", *addr)
	if err := server.Run(*addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
