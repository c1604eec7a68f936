package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/torosent/glt/internal/content/contenttest"
)

func main() {
	port := flag.Int("port", 8080, "Listening port")
	database := flag.String("database", "/db", "Path containers are created under")
	username := flag.String("username", "root", "Basic auth username (empty disables auth)")
	password := flag.String("password", "root", "Basic auth password")
	latency := flag.Duration("latency", 0, "Delay added to every response")
	flag.Parse()

	if *port <= 0 {
		log.Fatalf("port must be > 0")
	}

	opts := []contenttest.Option{
		contenttest.WithDatabase(*database),
		contenttest.WithLatency(*latency),
	}
	if *username != "" {
		opts = append(opts, contenttest.WithBasicAuth(*username, *password))
	}

	addr := fmt.Sprintf(":%d", *port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           contenttest.NewService(opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("content server listening on %s (database %s)", addr, *database)
	log.Fatal(srv.ListenAndServe())
}
