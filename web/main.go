package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-sphere-animation/web/server"
)

// endpoints lists the routes registered by server.NewServer
var endpoints = []string{
	"GET /api/health                              - liveness check",
	"GET /api/scenes                              - available scenes",
	"GET /api/frame?scene=&frame=&width=&height=  - one frame as PNG",
	"GET /api/inspect?scene=&frame=&x=&y=         - sphere layers under a pixel",
	"GET /api/render?scene=&start=&end=&mode=     - stream frames as server-sent events",
}

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	flag.Parse()

	// Create and start web server
	webServer := server.NewServer(*port)

	log.Printf("Sphere Animation Preview Server on http://localhost:%d", *port)
	for _, endpoint := range endpoints {
		log.Printf("  %s", endpoint)
	}

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
