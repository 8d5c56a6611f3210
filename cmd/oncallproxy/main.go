package main

import (
	"log"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"github.com/oncallboard/oncallboard/internal/proxy"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	target := os.Getenv("PROXY_TARGET")
	if target == "" {
		target = "http://localhost:4635"
		log.Println("PROXY_TARGET not set, defaulting to " + target)
	}

	targetURL, err := url.Parse(target)
	if err != nil {
		log.Fatalf("Invalid PROXY_TARGET %q: %v", target, err)
	}

	r := proxy.NewRouter(targetURL)

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start proxy: %v", err)
	}
}
