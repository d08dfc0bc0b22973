package main

import (
	"fmt"
	"net/http"
	"time"

	"gitlab.com/contactdeck/contacts-manager/internal/config"
)

// Polls the list endpoint until the service answers, so that scripts and
// compose setups can block on service readiness.
//
// Usage example on the command line:
// > PORT=8080 go run main.go
func main() {
	cfg := config.Load()
	url := fmt.Sprintf("http://localhost:%s/contacts", cfg.Port)
	totalWaitTime := 0
	for {
		res, err := http.Get(url)
		if err == nil {
			if res.StatusCode == http.StatusOK {
				fmt.Println(res)
				break
			}
			fmt.Println(res)
		} else {
			fmt.Println(err)
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds\n", totalWaitTime)
		time.Sleep(5 * time.Second)
	}
}
