package main

import (
	"bytes"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mufasadev/ramp-reconciler/pkg/signature"
)

var URL, _ = os.LookupEnv("API_URL")
var PORT, _ = os.LookupEnv("API_PORT")
var webhookURL = fmt.Sprintf("http://%s:%s/api/v1/webhooks/paystack", URL, PORT)

const (
	signatureHeader = "x-paystack-signature"
)

// Fires the same signed charge.success event at the service from many workers at once.
// Exactly one delivery per reference should report a change; the rest are redeliveries.
func main() {
	reference := flag.String("reference", "", "transaction txid to settle (must exist in pending state)")
	workers := flag.Int("workers", 20, "concurrent deliveries per round")
	rounds := flag.Int("rounds", 3, "delivery rounds")
	amount := flag.Int64("amount", 150000, "amount in minor units")
	flag.Parse()

	secret := os.Getenv("PAYSTACK_SECRET_KEY")
	if secret == "" {
		fmt.Println("PAYSTACK_SECRET_KEY is required")
		os.Exit(1)
	}
	if *reference == "" {
		*reference = uuid.New().String()
		fmt.Printf("No reference given, using %s (expect 404)\n", *reference)
	}

	body := []byte(fmt.Sprintf(`{"event":"charge.success","data":{"id":%d,"reference":%q,"amount":%d,"currency":"NGN"}}`,
		time.Now().Unix(), *reference, *amount))
	sig := signature.Sign(body, secret)

	client := &http.Client{Timeout: 10 * time.Second}
	for round := 1; round <= *rounds; round++ {
		counts := deliver(client, body, sig, *workers)
		fmt.Printf("round %d: %v\n", round, counts)
	}

	// a tampered delivery must be rejected
	tampered := append(bytes.Clone(body[:len(body)-1]), ' ', '}')
	if code, err := send(client, tampered, sig); err == nil {
		fmt.Printf("tampered delivery: status %d\n", code)
	}
}

func deliver(client *http.Client, body []byte, sig string, workers int) map[int]int {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		counts = make(map[int]int)
	)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			code, err := send(client, body, sig)
			if err != nil {
				fmt.Println("Error sending webhook:", err)
				return
			}
			mu.Lock()
			counts[code]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	return counts
}

func send(client *http.Client, body []byte, sig string) (int, error) {
	req, err := http.NewRequest(http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, sig)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
