package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/reconcile"
)

// WebhookPayload mirrors the gateway callback wire format
type WebhookPayload struct {
	PaymentID     string `json:"payment_id"`
	OrderRef      string `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
	PayAmount     string `json:"pay_amount,omitempty"`
	PayCurrency   string `json:"pay_currency,omitempty"`
	ActuallyPaid  string `json:"actually_paid,omitempty"`
}

// WebhookResponse mirrors the reconciliation answer
type WebhookResponse struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Noop          bool   `json:"noop"`
}

// ReplayStats aggregates the outcome of all deliveries
type ReplayStats struct {
	Total        int
	Applied      int
	Noops        int
	Rejected     int
	Errors       int
	StatusCounts map[int]int
	Lock         sync.Mutex
}

func main() {
	// Define command line flags
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	secret := flag.String("secret", "dev-webhook-secret", "Shared webhook secret for HMAC signing")
	paymentID := flag.String("payment", "pay-test-1", "Gateway payment id to report")
	orderRef := flag.String("order", "", "Order ref (correlation key) of the pending deposit")
	status := flag.String("status", "finished", "Gateway payment status to deliver")
	replays := flag.Int("n", 10, "Number of duplicate deliveries to send")
	concurrency := flag.Int("c", 3, "Number of concurrent senders")
	delayMs := flag.Int("delay", 50, "Delay between deliveries per sender in milliseconds")
	tamper := flag.Bool("tamper", false, "Corrupt the signature to exercise rejection")
	flag.Parse()

	payload := WebhookPayload{
		PaymentID:     *paymentID,
		OrderRef:      *orderRef,
		PaymentStatus: *status,
		PayAmount:     "0.0042",
		PayCurrency:   "btc",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Failed to marshal payload: %v\n", err)
		return
	}

	// The same signer the server verifies against, so a delivery only fails
	// when asked to tamper.
	signature := reconcile.NewSignatureVerifier(*secret).Sign(body)
	if *tamper {
		signature = reconcile.NewSignatureVerifier(*secret + "-tampered").Sign(body)
	}

	stats := &ReplayStats{StatusCounts: make(map[int]int)}
	endpoint := *baseURL + "/api/v1/payments/webhook"
	client := &http.Client{Timeout: 10 * time.Second}

	fmt.Printf("Replaying %d deliveries of %q for payment %s against %s\n",
		*replays, *status, *paymentID, endpoint)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				deliver(client, endpoint, body, signature, stats)
				time.Sleep(time.Duration(*delayMs) * time.Millisecond)
			}
		}()
	}
	start := time.Now()
	for i := 0; i < *replays; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	printStats(stats, time.Since(start))
}

func deliver(client *http.Client, endpoint string, body []byte, signature string, stats *ReplayStats) {
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		recordError(stats)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Gateway-Signature", signature)

	resp, err := client.Do(req)
	if err != nil {
		recordError(stats)
		return
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	stats.Lock.Lock()
	defer stats.Lock.Unlock()
	stats.Total++
	stats.StatusCounts[resp.StatusCode]++

	if resp.StatusCode != http.StatusOK {
		stats.Rejected++
		return
	}

	var result WebhookResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		stats.Rejected++
		return
	}
	if result.Noop {
		stats.Noops++
	} else {
		stats.Applied++
	}
}

func recordError(stats *ReplayStats) {
	stats.Lock.Lock()
	defer stats.Lock.Unlock()
	stats.Total++
	stats.Errors++
}

func printStats(stats *ReplayStats, elapsed time.Duration) {
	fmt.Println("\n--- Replay Results ---")
	fmt.Printf("Total deliveries:   %d (in %v)\n", stats.Total, elapsed.Round(time.Millisecond))
	fmt.Printf("Applied:            %d\n", stats.Applied)
	fmt.Printf("Idempotent no-ops:  %d\n", stats.Noops)
	fmt.Printf("Rejected:           %d\n", stats.Rejected)
	fmt.Printf("Transport errors:   %d\n", stats.Errors)
	fmt.Println("Status codes:")
	for code, count := range stats.StatusCounts {
		fmt.Printf("  %d: %d\n", code, count)
	}

	// With a valid signature, exactly one delivery should apply the credit
	// and every other delivery should come back as a no-op.
	if stats.Applied > 1 {
		fmt.Println("\nWARNING: more than one delivery was applied, idempotency is broken")
	}
}
