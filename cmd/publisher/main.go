package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/example/storefront-core/internal/adapter/natsstan"
	"github.com/example/storefront-core/internal/domain"
)

// Reads one order as JSON from stdin and publishes it to the order feed.
func main() {
	clusterID := getenv("STAN_CLUSTER_ID", "storefront-cluster")
	clientID := getenv("STAN_PUB_ID", "")
	natsURL := getenv("NATS_URL", "nats://localhost:4223")
	subject := getenv("STAN_SUBJECT", "orders")

	var o domain.Order
	if err := json.NewDecoder(os.Stdin).Decode(&o); err != nil {
		log.Fatalf("read order from stdin: %v", err)
	}

	pub, err := natsstan.NewPublisher(clusterID, clientID, natsURL, subject)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pub.Close()

	if err := pub.Publish(o); err != nil {
		log.Fatalf("publish: %v", err)
	}
	log.Printf("published order %s to %s", o.ID, subject)
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
