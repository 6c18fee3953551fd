// cleanup deletes a superseded top-level collection layout after a
// migration has been verified. It is deliberately a separate command from
// the backfill and refuses to run without an exact typed confirmation
// phrase naming the collection.
//
// Usage:
//
//	go run ./cmd/cleanup/ -collection adDailyStats -confirm "DELETE adDailyStats"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/Franna88/medwave-sub001/internal/config"
	"github.com/Franna88/medwave-sub001/internal/store"
)

func main() {
	collection := flag.String("collection", "", "legacy collection to delete (required)")
	confirm := flag.String("confirm", "", `exact confirmation phrase: "DELETE <collection>"`)
	flag.Parse()

	if *collection == "" {
		log.Fatal("[Cleanup] -collection is required")
	}
	expected := fmt.Sprintf("DELETE %s", *collection)
	if *confirm != expected {
		log.Fatalf("[Cleanup] refusing to run: pass -confirm %q", expected)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Cleanup] config: %v", err)
	}

	ctx := context.Background()
	client, err := config.NewFirestoreClient(ctx, cfg)
	if err != nil {
		log.Fatalf("[Cleanup] firestore: %v", err)
	}
	st := store.NewFirestoreStore(client)
	defer st.Close()

	deleted, err := st.DeleteLegacyLayout(ctx, *collection)
	if err != nil {
		log.Fatalf("[Cleanup] deleted %d docs before failing: %v", deleted, err)
	}
	log.Printf("[Cleanup] deleted %d documents from %s", deleted, *collection)
}
