package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/andriwardana/warehouse-sync.git/internal/config"
	"github.com/andriwardana/warehouse-sync.git/internal/inventory"
	kafkax "github.com/andriwardana/warehouse-sync.git/internal/kafka"
	"github.com/andriwardana/warehouse-sync.git/internal/postgres"
	"github.com/andriwardana/warehouse-sync.git/internal/redisx"
	"github.com/joho/godotenv"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis (last-applied sequence per origin)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &inventory.Subscriber{
		Replica: inventory.NewReplicaRepo(db),
		Audit:   &inventory.AuditRepo{DB: db},
		Seqs:    redisx.SeqTracker{R: rdb},
		Origin:  cfg.PeerWarehouse,
	}

	group := getenv("SUBSCRIBER_GROUP", "replica-"+cfg.WarehouseID)
	// one worker keeps per-topic order; raise only if ordering stops mattering
	workers := mustAtoi(os.Getenv("SUBSCRIBER_WORKERS"), "1")
	topic := inventory.UpdatesTopic(cfg.PeerWarehouse)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)

	done := make(chan struct{})
	go func() {
		log.Printf("subscriber started: group=%s topic=%s workers=%d", group, topic, workers)
		cons.Run(ctx, svc.HandleUpdate)
		close(done)
	}()

	// graceful shutdown: cancel releases the consumer loop
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down subscriber...")
	cancel()
	<-done
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
