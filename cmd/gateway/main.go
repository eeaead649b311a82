package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andriwardana/warehouse-sync.git/internal/config"
	"github.com/andriwardana/warehouse-sync.git/internal/httpx"
	"github.com/andriwardana/warehouse-sync.git/internal/inventory"
	kafkax "github.com/andriwardana/warehouse-sync.git/internal/kafka"
	"github.com/andriwardana/warehouse-sync.git/internal/postgres"
	"github.com/andriwardana/warehouse-sync.git/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis (publish sequence counter)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer on this warehouse's updates topic
	prod := kafkax.NewProducer(cfg.KafkaBrokers, inventory.UpdatesTopic(cfg.WarehouseID), 1024)
	prod.Start(ctx)

	// Gateway wiring: products table first, built-in mapping as fallback
	store := inventory.NewRepo(db)
	gw := &inventory.Gateway{
		Catalog: inventory.FallbackCatalog{
			Primary:  &inventory.CatalogRepo{DB: db},
			Fallback: inventory.DefaultMapping,
		},
		Store:     store,
		Publisher: prod,
		Seq:       redisx.SeqCounter{R: rdb},
		Warehouse: cfg.WarehouseID,
	}

	router := httpx.NewRouter()
	sh := &httpx.ScanHandler{
		Gateway:   gw,
		Local:     store,
		Replica:   inventory.NewReplicaRepo(db),
		Warehouse: cfg.WarehouseID,
		Peer:      cfg.PeerWarehouse,
	}
	sh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("gateway %s listening at %s", cfg.WarehouseID, cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // close inbox -> flush & close writer
	cancel()
	prod.WaitClosed() // drain
}
