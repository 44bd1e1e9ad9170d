package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/admotors/inventory/internal/common/config"
	"github.com/admotors/inventory/internal/common/db"
	"github.com/admotors/inventory/internal/common/logger"
	"github.com/admotors/inventory/internal/common/server"
	"github.com/admotors/inventory/internal/common/tracing"
	"github.com/admotors/inventory/internal/device"
	"github.com/admotors/inventory/internal/httpapi"
	"github.com/admotors/inventory/internal/localstore"
	"github.com/admotors/inventory/internal/remote"
	"github.com/admotors/inventory/internal/storage"
	"github.com/admotors/inventory/internal/vehiculo"
)

var (
	configPath = flag.String("config", "configs/inventory-service.json", "config file path")
	consulKey  = flag.String("consul-key", "", "optional Consul KV key holding the JSON config")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// optional config override from Consul KV
	if *consulKey != "" {
		kvCfg, err := config.LoadConfigFromConsulKV(cfg.Consul.Host, cfg.Consul.Port, *consulKey)
		if err != nil {
			log.Warnf("failed to load config from consul kv, keeping file config: %v", err)
		} else {
			cfg = kvCfg
		}
	}

	_, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(&vehiculo.Vehiculo{}, &vehiculo.VehiculoImagen{}); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	store, err := localstore.Open(localstore.Config{
		Path:     cfg.LocalStore.Path,
		InMemory: cfg.LocalStore.InMemory,
	}, log)
	if err != nil {
		log.Fatalf("failed to open localstore: %v", err)
	}
	defer store.Close()

	dev := device.NewManager(store, log)
	log.Infof("running as device %s", dev.DeviceID())

	var objects storage.ObjectStore
	if cfg.Storage.CredentialsFile == "" {
		log.Warn("no storage credentials configured, using in-memory object store")
		objects = storage.NewMemory()
	} else {
		gcs, err := storage.NewGCS(context.Background(), cfg.Storage.Bucket, cfg.Storage.CredentialsFile, cfg.Storage.PublicBaseURL)
		if err != nil {
			log.Fatalf("failed to connect to object store: %v", err)
		}
		defer gcs.Close()
		objects = gcs
	}

	gateway := remote.NewGateway(gormDB, objects, dev, log)
	cache := vehiculo.NewCache(store, log)
	handler := httpapi.NewHandler(gateway, cache, store, dev, log)

	if err := server.RunHTTPServer(cfg, log, handler.Register); err != nil {
		log.Fatalf("inventory-service exited with error: %v", err)
	}
}
