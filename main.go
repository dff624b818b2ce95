package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"lung-server/confs"
	"lung-server/db"
	"lung-server/inference"
	"lung-server/server"
)

func main() {
	// load config
	cfg, err := confs.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// connect to database
	database, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	classifier := inference.NewONNXClassifier(inference.ONNXConfig{
		ModelPath:         cfg.ModelPath,
		InputName:         cfg.ModelInputName,
		OutputName:        cfg.ModelOutputName,
		SharedLibraryPath: cfg.OnnxRuntimeLib,
	})

	// a missing model is retried on the first prediction
	if err := classifier.Load(); err != nil {
		log.Printf("warning: %v", err)
	}
	log.Printf("Classes: %v", inference.Classes)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run server until SIGINT/SIGTERM
	srv := server.NewServer(cfg, database, classifier)
	err = srv.Start(ctx)
	stop()

	classifier.Close()
	if closeErr := database.Close(); closeErr != nil {
		log.Printf("Error closing database: %v", closeErr)
	}
	if err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}
