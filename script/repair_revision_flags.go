package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/yi-nology/stl_backend/biz/dal/db"
	"github.com/yi-nology/stl_backend/biz/revision"
	"github.com/yi-nology/stl_backend/biz/service"
	"github.com/yi-nology/stl_backend/pkg/config"
	"github.com/yi-nology/stl_backend/pkg/database"
	"github.com/yi-nology/stl_backend/pkg/logger"
)

// Rewrites is_active_revision and active_slot from revision_status.
// Usage: go run script/repair_revision_flags.go [-config=./config.yaml] [-apply]

var (
	configPath = flag.String("config", "./config.yaml", "path to config.yaml")
	apply      = flag.Bool("apply", false, "write the repairs; without it only a report is printed")
)

func main() {
	flag.Parse()

	log.Println("========== revision flag repair ==========")
	cfg := config.MustLoad(*configPath)

	zlog, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Service+"-repair")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	gdb, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(gdb); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	isolation, err := database.IsolationLevel(cfg.Database.Isolation)
	if err != nil {
		log.Fatalf("isolation: %v", err)
	}

	manager, err := revision.NewManager(db.NewRevisionStore(gdb, isolation), revision.WithLogger(zlog))
	if err != nil {
		log.Fatalf("revision manager: %v", err)
	}
	svc := service.NewService(gdb, manager, service.WithLogger(zlog))

	report, err := svc.RepairRevisionFlags(context.Background(), *apply)
	if err != nil {
		log.Fatalf("repair failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("write report: %v", err)
	}
	if len(report.MultiActive) > 0 {
		log.Printf("%d lineage(s) hold several ACTIVE rows and were left untouched", len(report.MultiActive))
	}
	if !*apply && len(report.Mismatched) > 0 {
		log.Println("dry run, re-run with -apply to write the repairs")
	}
	log.Println("========== done ==========")
}
