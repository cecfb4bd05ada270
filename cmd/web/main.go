package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"scoreboard/internal/app"
	"scoreboard/internal/db"
)

func main() {
	cfg := app.LoadConfig()

	var dbConn *sql.DB
	if cfg.DataSource == "postgres" {
		conn, err := db.OpenPostgres(context.Background(), cfg.DBDSN)
		if err != nil {
			log.Printf("database error: %v", err)
			os.Exit(1)
		}
		defer conn.Close()
		if err := db.EnsureSchema(context.Background(), conn); err != nil {
			log.Printf("schema error: %v", err)
			os.Exit(1)
		}
		dbConn = conn
	}

	src, err := app.NewDataSource(cfg, dbConn)
	if err != nil {
		log.Printf("data source error: %v", err)
		os.Exit(1)
	}
	if cfg.AdminTokenHash == "" {
		log.Printf("ADMIN_TOKEN_HASH is empty, admin routes are disabled")
	}

	r := app.NewRouter(cfg, src, dbConn)

	log.Printf("scoreboard web listening on %s (data source: %s)", cfg.HTTPAddr, cfg.DataSource)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
