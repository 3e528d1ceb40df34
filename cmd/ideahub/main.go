/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command ideahub prepares the database for the platform: it waits for the
// server, applies the schema and seeds initial data, then exits. Run it
// before the application containers start.
//
//	ideahub              run the startup sequence
//	ideahub rollback ID  revert ledger migrations down to step ID
package main

import (
	"context"
	"errors"
	"os"

	"github.com/tomoncle/ideahub/database"
	"github.com/tomoncle/ideahub/utils"
)

var logger = utils.NewLogger("MAIN")

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "rollback" {
		target := ""
		if len(os.Args) > 2 {
			target = os.Args[2]
		}
		runRollback(cfg, target)
		return
	}

	runStartup(cfg)
}

func loadConfig() (*database.Config, error) {
	if path := os.Getenv("IDEAHUB_CONFIG"); path != "" {
		return database.LoadConfig(path)
	}
	return database.DefaultConfig(), nil
}

func runStartup(cfg *database.Config) {
	startup := database.NewStartup(cfg)
	if err := startup.Run(context.Background()); err != nil {
		var serr *database.StartupError
		if errors.As(err, &serr) {
			logger.Fatalf("startup failed during %s: %v", serr.Phase, serr.Err)
		}
		logger.Fatalf("startup failed: %v", err)
	}
	defer func() { _ = startup.Close() }()

	logger.Info("Database is ready")
}

func runRollback(cfg *database.Config, target string) {
	if _, err := database.InitDatabaseWithOptions(cfg, false); err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer func() { _ = database.CloseDB() }()

	if err := database.RollbackSchemaTo(target); err != nil {
		logger.Fatalf("rollback failed: %v", err)
	}
	logger.Info("Rollback completed")
}
