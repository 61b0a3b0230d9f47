/*
 * kurozora-bot is a Discord bot to search and share the Kurozora catalog.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kurozora/kurozora-bot/pkg/utils"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DBManager handles database operations
type DBManager struct {
	db          *sql.DB
	driver      string
	initialized bool
}

// NewDBManager opens the poll store. An empty postgres DSN is assembled
// from DB_HOST, DB_PORT, DB_NAME, DB_USER and DB_PASSWORD.
func NewDBManager(driver, dsn string) (*DBManager, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case "", DriverSQLite, "sqlite3":
		driver = DriverSQLite
		if dsn == "" {
			dsn = "file:kurozora-bot.db?_pragma=busy_timeout(5000)"
		}
	case DriverPostgres, "postgresql":
		driver = DriverPostgres
		if dsn == "" {
			dsn = postgresDSNFromEnv()
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	utils.InfoLog("Initializing %s database connection", driver)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout())
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		utils.ErrorLog("Failed to connect to database: %v", err)
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	if driver == DriverSQLite {
		// single connection: an in-memory database exists per connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	manager := &DBManager{db: db, driver: driver}
	if err := manager.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	manager.initialized = true
	utils.InfoLog("Database connection successful (%s)", driver)
	return manager, nil
}

// connectTimeout bounds the initial ping and schema setup (DB_CONNECT_TIMEOUT).
func connectTimeout() time.Duration {
	return utils.GetEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second)
}

func postgresDSNFromEnv() string {
	host := utils.GetEnvOrDefault("DB_HOST", "localhost")
	port := utils.GetEnvOrDefault("DB_PORT", "5432")
	dbName := utils.GetEnvOrDefault("DB_NAME", "kurozora_bot")
	user := utils.GetEnvOrDefault("DB_USER", "postgres")
	password := utils.GetEnvOrDefault("DB_PASSWORD", "")

	utils.DebugLog("Connecting to PostgreSQL: host=%s port=%s dbname=%s user=%s", host, port, dbName, user)
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbName, user, password)
}

// IsInitialized returns whether the database is initialized
func (m *DBManager) IsInitialized() bool {
	return m != nil && m.initialized && m.db != nil
}

// Driver reports the SQL driver in use.
func (m *DBManager) Driver() string { return m.driver }

// Close closes the database connection
func (m *DBManager) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	utils.InfoLog("Closing database connection")
	return m.db.Close()
}

// rebind turns ? placeholders into $1, $2... for postgres.
func (m *DBManager) rebind(query string) string {
	if m.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
