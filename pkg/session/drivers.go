package session

import (
	"sort"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // registers the "sqlite" database/sql driver
)

var (
	driversMu sync.RWMutex
	// drivers maps driver names accepted by WithDriver to database/sql driver names.
	drivers = map[string]string{
		"sqlite":   "sqlite",
		"postgres": "pgx",
	}
)

// RegisterDriver makes a database/sql driver available under name.
// Called by driver files in their init() functions; tests may register
// additional names.
func RegisterDriver(name, sqlDriver string) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = sqlDriver
}

// Drivers returns all registered driver names (sorted).
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a driver name is registered.
func IsRegistered(name string) bool {
	_, ok := sqlDriverName(name)
	return ok
}

func sqlDriverName(name string) (string, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	return d, ok
}
