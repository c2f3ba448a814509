package config

// DefaultDatabasePath is where the SQLite database lives unless
// DATABASE_PATH is set.
const DefaultDatabasePath = "./pressroom.db"
