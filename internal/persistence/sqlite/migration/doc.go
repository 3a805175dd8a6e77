// Package migration applies versioned SQL files to a SQLite database.
//
// Files are read from an fs.FS (normally an embed.FS compiled into the
// binary) and must be named {version}_{description}.sql, e.g.
// "001_initial_schema.sql". Versions must form a gap-free sequence. Each
// file runs in its own transaction and is recorded, with its SHA-256
// checksum, in the schema_migrations table.
//
//	db, err := migration.NewConnectionManager(cfg).GetConnection()
//	...
//	m := migration.NewMigrationManager(migration.NewFileScanner(files, "migrations"),
//		migration.NewSQLiteExecutor(db), migration.DefaultMigrationConfig(), logger)
//	if err := m.RunMigrations(ctx); err != nil { ... }
package migration
