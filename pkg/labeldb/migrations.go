package labeldb

import (
	"github.com/BurntSushi/migration"
	"github.com/cyclopcam/dbh"
	"github.com/cyclopcam/logs"
)

func Migrations(log logs.Log) []migration.Migrator {
	migs := []migration.Migrator{}
	idx := 0

	migs = append(migs, dbh.MakeMigrationFromSQL(log, &idx,
		`
		CREATE TABLE class(
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);

		CREATE TABLE sequence(
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);
		CREATE UNIQUE INDEX idx_sequence_name ON sequence(name);

		CREATE TABLE frame(
			id INTEGER PRIMARY KEY,
			sequence_id INT NOT NULL,
			image_file TEXT NOT NULL,
			width INT NOT NULL,
			height INT NOT NULL
		);
		CREATE INDEX idx_frame_sequence_id ON frame(sequence_id);

		CREATE TABLE box(
			id INTEGER PRIMARY KEY,
			frame_id INT NOT NULL,
			class_id INT NOT NULL,
			x_center REAL NOT NULL,
			y_center REAL NOT NULL,
			w REAL NOT NULL,
			h REAL NOT NULL
		);
		CREATE INDEX idx_box_frame_id ON box(frame_id);
		CREATE INDEX idx_box_class_id ON box(class_id);
	`))

	migs = append(migs, dbh.MakeMigrationFromSQL(log, &idx,
		`
		CREATE TABLE import(
			id INTEGER PRIMARY KEY,
			created_at INT NOT NULL,
			frames INT NOT NULL,
			boxes INT NOT NULL
		);
	`))

	return migs
}
