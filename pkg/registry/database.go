// Package registry loads the serial number to board variant mapping and the
// histogram domain of each variant from the calibration database.
package registry

import (
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx"
	gain "github.com/next-exp/gaincal_go/pkg"
	_ "modernc.org/sqlite"
)

// Schema creates the registry tables. Production databases already hold
// them; it is used for local sqlite registries.
const Schema = `
CREATE TABLE IF NOT EXISTS VariantBounds (
	Variant VARCHAR(16) NOT NULL PRIMARY KEY,
	NBins   INTEGER NOT NULL,
	XMin    DOUBLE NOT NULL,
	XMax    DOUBLE NOT NULL
);
CREATE TABLE IF NOT EXISTS BoardVariants (
	Serial  VARCHAR(16) NOT NULL,
	Variant VARCHAR(16) NOT NULL,
	MinDate CHAR(8) NOT NULL,
	MaxDate CHAR(8) NOT NULL
);`

type DeviceEntry struct {
	Serial  string `db:"Serial"`
	Variant string `db:"Variant"`
}

type BoundsEntry struct {
	Variant string  `db:"Variant"`
	NBins   int     `db:"NBins"`
	XMin    float64 `db:"XMin"`
	XMax    float64 `db:"XMax"`
}

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// OpenSQLite opens a registry stored in a sqlite file, or an in-memory one
// for ":memory:".
func OpenSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every connection would see its own empty database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func CreateSchema(db *sqlx.DB) error {
	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("error creating registry schema: %w", err)
		}
	}
	return nil
}

// LoadDevices returns the boards whose validity interval contains date
// (YYYYMMDD).
func LoadDevices(db *sqlx.DB, date string) ([]DeviceEntry, error) {
	query := db.Rebind("SELECT Serial, Variant FROM BoardVariants WHERE MinDate <= ? and MaxDate >= ? ORDER BY Serial")
	rows, err := db.Queryx(query, date, date)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}
	defer rows.Close()

	var devices []DeviceEntry
	for rows.Next() {
		result := DeviceEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		devices = append(devices, result)
	}
	return devices, rows.Err()
}

func LoadBounds(db *sqlx.DB) ([]BoundsEntry, error) {
	var bounds []BoundsEntry
	err := db.Select(&bounds, "SELECT Variant, NBins, XMin, XMax FROM VariantBounds ORDER BY Variant")
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	return bounds, nil
}

// Populate merges the registry content into table. Database entries
// override the ones coming from the configuration.
func Populate(db *sqlx.DB, date string, table *gain.VariantTable) error {
	bounds, err := LoadBounds(db)
	if err != nil {
		return fmt.Errorf("error getting variant bounds from database: %w", err)
	}
	for _, b := range bounds {
		table.AddVariant(b.Variant, gain.HistogramBounds{NBins: b.NBins, XMin: b.XMin, XMax: b.XMax})
	}

	devices, err := LoadDevices(db, date)
	if err != nil {
		return fmt.Errorf("error getting devices from database: %w", err)
	}
	for _, d := range devices {
		table.AddDevice(d.Serial, d.Variant)
	}
	return nil
}

// AddDevice inserts a board in the registry, valid between two dates.
func AddDevice(db *sqlx.DB, serial, variant, minDate, maxDate string) error {
	query := db.Rebind("INSERT INTO BoardVariants (Serial, Variant, MinDate, MaxDate) VALUES (?, ?, ?, ?)")
	_, err := db.Exec(query, serial, variant, minDate, maxDate)
	return err
}

func AddBounds(db *sqlx.DB, variant string, b gain.HistogramBounds) error {
	query := db.Rebind("INSERT INTO VariantBounds (Variant, NBins, XMin, XMax) VALUES (?, ?, ?, ?)")
	_, err := db.Exec(query, variant, b.NBins, b.XMin, b.XMax)
	return err
}
