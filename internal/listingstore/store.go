// Package listingstore persists published listings and admin accounts in
// SQLite. Column names mirror the historical backend schema, camelCase drift
// included, so records round-trip unchanged through the listing API.
package listingstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("listing not found")

const schema = `
CREATE TABLE IF NOT EXISTS flat_listings (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	title              TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	price_offer        REAL NOT NULL,
	phone_number       TEXT NOT NULL DEFAULT '',
	photos_url         TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL,
	is_active          INTEGER NOT NULL DEFAULT 1,
	is_verified        INTEGER NOT NULL DEFAULT 0,
	sold_price         REAL,
	area               REAL NOT NULL,
	rooms              INTEGER NOT NULL,
	floor              INTEGER NOT NULL,
	totalFloors        INTEGER NOT NULL,
	year               INTEGER NOT NULL,
	buildType          TEXT NOT NULL,
	material           TEXT NOT NULL,
	heating            TEXT NOT NULL,
	market             TEXT NOT NULL,
	constructionStatus TEXT NOT NULL,
	hasLift            INTEGER NOT NULL DEFAULT 0,
	hasOutdoor         INTEGER NOT NULL DEFAULT 0,
	hasParking         INTEGER NOT NULL DEFAULT 0,
	city               TEXT NOT NULL,
	district           TEXT NOT NULL DEFAULT '',
	province           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS house_listings (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	title              TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	price_offer        REAL NOT NULL,
	phone_number       TEXT NOT NULL DEFAULT '',
	photos_url         TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL,
	is_active          INTEGER NOT NULL DEFAULT 1,
	is_verified        INTEGER NOT NULL DEFAULT 0,
	city               TEXT NOT NULL,
	district           TEXT NOT NULL DEFAULT '',
	province           TEXT NOT NULL,
	area               REAL NOT NULL,
	plot_area          REAL NOT NULL,
	rooms              INTEGER NOT NULL,
	floors             INTEGER NOT NULL,
	year               INTEGER NOT NULL,
	buildType          TEXT NOT NULL,
	material           TEXT NOT NULL,
	heating            TEXT NOT NULL,
	market             TEXT NOT NULL,
	constructionStatus TEXT NOT NULL,
	hasGarage          INTEGER NOT NULL DEFAULT 0,
	hasGarden          INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS plot_listings (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	price_offer     REAL NOT NULL,
	phone_number    TEXT NOT NULL DEFAULT '',
	photos_url      TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL,
	is_active       INTEGER NOT NULL DEFAULT 1,
	is_verified     INTEGER NOT NULL DEFAULT 0,
	city            TEXT NOT NULL,
	district        TEXT NOT NULL DEFAULT '',
	province        TEXT NOT NULL,
	area            REAL NOT NULL,
	plot_type       TEXT NOT NULL,
	has_electricity INTEGER NOT NULL DEFAULT 0,
	has_water       INTEGER NOT NULL DEFAULT 0,
	has_gas         INTEGER NOT NULL DEFAULT 0,
	has_sewage      INTEGER NOT NULL DEFAULT 0,
	access_road     TEXT NOT NULL DEFAULT '',
	is_fenced       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS admin_users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'admin',
	is_active     INTEGER NOT NULL DEFAULT 1
);
`

// FlatListing is one published flat offer.
type FlatListing struct {
	ID          int64    `db:"id" json:"id"`
	Title       string   `db:"title" json:"title"`
	Description string   `db:"description" json:"description"`
	PriceOffer  float64  `db:"price_offer" json:"price_offer"`
	PhoneNumber string   `db:"phone_number" json:"phone_number"`
	PhotosURL   string   `db:"photos_url" json:"photos_url"`
	CreatedAt   string   `db:"created_at" json:"created_at"`
	IsActive    bool     `db:"is_active" json:"is_active"`
	IsVerified  bool     `db:"is_verified" json:"is_verified"`
	SoldPrice   *float64 `db:"sold_price" json:"sold_price"`

	Area               float64 `db:"area" json:"area"`
	Rooms              int     `db:"rooms" json:"rooms"`
	Floor              int     `db:"floor" json:"floor"`
	TotalFloors        int     `db:"totalFloors" json:"totalFloors"`
	Year               int     `db:"year" json:"year"`
	BuildType          string  `db:"buildType" json:"buildType"`
	Material           string  `db:"material" json:"material"`
	Heating            string  `db:"heating" json:"heating"`
	Market             string  `db:"market" json:"market"`
	ConstructionStatus string  `db:"constructionStatus" json:"constructionStatus"`
	HasLift            int     `db:"hasLift" json:"hasLift"`
	HasOutdoor         int     `db:"hasOutdoor" json:"hasOutdoor"`
	HasParking         int     `db:"hasParking" json:"hasParking"`

	City     string `db:"city" json:"city"`
	District string `db:"district" json:"district"`
	Province string `db:"province" json:"province"`
}

// HouseListing is one published house offer.
type HouseListing struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	PriceOffer  float64 `db:"price_offer" json:"price_offer"`
	PhoneNumber string  `db:"phone_number" json:"phone_number"`
	PhotosURL   string  `db:"photos_url" json:"photos_url"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	IsActive    bool    `db:"is_active" json:"is_active"`
	IsVerified  bool    `db:"is_verified" json:"is_verified"`

	City     string `db:"city" json:"city"`
	District string `db:"district" json:"district"`
	Province string `db:"province" json:"province"`

	Area               float64 `db:"area" json:"area"`
	PlotArea           float64 `db:"plot_area" json:"plot_area"`
	Rooms              int     `db:"rooms" json:"rooms"`
	Floors             int     `db:"floors" json:"floors"`
	Year               int     `db:"year" json:"year"`
	BuildType          string  `db:"buildType" json:"buildType"`
	Material           string  `db:"material" json:"material"`
	Heating            string  `db:"heating" json:"heating"`
	Market             string  `db:"market" json:"market"`
	ConstructionStatus string  `db:"constructionStatus" json:"constructionStatus"`
	HasGarage          int     `db:"hasGarage" json:"hasGarage"`
	HasGarden          int     `db:"hasGarden" json:"hasGarden"`
}

// PlotListing is one published plot offer.
type PlotListing struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	PriceOffer  float64 `db:"price_offer" json:"price_offer"`
	PhoneNumber string  `db:"phone_number" json:"phone_number"`
	PhotosURL   string  `db:"photos_url" json:"photos_url"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	IsActive    bool    `db:"is_active" json:"is_active"`
	IsVerified  bool    `db:"is_verified" json:"is_verified"`

	City     string `db:"city" json:"city"`
	District string `db:"district" json:"district"`
	Province string `db:"province" json:"province"`

	Area           float64 `db:"area" json:"area"`
	PlotType       string  `db:"plot_type" json:"plot_type"`
	HasElectricity int     `db:"has_electricity" json:"has_electricity"`
	HasWater       int     `db:"has_water" json:"has_water"`
	HasGas         int     `db:"has_gas" json:"has_gas"`
	HasSewage      int     `db:"has_sewage" json:"has_sewage"`
	AccessRoad     string  `db:"access_road" json:"access_road"`
	IsFenced       int     `db:"is_fenced" json:"is_fenced"`
}

// AdminUser is one account allowed to call the admin routes.
type AdminUser struct {
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	IsActive     bool   `db:"is_active"`
}

// Summary is the cross-kind row returned by the admin listing view.
type Summary struct {
	ID         int64   `db:"id" json:"id"`
	Type       string  `json:"type"`
	Title      string  `db:"title" json:"title"`
	Price      float64 `db:"price_offer" json:"price"`
	City       string  `db:"city" json:"city"`
	IsVerified bool    `db:"is_verified" json:"is_verified"`
	IsActive   bool    `db:"is_active" json:"is_active"`
	CreatedAt  string  `db:"created_at" json:"created_at"`
}

var tables = map[string]string{
	"flat":  "flat_listings",
	"house": "house_listings",
	"plot":  "plot_listings",
}

func tableFor(typ string) (string, error) {
	table, ok := tables[typ]
	if !ok {
		return "", fmt.Errorf("invalid listing type: %s", typ)
	}
	return table, nil
}

type Store struct {
	db *sqlx.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// --- flats ---

func (s *Store) CreateFlat(ctx context.Context, l *FlatListing) (int64, error) {
	l.CreatedAt = now()
	l.IsActive = true
	res, err := s.db.NamedExecContext(ctx, `INSERT INTO flat_listings
		(title, description, price_offer, phone_number, photos_url, created_at, is_active, is_verified, sold_price,
		 area, rooms, floor, totalFloors, year, buildType, material, heating, market, constructionStatus,
		 hasLift, hasOutdoor, hasParking, city, district, province)
		VALUES (:title, :description, :price_offer, :phone_number, :photos_url, :created_at, :is_active, :is_verified, :sold_price,
		 :area, :rooms, :floor, :totalFloors, :year, :buildType, :material, :heating, :market, :constructionStatus,
		 :hasLift, :hasOutdoor, :hasParking, :city, :district, :province)`, l)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	l.ID = id
	return id, nil
}

func (s *Store) ActiveFlats(ctx context.Context) ([]FlatListing, error) {
	out := []FlatListing{}
	err := s.db.SelectContext(ctx, &out, "SELECT * FROM flat_listings WHERE is_active = 1 ORDER BY id")
	return out, err
}

func (s *Store) GetFlat(ctx context.Context, id int64) (*FlatListing, error) {
	var l FlatListing
	err := s.db.GetContext(ctx, &l, "SELECT * FROM flat_listings WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// --- houses ---

func (s *Store) CreateHouse(ctx context.Context, l *HouseListing) (int64, error) {
	l.CreatedAt = now()
	l.IsActive = true
	res, err := s.db.NamedExecContext(ctx, `INSERT INTO house_listings
		(title, description, price_offer, phone_number, photos_url, created_at, is_active, is_verified,
		 city, district, province, area, plot_area, rooms, floors, year,
		 buildType, material, heating, market, constructionStatus, hasGarage, hasGarden)
		VALUES (:title, :description, :price_offer, :phone_number, :photos_url, :created_at, :is_active, :is_verified,
		 :city, :district, :province, :area, :plot_area, :rooms, :floors, :year,
		 :buildType, :material, :heating, :market, :constructionStatus, :hasGarage, :hasGarden)`, l)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	l.ID = id
	return id, nil
}

func (s *Store) ActiveHouses(ctx context.Context) ([]HouseListing, error) {
	out := []HouseListing{}
	err := s.db.SelectContext(ctx, &out, "SELECT * FROM house_listings WHERE is_active = 1 ORDER BY id")
	return out, err
}

func (s *Store) GetHouse(ctx context.Context, id int64) (*HouseListing, error) {
	var l HouseListing
	err := s.db.GetContext(ctx, &l, "SELECT * FROM house_listings WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// --- plots ---

func (s *Store) CreatePlot(ctx context.Context, l *PlotListing) (int64, error) {
	l.CreatedAt = now()
	l.IsActive = true
	res, err := s.db.NamedExecContext(ctx, `INSERT INTO plot_listings
		(title, description, price_offer, phone_number, photos_url, created_at, is_active, is_verified,
		 city, district, province, area, plot_type,
		 has_electricity, has_water, has_gas, has_sewage, access_road, is_fenced)
		VALUES (:title, :description, :price_offer, :phone_number, :photos_url, :created_at, :is_active, :is_verified,
		 :city, :district, :province, :area, :plot_type,
		 :has_electricity, :has_water, :has_gas, :has_sewage, :access_road, :is_fenced)`, l)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	l.ID = id
	return id, nil
}

func (s *Store) ActivePlots(ctx context.Context) ([]PlotListing, error) {
	out := []PlotListing{}
	err := s.db.SelectContext(ctx, &out, "SELECT * FROM plot_listings WHERE is_active = 1 ORDER BY id")
	return out, err
}

func (s *Store) GetPlot(ctx context.Context, id int64) (*PlotListing, error) {
	var l PlotListing
	err := s.db.GetContext(ctx, &l, "SELECT * FROM plot_listings WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// --- cross-kind mutations ---

// SetActive sets the active flag directly; the public DELETE route uses it to
// soft-deactivate instead of removing the row.
func (s *Store) SetActive(ctx context.Context, typ string, id int64, active bool) error {
	table, err := tableFor(typ)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "UPDATE "+table+" SET is_active = ? WHERE id = ?", boolToInt(active), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ToggleVerify flips is_verified and returns the new value.
func (s *Store) ToggleVerify(ctx context.Context, typ string, id int64) (bool, error) {
	return s.toggleFlag(ctx, typ, id, "is_verified")
}

// ToggleActive flips is_active and returns the new value.
func (s *Store) ToggleActive(ctx context.Context, typ string, id int64) (bool, error) {
	return s.toggleFlag(ctx, typ, id, "is_active")
}

func (s *Store) toggleFlag(ctx context.Context, typ string, id int64, column string) (bool, error) {
	table, err := tableFor(typ)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, "UPDATE "+table+" SET "+column+" = NOT "+column+" WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	if err := requireRow(res); err != nil {
		return false, err
	}
	var value bool
	if err := s.db.GetContext(ctx, &value, "SELECT "+column+" FROM "+table+" WHERE id = ?", id); err != nil {
		return false, err
	}
	return value, nil
}

// Delete permanently removes a listing row.
func (s *Store) Delete(ctx context.Context, typ string, id int64) error {
	table, err := tableFor(typ)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// offerColumns are the only columns the admin PATCH may touch.
var offerColumns = map[string]string{
	"title":        "title",
	"description":  "description",
	"price_offer":  "price_offer",
	"phone_number": "phone_number",
	"photos_url":   "photos_url",
	"is_verified":  "is_verified",
	"is_active":    "is_active",
}

// UpdateOffer patches the allowed offer fields; unknown fields are ignored.
func (s *Store) UpdateOffer(ctx context.Context, typ string, id int64, fields map[string]any) error {
	table, err := tableFor(typ)
	if err != nil {
		return err
	}
	var set []string
	var args []any
	for field, value := range fields {
		column, ok := offerColumns[field]
		if !ok {
			continue
		}
		set = append(set, column+" = ?")
		if b, isBool := value.(bool); isBool {
			value = boolToInt(b)
		}
		args = append(args, value)
	}
	if len(set) == 0 {
		return nil
	}
	// Deterministic column order keeps the statement cacheable.
	sortSet(set, args)
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, "UPDATE "+table+" SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Summaries returns the admin rows for one type or all three, with optional
// status (active/inactive) and verification filters.
func (s *Store) Summaries(ctx context.Context, typ, status string, verified *bool) ([]Summary, error) {
	types := []string{"flat", "house", "plot"}
	if typ != "" && typ != "all" {
		if _, err := tableFor(typ); err != nil {
			return nil, err
		}
		types = []string{typ}
	}

	out := []Summary{}
	for _, t := range types {
		table := tables[t]
		query := "SELECT id, title, price_offer, city, is_verified, is_active, created_at FROM " + table
		var where []string
		var args []any
		switch status {
		case "active":
			where = append(where, "is_active = 1")
		case "inactive":
			where = append(where, "is_active = 0")
		}
		if verified != nil {
			where = append(where, "is_verified = ?")
			args = append(args, boolToInt(*verified))
		}
		if len(where) > 0 {
			query += " WHERE " + strings.Join(where, " AND ")
		}
		query += " ORDER BY id"

		rows := []Summary{}
		if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].Type = t
		}
		out = append(out, rows...)
	}
	return out, nil
}

// --- admin accounts ---

func (s *Store) UpsertAdmin(ctx context.Context, u *AdminUser) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT OR REPLACE INTO admin_users
		(username, password_hash, role, is_active)
		VALUES (:username, :password_hash, :role, :is_active)`, u)
	return err
}

func (s *Store) AdminByUsername(ctx context.Context, username string) (*AdminUser, error) {
	var u AdminUser
	err := s.db.GetContext(ctx, &u, "SELECT * FROM admin_users WHERE username = ?", username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// sortSet sorts "col = ?" clauses and their args in lockstep by column name.
func sortSet(set []string, args []any) {
	for i := 1; i < len(set); i++ {
		for j := i; j > 0 && set[j] < set[j-1]; j-- {
			set[j], set[j-1] = set[j-1], set[j]
			args[j], args[j-1] = args[j-1], args[j]
		}
	}
}
