package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"shiftgrove/server/mapgen"
	"shiftgrove/server/models"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore handles database operations using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL storage manager
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}

	// Initialize the database schema
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema initializes the database schema
func (dm *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		hp INTEGER NOT NULL,
		max_hp INTEGER NOT NULL,
		move_speed DOUBLE PRECISION NOT NULL,
		damage_multiplier DOUBLE PRECISION NOT NULL,
		weapons JSONB NOT NULL DEFAULT '[]',
		upgrades JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS worlds (
		name TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		config JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`

	_, err := dm.db.Exec(schema)
	return err
}

// SavePlayer saves a player to the database
func (dm *PostgresStore) SavePlayer(player *models.Player) error {
	weaponsJSON, err := json.Marshal(nonNil(player.Weapons))
	if err != nil {
		return fmt.Errorf("failed to marshal player weapons: %w", err)
	}
	upgradesJSON, err := json.Marshal(nonNil(player.Upgrades))
	if err != nil {
		return fmt.Errorf("failed to marshal player upgrades: %w", err)
	}

	query := `
	INSERT INTO players (id, username, x, y, hp, max_hp, move_speed, damage_multiplier, weapons, upgrades)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id)
	DO UPDATE SET
		x = $3, y = $4, hp = $5, max_hp = $6,
		move_speed = $7, damage_multiplier = $8,
		weapons = $9, upgrades = $10,
		updated_at = NOW()
	`

	_, err = dm.db.Exec(query,
		player.ID, player.Username, player.X, player.Y,
		player.HP, player.MaxHP, player.MoveSpeed, player.DamageMultiplier,
		string(weaponsJSON), string(upgradesJSON))

	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}

	return nil
}

const playerColumns = `id, username, x, y, hp, max_hp, move_speed, damage_multiplier, weapons, upgrades, created_at, updated_at`

// LoadPlayer loads a player from the database by ID
func (dm *PostgresStore) LoadPlayer(playerID string) (*models.Player, error) {
	row := dm.db.QueryRow(`SELECT `+playerColumns+` FROM players WHERE id = $1`, playerID)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player with ID %s: %w", playerID, ErrNotFound)
	}
	return player, err
}

// LoadPlayerByUsername loads a player from the database by username
func (dm *PostgresStore) LoadPlayerByUsername(username string) (*models.Player, error) {
	row := dm.db.QueryRow(`SELECT `+playerColumns+` FROM players WHERE username = $1`, username)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player with username %s: %w", username, ErrNotFound)
	}
	return player, err
}

func scanPlayer(row *sql.Row) (*models.Player, error) {
	var player models.Player
	var weaponsJSON, upgradesJSON string

	err := row.Scan(
		&player.ID, &player.Username, &player.X, &player.Y,
		&player.HP, &player.MaxHP, &player.MoveSpeed, &player.DamageMultiplier,
		&weaponsJSON, &upgradesJSON,
		&player.CreatedAt, &player.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	if err := json.Unmarshal([]byte(weaponsJSON), &player.Weapons); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player weapons: %w", err)
	}
	if err := json.Unmarshal([]byte(upgradesJSON), &player.Upgrades); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player upgrades: %w", err)
	}

	return &player, nil
}

// SaveWorld saves a world record to the database
func (dm *PostgresStore) SaveWorld(world *models.WorldRecord) error {
	configJSON, err := json.Marshal(world.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal world config: %w", err)
	}

	query := `
	INSERT INTO worlds (name, seed, config)
	VALUES ($1, $2, $3)
	ON CONFLICT (name)
	DO UPDATE SET
		seed = $2, config = $3,
		updated_at = NOW()
	`

	if _, err := dm.db.Exec(query, world.Name, world.Seed, string(configJSON)); err != nil {
		return fmt.Errorf("failed to save world: %w", err)
	}

	return nil
}

// LoadWorld loads a world record from the database by name
func (dm *PostgresStore) LoadWorld(name string) (*models.WorldRecord, error) {
	query := `SELECT name, seed, config, created_at, updated_at FROM worlds WHERE name = $1`

	var world models.WorldRecord
	var configJSON string

	err := dm.db.QueryRow(query, name).Scan(
		&world.Name, &world.Seed, &configJSON, &world.CreatedAt, &world.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("world with name %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load world: %w", err)
	}

	var cfg mapgen.Config
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal world config: %w", err)
	}
	world.Config = &cfg

	return &world, nil
}

// Close closes the database connection
func (dm *PostgresStore) Close() error {
	log.Println("Closing database connection...")
	return dm.db.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
