package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"
  "github.com/rarchives/ir/internal/logger"
  "github.com/rarchives/ir/internal/types"
  "github.com/rarchives/ir/internal/utils"
)

type PostgresService struct {
  db *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  log.Info("Loading environment variables...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "ir", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "ir", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "ir", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Warn),
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
  }

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.Post{},
    &types.Comment{},
    &types.Image{},
    &types.Video{},
    &types.VideoFrame{},
    &types.Album{},
    &types.ImageURL{},
    &types.VideoURL{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }
  s.log.Info("Installing hamming distance functions...")
  for _, stmt := range hashFunctionDDL {
    if err := s.db.Exec(stmt).Error; err != nil {
      return fmt.Errorf("Failed to install hash functions: %w", err)
    }
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}

// DB-side hamming distance over 18-byte dhash values. The _any variants
// take a single bytea holding concatenated 18-byte hashes, matching the
// on-wire query shape used by the video similarity scan.
var hashFunctionDDL = []string{
  `
  CREATE OR REPLACE FUNCTION hash_distance(a bytea, b bytea) RETURNS integer AS $$
  DECLARE
    d integer := 0;
    n integer := least(length(a), length(b));
    i integer;
  BEGIN
    FOR i IN 0..n - 1 LOOP
      d := d + bit_count((get_byte(a, i) # get_byte(b, i))::bit(8));
    END LOOP;
    RETURN d;
  END
  $$ LANGUAGE plpgsql IMMUTABLE;
  `,
  `
  CREATE OR REPLACE FUNCTION hash_is_within_distance(a bytea, b bytea, dist integer) RETURNS boolean AS $$
  BEGIN
    RETURN hash_distance(a, b) <= dist;
  END
  $$ LANGUAGE plpgsql IMMUTABLE;
  `,
  `
  CREATE OR REPLACE FUNCTION hash_equ_any(h bytea, targets bytea) RETURNS boolean AS $$
  DECLARE
    i integer;
  BEGIN
    FOR i IN 0..(length(targets) / 18) - 1 LOOP
      IF h = substring(targets from i * 18 + 1 for 18) THEN
        RETURN true;
      END IF;
    END LOOP;
    RETURN false;
  END
  $$ LANGUAGE plpgsql IMMUTABLE;
  `,
  `
  CREATE OR REPLACE FUNCTION hash_is_within_distance_any(h bytea, targets bytea, dist integer) RETURNS boolean AS $$
  DECLARE
    i integer;
  BEGIN
    FOR i IN 0..(length(targets) / 18) - 1 LOOP
      IF hash_distance(h, substring(targets from i * 18 + 1 for 18)) <= dist THEN
        RETURN true;
      END IF;
    END LOOP;
    RETURN false;
  END
  $$ LANGUAGE plpgsql IMMUTABLE;
  `,
}
