// test/helpers/helpers.go
package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kennethmarkhui/inventory-api/internal/adapters/db"
	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
	"github.com/kennethmarkhui/inventory-api/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests.
// The numeric reference collation needs ICU, so this runs the full
// Debian-based image rather than alpine.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_catalog",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_catalog",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	// Wait for database to be ready
	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_catalog",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      5 * time.Minute,
			PoolSize: 10,
		},
		Storage: config.StorageConfig{
			Driver:    "local",
			LocalPath: "uploads",
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestItem creates a test catalog item
func CreateTestItem(overrides ...func(*domain.Item)) *domain.Item {
	period := "Ming Dynasty"
	area := "Jingdezhen"
	item := &domain.Item{
		ID:       uuid.New(),
		RefID:    "ITEM-001",
		Image:    "a1b2c3d4.jpg",
		Name:     "Blue and White Porcelain Vase",
		Storage:  "Shelf A-3",
		Category: "Ceramics",
		Period:   &period,
		Location: domain.Location{
			Country: "China",
			Area:    &area,
		},
		Sizes: []domain.Size{
			{Len: decimal.NewFromFloat(24.5), Wid: decimal.NewFromFloat(12.0)},
		},
		DateCreated: time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	for _, override := range overrides {
		override(item)
	}

	return item
}

// CreateTestItems creates multiple test catalog items
func CreateTestItems(count int) []domain.Item {
	items := make([]domain.Item, count)

	categories := []string{"Ceramics", "Paintings", "Textiles", "Bronzes", "Furniture"}
	storages := []string{"Shelf A-1", "Shelf B-2", "Cabinet C", "Vault"}

	for i := 0; i < count; i++ {
		items[i] = *CreateTestItem(func(item *domain.Item) {
			item.ID = uuid.New()
			item.RefID = fmt.Sprintf("ITEM-%d", i+1)
			item.Name = fmt.Sprintf("Test Item %d", i+1)
			item.Image = fmt.Sprintf("%s.jpg", uuid.New().String())
			item.Category = categories[i%len(categories)]
			item.Storage = storages[i%len(storages)]
		})
	}

	return items
}

// CompareItems compares two catalog items for testing
func CompareItems(t *testing.T, expected, actual *domain.Item) {
	t.Helper()

	require.Equal(t, expected.RefID, actual.RefID)
	require.Equal(t, expected.Name, actual.Name)
	require.Equal(t, expected.Storage, actual.Storage)
	require.Equal(t, expected.Category, actual.Category)
	require.Equal(t, expected.Image, actual.Image)
	require.Equal(t, expected.Location.Country, actual.Location.Country)
	if expected.Period != nil {
		require.NotNil(t, actual.Period)
		require.Equal(t, *expected.Period, *actual.Period)
	} else {
		require.Nil(t, actual.Period)
	}
	require.Len(t, actual.Sizes, len(expected.Sizes))
	for i := range expected.Sizes {
		require.True(t, expected.Sizes[i].Len.Equal(actual.Sizes[i].Len))
		require.True(t, expected.Sizes[i].Wid.Equal(actual.Sizes[i].Wid))
	}
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	_, err := db.Exec(ctx, "TRUNCATE TABLE items CASCADE")
	require.NoError(t, err, "Failed to truncate items table")
}

// SeedTestItems inserts items directly, bypassing the service layer
func SeedTestItems(t *testing.T, db *pgxpool.Pool, items []domain.Item) {
	t.Helper()

	ctx := context.Background()

	for _, item := range items {
		query := `
			INSERT INTO items (
				id, ref_id, image, name, storage, category, period,
				country, area, sizes, date_created, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`

		sizes, err := json.Marshal(item.Sizes)
		require.NoError(t, err, "Failed to encode sizes")

		_, err = db.Exec(ctx, query,
			item.ID, item.RefID, item.Image, item.Name, item.Storage,
			item.Category, item.Period, item.Location.Country, item.Location.Area,
			sizes, item.DateCreated, item.UpdatedAt,
		)
		require.NoError(t, err, "Failed to seed test data")
	}
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t *testing.T, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp("", fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")

	file.Close()

	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	return file.Name()
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}
