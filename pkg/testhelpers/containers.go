// Package testhelpers provides shared containers for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/graphshift/graphshift/pkg/config"
)

// SourceImage is the PostgreSQL image used as the sample source database.
const SourceImage = "postgres:16-alpine"

// seedSchema is a compact relational schema covering the structures the
// pipeline classifies: plain entities, class-table inheritance, and a
// junction table. The subclass table carries only its inheritance FK so its
// primary key is not fully covered by foreign keys.
const seedSchema = `
CREATE TABLE departments (
    id SERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL
);

CREATE TABLE people (
    id SERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL
);

CREATE TABLE employees (
    id INTEGER PRIMARY KEY REFERENCES people(id),
    salary NUMERIC(10,2)
);

CREATE TABLE students (
    id SERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    department_id INTEGER REFERENCES departments(id)
);

CREATE TABLE courses (
    id SERIAL PRIMARY KEY,
    title VARCHAR(200) NOT NULL,
    department_id INTEGER NOT NULL REFERENCES departments(id)
);

CREATE TABLE enrollments (
    student_id INTEGER NOT NULL REFERENCES students(id),
    course_id INTEGER NOT NULL REFERENCES courses(id),
    grade VARCHAR(2),
    PRIMARY KEY (student_id, course_id)
);

INSERT INTO departments (name) VALUES ('Mathematics'), ('History');
INSERT INTO people (name) VALUES ('Ada'), ('Herodotus');
INSERT INTO employees (id, salary) VALUES (1, 90000), (2, 80000);
INSERT INTO students (name, email, department_id) VALUES
    ('Sam', 'sam@example.com', 1),
    ('Kim', 'kim@example.com', NULL);
INSERT INTO courses (title, department_id) VALUES ('Calculus', 1), ('Antiquity', 2);
INSERT INTO enrollments (student_id, course_id, grade) VALUES
    (1, 1, 'A'),
    (1, 2, NULL),
    (2, 1, 'B');
`

// SourceDB holds a shared seeded PostgreSQL container for integration tests.
type SourceDB struct {
	Container *tcpostgres.PostgresContainer
	Pool      *pgxpool.Pool
	Config    config.SourceConfig
}

var (
	sharedSourceDB     *SourceDB
	sharedSourceDBOnce sync.Once
	sharedSourceDBErr  error
)

// GetSourceDB returns a shared seeded PostgreSQL container. The container
// is created once and reused across all tests in the run.
func GetSourceDB(t *testing.T) *SourceDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedSourceDBOnce.Do(func() {
		sharedSourceDB, sharedSourceDBErr = setupSourceDB()
	})

	if sharedSourceDBErr != nil {
		t.Fatalf("Failed to setup source database: %v", sharedSourceDBErr)
	}

	return sharedSourceDB
}

func setupSourceDB() (*SourceDB, error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, SourceImage,
		tcpostgres.WithDatabase("school"),
		tcpostgres.WithUsername("graphshift"),
		tcpostgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start source container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err := pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	if _, err := pool.Exec(ctx, seedSchema); err != nil {
		return nil, fmt.Errorf("failed to seed schema: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &SourceDB{
		Container: container,
		Pool:      pool,
		Config: config.SourceConfig{
			Type:     "postgres",
			Host:     host,
			Port:     port.Int(),
			Database: "school",
			Schema:   "public",
			User:     "graphshift",
			Password: "test_password",
			SSLMode:  "disable",
		},
	}, nil
}
