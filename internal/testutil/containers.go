// containers.go
//
// Content service and admin tooling of a church website
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of chapel-cms.
// chapel-cms is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// chapel-cms is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with chapel-cms.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/localnerve/chapel-cms/internal/config"
	"github.com/localnerve/chapel-cms/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// network alias of the database container, seen by the other containers
const dbAlias = "db"

// ContainerOptions selects the containers to start. Zero values are filled
// from the environment by OptionsFromEnv.
type ContainerOptions struct {
	DBType     string // postgres, mariadb or mysql
	DBImage    string
	DBDatabase string
	DBUser     string
	DBPassword string

	// Authorizer is started only when AuthzImage is set
	AuthzImage       string
	AuthzPort        string
	AuthzClientID    string
	AuthzAdminSecret string
}

// OptionsFromEnv reads the container options from the environment
func OptionsFromEnv() ContainerOptions {
	opts := ContainerOptions{
		DBType:           envOr("DB_TYPE", "postgres"),
		DBImage:          os.Getenv("DB_IMAGE"),
		DBDatabase:       envOr("DB_DATABASE", "chapel"),
		DBUser:           envOr("DB_USER", "chapel"),
		DBPassword:       envOr("DB_PASSWORD", "chapel-secret"),
		AuthzImage:       os.Getenv("AUTHZ_IMAGE"),
		AuthzPort:        envOr("AUTHZ_PORT", "8080"),
		AuthzClientID:    envOr("AUTHZ_CLIENT_ID", "chapel-client"),
		AuthzAdminSecret: envOr("AUTHZ_ADMIN_SECRET", "chapel-admin-secret"),
	}
	if opts.DBImage == "" {
		opts.DBImage = DefaultImage(opts.DBType)
	}
	return opts
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DefaultImage is the image started for a database type when DB_IMAGE is unset
func DefaultImage(dbType string) string {
	switch dbType {
	case "mariadb", "mysql":
		return "mariadb:11"
	default:
		return "postgres:17-alpine"
	}
}

// Containers are the running dev/test containers
type Containers struct {
	Options             ContainerOptions
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	AuthorizerContainer testcontainers.Container

	dbHost   string
	dbPort   string
	authzURL string
}

// DockerAvailable pings the Docker daemon named by the environment
func DockerAvailable(ctx context.Context) error {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return err
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err = cli.Ping(ctx)
	return err
}

// RequireDocker skips the test when no Docker daemon answers
func RequireDocker(t *testing.T) {
	t.Helper()
	if err := DockerAvailable(context.Background()); err != nil {
		t.Skipf("Docker is not available: %v", err)
	}
}

// Terminate stops every started container and removes the network
func (tc *Containers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.AuthorizerContainer != nil {
		if err := tc.AuthorizerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Authorizer: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate %s: %v", tc.Options.DBType, err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// StartContainers starts the database container and, when configured, an
// Authorizer container backed by the same database. With a nil t, failures
// exit the process.
func StartContainers(t *testing.T, opts ContainerOptions) *Containers {
	ctx := context.Background()
	tc := &Containers{Options: opts}

	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	tc.Network = nw
	networkName := nw.Name

	internalPort, readyLog := dbPortAndLog(opts.DBType)
	tcpDBPort, err := nat.NewPort("tcp", internalPort)
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to create DB port")
	}
	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.DBImage,
			ExposedPorts: []string{string(tcpDBPort)},
			Env:          dbInitEnv(opts),
			WaitingFor: wait.ForAll(
				wait.ForLog(readyLog).WithOccurrence(2),
				wait.ForListeningPort(tcpDBPort),
			).WithDeadline(90 * time.Second),
			Networks: []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {dbAlias},
			},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start database")
	}
	tc.DBContainer = dbContainer

	host, err := dbContainer.Host(ctx)
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to get database host")
	}
	mapped, err := dbContainer.MappedPort(ctx, tcpDBPort)
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to get database port")
	}
	tc.dbHost, tc.dbPort = host, mapped.Port()
	logMessage(t, "DB_HOST=%s DB_PORT=%s", tc.dbHost, tc.dbPort)

	if opts.AuthzImage == "" {
		return tc
	}

	tcpAuthzPort, err := nat.NewPort("tcp", opts.AuthzPort)
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to create Authorizer port")
	}
	authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.AuthzImage,
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     opts.AuthzClientID,
				"PORT":          opts.AuthzPort,
				"DATABASE_TYPE": authzDBType(opts.DBType),
				"DATABASE_NAME": opts.DBDatabase,
				"DATABASE_URL":  authzDBURL(opts, internalPort),
				"ADMIN_SECRET":  opts.AuthzAdminSecret,
				"ROLES":         "admin",
				"DEFAULT_ROLES": "admin",
				"LOG_LEVEL":     "info",
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{networkName},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start Authorizer")
	}
	tc.AuthorizerContainer = authorizerContainer

	authzHost, _ := authorizerContainer.Host(ctx)
	authzPort, _ := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
	tc.authzURL = fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())
	logMessage(t, "AUTHZ_URL=%s", tc.authzURL)

	return tc
}

// Config returns a configuration pointing at the started containers from the host
func (tc *Containers) Config() *config.Config {
	cfg := &config.Config{
		DBType:            tc.Options.DBType,
		DBHost:            tc.dbHost,
		DBPort:            tc.dbPort,
		DBDatabase:        tc.Options.DBDatabase,
		DBUser:            tc.Options.DBUser,
		DBPassword:        tc.Options.DBPassword,
		DBConnectionLimit: 4,
		AuthProvider:      config.AuthProviderLocal,
	}
	if tc.authzURL != "" {
		cfg.AuthProvider = config.AuthProviderAuthorizer
		cfg.AuthzURL = tc.authzURL
		cfg.AuthzClientID = tc.Options.AuthzClientID
	}
	return cfg
}

// Connect opens the container database, waiting up to 30 seconds for it to accept connections
func (tc *Containers) Connect(t *testing.T) *gorm.DB {
	db, err := database.Connect(tc.Config(), logger.Silent)
	if err != nil {
		exitWithError(t, err, "Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		exitWithError(t, err, "Failed to get database handle")
	}
	for i := 0; i < 30; i++ {
		if err = sqlDB.Ping(); err == nil {
			return db
		}
		time.Sleep(time.Second)
	}
	exitWithError(t, err, "Database not ready after 30 seconds")
	return nil
}

func dbPortAndLog(dbType string) (string, string) {
	switch dbType {
	case "mariadb", "mysql":
		return "3306", "ready for connections"
	default:
		return "5432", "database system is ready to accept connections"
	}
}

func dbInitEnv(opts ContainerOptions) map[string]string {
	switch opts.DBType {
	case "mariadb", "mysql":
		return map[string]string{
			"MARIADB_RANDOM_ROOT_PASSWORD": "yes",
			"MYSQL_DATABASE":               opts.DBDatabase,
			"MYSQL_USER":                   opts.DBUser,
			"MYSQL_PASSWORD":               opts.DBPassword,
		}
	default:
		return map[string]string{
			"POSTGRES_DB":       opts.DBDatabase,
			"POSTGRES_USER":     opts.DBUser,
			"POSTGRES_PASSWORD": opts.DBPassword,
		}
	}
}

func authzDBType(dbType string) string {
	if dbType == "mysql" {
		return "mariadb"
	}
	return dbType
}

func authzDBURL(opts ContainerOptions, port string) string {
	switch opts.DBType {
	case "mariadb", "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", opts.DBUser, opts.DBPassword, dbAlias, port, opts.DBDatabase)
	default:
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", opts.DBUser, opts.DBPassword, dbAlias, port, opts.DBDatabase)
	}
}

func logMessage(t *testing.T, format string, args ...interface{}) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}
