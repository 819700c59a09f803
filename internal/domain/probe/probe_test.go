package probe

import (
	"testing"
	"time"

	"github.com/okian/comind/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func allConfigured() *config.Config {
	cfg := config.New()
	cfg.Database = config.DatabaseConfig{Enabled: true, Host: "db", Port: "5432", Name: "app"}
	cfg.Storage = config.StorageConfig{Enabled: true, Endpoint: "http://minio:9000", Buckets: []string{"assets"}}
	cfg.Queue = config.QueueConfig{Enabled: true, Endpoint: "http://elasticmq:9324", Queues: []string{"jobs"}}
	cfg.Cache = config.CacheConfig{Enabled: true, Endpoint: "redis"}
	return cfg
}

func TestChecks(t *testing.T) {
	Convey("Given the individual dependency checks", t, func() {
		Convey("When a feature flag is off", func() {
			So(Database(config.DatabaseConfig{Host: "db", Port: "1"}).Status, ShouldEqual, StatusDisabled)
			So(Storage(config.StorageConfig{Endpoint: "x"}).Status, ShouldEqual, StatusDisabled)
			So(Queue(config.QueueConfig{Endpoint: "x"}).Status, ShouldEqual, StatusDisabled)
			So(Cache(config.CacheConfig{Endpoint: "x"}).Status, ShouldEqual, StatusDisabled)
		})

		Convey("When a flag is on but required settings are missing", func() {
			db := Database(config.DatabaseConfig{Enabled: true, Port: "5432"})
			So(db.Status, ShouldEqual, StatusError)
			So(db.Message, ShouldEqual, "Database connection not configured")
			So(Storage(config.StorageConfig{Enabled: true}).Status, ShouldEqual, StatusError)
			So(Queue(config.QueueConfig{Enabled: true}).Status, ShouldEqual, StatusError)
			So(Cache(config.CacheConfig{Enabled: true}).Status, ShouldEqual, StatusError)
		})

		Convey("When everything is configured", func() {
			checks := Evaluate(allConfigured())

			Convey("Then the checks echo their settings", func() {
				So(checks.Database, ShouldResemble, Result{Status: StatusOK, Host: "db", Port: "5432", Database: "app"})
				So(checks.Storage.Buckets, ShouldResemble, []string{"assets"})
				So(checks.Queue.Queues, ShouldResemble, []string{"jobs"})
				So(checks.Cache.Port, ShouldEqual, "6379")
			})
		})

		Convey("When the database name is unset", func() {
			db := Database(config.DatabaseConfig{Enabled: true, Host: "db", Port: "5432"})
			So(db.Database, ShouldEqual, "default")
		})
	})
}

func TestHealthAndReadiness(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	Convey("Given every dependency configured", t, func() {
		cfg := allConfigured()

		Convey("Then health and readiness both pass", func() {
			So(Health(cfg, now).Healthy(), ShouldBeTrue)
			So(Readiness(cfg, now).Ready(), ShouldBeTrue)
		})

		Convey("When DATABASE_ENABLED=true but the host is unset", func() {
			cfg.Database.Host = ""

			Convey("Then both fail", func() {
				h := Health(cfg, now)
				r := Readiness(cfg, now)
				So(h.Healthy(), ShouldBeFalse)
				So(h.Status, ShouldEqual, HealthError)
				So(r.Ready(), ShouldBeFalse)
				So(r.Status, ShouldEqual, ReadyNotReady)
				So(r.Dependencies.Database.Status, ShouldEqual, StatusError)
			})
		})

		Convey("When a single dependency is disabled", func() {
			cfg.Cache.Enabled = false

			Convey("Then readiness passes but health fails", func() {
				So(Readiness(cfg, now).Ready(), ShouldBeTrue)
				h := Health(cfg, now)
				So(h.Healthy(), ShouldBeFalse)
				So(h.Checks.Cache.Status, ShouldEqual, StatusDisabled)
			})
		})
	})

	Convey("Given a matrix of feature flag combinations", t, func() {
		type flags struct{ db, storage, queue, cache bool }
		cases := []struct {
			name    string
			enabled flags
			broken  flags
			healthy bool
			ready   bool
		}{
			{"all disabled", flags{}, flags{}, false, true},
			{"all enabled and configured", flags{true, true, true, true}, flags{}, true, true},
			{"storage enabled without endpoint", flags{true, true, true, true}, flags{storage: true}, false, false},
			{"queue disabled, rest configured", flags{true, true, false, true}, flags{}, false, true},
			{"disabled dependency with broken settings", flags{db: true}, flags{storage: true}, false, true},
			{"cache enabled without endpoint only", flags{cache: true}, flags{cache: true}, false, false},
		}

		for _, tc := range cases {
			Convey("When "+tc.name, func() {
				cfg := allConfigured()
				cfg.Database.Enabled = tc.enabled.db
				cfg.Storage.Enabled = tc.enabled.storage
				cfg.Queue.Enabled = tc.enabled.queue
				cfg.Cache.Enabled = tc.enabled.cache
				if tc.broken.db {
					cfg.Database.Host = ""
				}
				if tc.broken.storage {
					cfg.Storage.Endpoint = ""
				}
				if tc.broken.queue {
					cfg.Queue.Endpoint = ""
				}
				if tc.broken.cache {
					cfg.Cache.Endpoint = ""
				}

				So(Health(cfg, now).Healthy(), ShouldEqual, tc.healthy)
				So(Readiness(cfg, now).Ready(), ShouldEqual, tc.ready)
			})
		}
	})
}

func TestLiveness(t *testing.T) {
	Convey("Given a process start time", t, func() {
		started := time.Now().Add(-90 * time.Second)

		Convey("When liveness is evaluated", func() {
			r := Liveness("sample-app", started, time.Now())

			Convey("Then it reports the process as alive with resource usage", func() {
				So(r.Status, ShouldEqual, "alive")
				So(r.Service, ShouldEqual, "sample-app")
				So(r.Uptime, ShouldBeGreaterThanOrEqualTo, 90)
				So(r.Memory.Sys, ShouldBeGreaterThan, 0)
				So(r.Memory.Goroutines, ShouldBeGreaterThan, 0)
				So(r.CPU.Total, ShouldBeGreaterThanOrEqualTo, 0)
			})
		})
	})
}
