package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	service "github.com/okian/comind/internal/app"
	"github.com/okian/comind/internal/domain/platform"
	"github.com/okian/comind/internal/domain/status"
	"github.com/okian/comind/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type countingChecker struct {
	calls atomic.Int32
	inner *status.Checker
}

func (c *countingChecker) Check(ctx context.Context, services platform.Services) status.Reports {
	c.calls.Add(1)
	return c.inner.Check(ctx, services)
}

func testPlatform(url string) platform.Platform {
	return platform.Platform{
		Name:    "Test Platform",
		Version: "0.0.1",
		Services: platform.Services{
			{Key: "upstream", Name: "Upstream", URL: url},
		},
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		p := testPlatform("http://127.0.0.1:1")
		svc := service.New(p)

		Convey("Then it exposes the platform unchanged", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Platform().Name, ShouldEqual, "Test Platform")
			So(svc.Platform().Services.Keys(), ShouldResemble, []string{"upstream"})
		})

		Convey("And uptime counts from construction", func() {
			So(svc.Uptime(), ShouldBeGreaterThanOrEqualTo, 0)
		})
	})

	Convey("Given a service with a fixed clock", t, func() {
		start := time.Unix(1_700_000_000, 0)
		now := start
		svc := service.New(platform.Platform{}, service.WithClock(func() time.Time { return now }))

		Convey("When time passes", func() {
			now = start.Add(42 * time.Second)

			Convey("Then uptime reflects it", func() {
				So(svc.Uptime(), ShouldEqual, 42)
			})
		})
	})
}

func TestService_ServicesStatus(t *testing.T) {
	Convey("Given a service polling one upstream", t, func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer upstream.Close()

		svc := service.New(testPlatform(upstream.URL))

		Convey("When status is requested", func() {
			reports := svc.ServicesStatus(context.Background())

			Convey("Then the upstream is reported healthy", func() {
				rep, ok := reports.Get("upstream")
				So(ok, ShouldBeTrue)
				So(rep.Status, ShouldEqual, status.StateHealthy)
			})
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a stopped service", t, func() {
		svc := service.New(platform.Platform{})

		Convey("When subscribing before start", func() {
			_, err := svc.Subscribe(context.Background())

			Convey("Then it is rejected", func() {
				So(err, ShouldEqual, service.ErrNotStarted)
			})
		})

		Convey("When stopping twice without starting", func() {
			Convey("Then nothing panics", func() {
				So(func() { svc.Stop(); svc.Stop() }, ShouldNotPanic)
			})
		})
	})

	Convey("Given a started service", t, func() {
		svc := service.New(platform.Platform{})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When it stops", func() {
			ch, err := svc.Subscribe(context.Background())
			So(err, ShouldBeNil)
			svc.Stop()

			Convey("Then open subscriptions are closed", func() {
				_, open := <-ch
				So(open, ShouldBeFalse)
				So(svc.Subscribers(), ShouldEqual, 0)
			})
		})

		Reset(func() { svc.Stop() })
	})
}

func TestService_Stream(t *testing.T) {
	Convey("Given a started service with a short stream interval", t, func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer upstream.Close()

		checker := &countingChecker{inner: status.NewChecker(status.WithTimeout(time.Second))}
		svc := service.New(testPlatform(upstream.URL),
			service.WithChecker(checker),
			service.WithStreamInterval(20*time.Millisecond),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a subscriber listens", func() {
			subCtx, subCancel := context.WithCancel(context.Background())
			ch, err := svc.Subscribe(subCtx)
			So(err, ShouldBeNil)

			Convey("Then it receives periodic reports", func() {
				var reports status.Reports
				select {
				case reports = <-ch:
				case <-time.After(2 * time.Second):
				}
				So(reports.Len(), ShouldEqual, 1)
				rep, _ := reports.Get("upstream")
				So(rep.Status, ShouldEqual, status.StateWarning)
				So(checker.calls.Load(), ShouldBeGreaterThan, 0)
			})

			Convey("And cancelling its context closes the channel", func() {
				subCancel()
				deadline := time.After(2 * time.Second)
				closed := false
				for !closed {
					select {
					case _, open := <-ch:
						closed = !open
					case <-deadline:
						closed = true
					}
				}
				So(svc.Subscribers(), ShouldEqual, 0)
			})

			Reset(subCancel)
		})
	})
}
