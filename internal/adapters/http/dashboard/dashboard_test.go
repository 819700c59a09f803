package dashboard_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/comind/internal/adapters/http/dashboard"
	"github.com/okian/comind/internal/adapters/http/site"
	service "github.com/okian/comind/internal/app"
	"github.com/okian/comind/internal/domain/platform"
	"github.com/okian/comind/internal/domain/status"
	"github.com/okian/comind/pkg/logger"
)

func newLogger() logger.Logger {
	var out bytes.Buffer
	l, err := logger.New(logger.WithOutput(&out, &out), logger.WithLevel("error"))
	if err != nil {
		panic(err)
	}
	return l
}

type panicDeps struct{ dashboard.Dependencies }

func (panicDeps) ServicesStatus(context.Context) status.Reports { panic("boom") }

func newPlatform(up, down string) platform.Platform {
	return platform.Platform{
		Name:        "Comind-Ops Platform",
		Version:     "1.0.0",
		Environment: "development",
		Services: platform.Services{
			{Key: "up", Name: "Up", URL: up, Description: "Reachable", Icon: "✅"},
			{Key: "down", Name: "Down", URL: down, Description: "Unreachable", Icon: "❌"},
		},
		Credentials: map[string]map[string]string{"argocd": {"username": "admin"}},
	}
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestDashboardRoutes(t *testing.T) {
	Convey("Given a dashboard backed by one reachable and one unreachable service", t, func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer upstream.Close()
		gone := httptest.NewServer(http.NotFoundHandler())
		goneURL := gone.URL
		gone.Close()

		fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
		svc := service.New(newPlatform(upstream.URL, goneURL), service.WithLogger(newLogger()))
		h := dashboard.NewServer(svc,
			dashboard.WithLogger(newLogger()),
			dashboard.WithClock(func() time.Time { return fixed }),
		).Handler()

		get := func(path string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			return rec
		}

		Convey("When /health is requested", func() {
			rec := get("/health")

			Convey("Then it reports the platform identity", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decode(rec)
				So(body["status"], ShouldEqual, "healthy")
				So(body["platform"], ShouldEqual, "Comind-Ops Platform")
				So(body["version"], ShouldEqual, "1.0.0")
				So(body["timestamp"], ShouldEqual, "2024-05-06T07:08:09Z")
				So(body, ShouldContainKey, "uptime")
			})

			Convey("And security and CORS headers are present", func() {
				So(rec.Header().Get("Content-Security-Policy"), ShouldNotBeEmpty)
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
				So(rec.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
			})
		})

		Convey("When /api/services/status is requested", func() {
			rec := get("/api/services/status")

			Convey("Then every service is classified", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldStartWith, `{"up":`)
				body := decode(rec)
				up := body["up"].(map[string]any)
				down := body["down"].(map[string]any)
				So(up["status"], ShouldEqual, "healthy")
				So(up["statusCode"], ShouldEqual, float64(200))
				So(down["status"], ShouldEqual, "unhealthy")
				So(down["error"], ShouldNotBeEmpty)
				So(down, ShouldNotContainKey, "statusCode")
			})
		})

		Convey("When /api/platform/info is requested", func() {
			rec := get("/api/platform/info")

			Convey("Then static config and runtime metadata are merged", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decode(rec)
				So(body["name"], ShouldEqual, "Comind-Ops Platform")
				So(body["environment"], ShouldEqual, "development")
				So(body["services"].(map[string]any), ShouldContainKey, "up")
				So(body["credentials"].(map[string]any), ShouldContainKey, "argocd")
				So(body["goVersion"], ShouldStartWith, "go")
				So(body["architecture"], ShouldNotBeEmpty)
				So(body["platform"], ShouldNotBeEmpty)
			})
		})

		Convey("When / is requested", func() {
			rec := get("/")

			Convey("Then the dashboard page is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			})
		})

		Convey("When an unknown route is requested", func() {
			rec := get("/nope")

			Convey("Then a 404 lists the available endpoints", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				body := decode(rec)
				So(body["error"], ShouldEqual, "Not Found")
				So(body["message"], ShouldEqual, "The requested endpoint does not exist")
				So(len(body["availableEndpoints"].([]any)), ShouldEqual, len(dashboard.AvailableEndpoints))
				So(rec.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
			})
		})

		Convey("When a known route is called with the wrong method", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", strings.NewReader("{}")))

			Convey("Then it is treated as not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a CORS preflight arrives", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodOptions, "/api/services/status", nil)
			req.Header.Set("Origin", "http://elsewhere.example")
			req.Header.Set("Access-Control-Request-Method", "GET")
			h.ServeHTTP(rec, req)

			Convey("Then it is answered with 204", func() {
				So(rec.Code, ShouldEqual, http.StatusNoContent)
			})
		})

		Convey("When the stream is requested before the service starts", func() {
			rec := get("/api/services/stream")

			Convey("Then it is unavailable", func() {
				So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestDashboardInternalError(t *testing.T) {
	Convey("Given a dashboard whose status lookup panics", t, func() {
		svc := service.New(platform.Platform{})
		h := dashboard.NewServer(panicDeps{svc}, dashboard.WithLogger(newLogger())).Handler()

		Convey("When the status route is requested", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/services/status", nil))

			Convey("Then a generic 500 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				body := decode(rec)
				So(body["error"], ShouldEqual, "Internal Server Error")
				So(body["message"], ShouldEqual, "Something went wrong on our end")
				So(rec.Body.String(), ShouldNotContainSubstring, "boom")
			})
		})
	})
}

func TestDashboardRegister(t *testing.T) {
	Convey("Given a dashboard server", t, func() {
		s := dashboard.NewServer(service.New(platform.Platform{}), dashboard.WithLogger(newLogger()))

		Convey("When routes are registered on a router", func() {
			r := mux.NewRouter()
			So(s.Register(r), ShouldBeNil)

			Convey("Then the page and API routes match", func() {
				var m mux.RouteMatch
				So(r.Match(httptest.NewRequest(http.MethodGet, "/", nil), &m), ShouldBeTrue)
				So(r.Match(httptest.NewRequest(http.MethodGet, "/api/platform/info", nil), &m), ShouldBeTrue)
			})
		})

		Convey("When no router is given", func() {
			err := s.Register(nil)

			Convey("Then the error is returned instead of dropped", func() {
				So(errors.Is(err, site.ErrNilRouter), ShouldBeTrue)
			})
		})
	})
}

func TestDashboardStream(t *testing.T) {
	Convey("Given a running dashboard with a short stream interval", t, func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer upstream.Close()

		p := platform.Platform{Services: platform.Services{{Key: "gw", Name: "Gateway", URL: upstream.URL}}}
		svc := service.New(p,
			service.WithLogger(newLogger()),
			service.WithStreamInterval(30*time.Millisecond),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		ts := httptest.NewServer(dashboard.NewServer(svc, dashboard.WithLogger(newLogger())).Handler())
		defer ts.Close()

		Convey("When a websocket client connects", func() {
			url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/services/stream"
			conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusSwitchingProtocols)
			defer conn.Close()
			_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))

			Convey("Then it receives the initial snapshot and later pushes", func() {
				for i := 0; i < 2; i++ {
					var msg map[string]map[string]any
					So(conn.ReadJSON(&msg), ShouldBeNil)
					So(msg["gw"]["status"], ShouldEqual, "warning")
					So(msg["gw"]["statusCode"], ShouldEqual, float64(http.StatusBadGateway))
				}
			})
		})

		Convey("When a client from a foreign origin connects", func() {
			url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/services/stream"
			header := http.Header{"Origin": []string{"http://evil.example"}}
			_, resp, err := websocket.DefaultDialer.Dial(url, header)

			Convey("Then the handshake is refused", func() {
				So(err, ShouldNotBeNil)
				So(resp, ShouldNotBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusForbidden)
			})
		})
	})
}
