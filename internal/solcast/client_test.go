package solcast_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gridwatch/solarcast/internal/solcast"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

const fixtureBody = `{
	"forecasts": [
		{
			"period_end": "2026-08-29T06:00:00Z",
			"ghi": 120.5,
			"ghi90": 150,
			"ghi10": 90,
			"ebh": 80.25,
			"dni": 300,
			"dni10": 200,
			"dni90": 400,
			"dhi": 60,
			"air_temp": 28.4,
			"zenith": 45.1,
			"azimuth": -77,
			"cloud_opacity": 12.5
		},
		{
			"period_end": "2026-08-29T06:30:00Z",
			"ghi": null,
			"dni": 310
		}
	]
}`

var _ = Describe("NewClient", func() {
	It("should create a client with a valid config", func() {
		c, err := solcast.NewClient(&solcast.ClientConfig{Logger: testLogger()})
		Expect(err).NotTo(HaveOccurred())
		Expect(c).NotTo(BeNil())
	})

	It("should return an error when config is nil", func() {
		c, err := solcast.NewClient(nil)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("config cannot be nil"))
		Expect(c).To(BeNil())
	})

	It("should return an error when logger is nil", func() {
		c, err := solcast.NewClient(&solcast.ClientConfig{})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("logger cannot be nil"))
		Expect(c).To(BeNil())
	})
})

var _ = Describe("Client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	newClient := func(baseURL string) *solcast.Client {
		c, err := solcast.NewClient(&solcast.ClientConfig{
			Logger:  testLogger(),
			BaseURL: baseURL,
		})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	It("should reject an empty API key without making a request", func() {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		entries, err := newClient(srv.URL).Fetch(ctx, 7.976510, 81.236602, "")
		Expect(err).To(MatchError(solcast.ErrMissingAPIKey))
		Expect(entries).To(BeNil())
		Expect(called).To(BeFalse())
	})

	It("should send coordinates, API key, and format as query parameters", func() {
		var gotPath string
		var gotQuery map[string][]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.Query()
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"forecasts": []}`))
		}))
		defer srv.Close()

		_, err := newClient(srv.URL).Fetch(ctx, 7.976510, 81.236602, "secret-key")
		Expect(err).NotTo(HaveOccurred())
		Expect(gotPath).To(Equal("/world_radiation/forecasts"))
		Expect(gotQuery).To(HaveKeyWithValue("latitude", []string{"7.97651"}))
		Expect(gotQuery).To(HaveKeyWithValue("longitude", []string{"81.236602"}))
		Expect(gotQuery).To(HaveKeyWithValue("api_key", []string{"secret-key"}))
		Expect(gotQuery).To(HaveKeyWithValue("format", []string{"json"}))
	})

	It("should parse a full response body into entries", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(fixtureBody))
		}))
		defer srv.Close()

		entries, err := newClient(srv.URL).Fetch(ctx, 7.976510, 81.236602, "secret-key")
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))

		first := entries[0]
		Expect(first.PeriodEnd).To(BeTemporally("==", time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)))
		Expect(*first.GHI).To(Equal(120.5))
		Expect(*first.GHI90).To(Equal(150.0))
		Expect(*first.GHI10).To(Equal(90.0))
		Expect(*first.EBH).To(Equal(80.25))
		Expect(*first.DNI).To(Equal(300.0))
		Expect(*first.DNI10).To(Equal(200.0))
		Expect(*first.DNI90).To(Equal(400.0))
		Expect(*first.DHI).To(Equal(60.0))
		Expect(*first.AirTemp).To(Equal(28.4))
		Expect(*first.Zenith).To(Equal(45.1))
		Expect(*first.Azimuth).To(Equal(-77.0))
		Expect(*first.CloudOpacity).To(Equal(12.5))

		second := entries[1]
		Expect(second.PeriodEnd).To(BeTemporally("==", time.Date(2026, 8, 29, 6, 30, 0, 0, time.UTC)))
		Expect(second.GHI).To(BeNil())
		Expect(second.AirTemp).To(BeNil())
		Expect(*second.DNI).To(Equal(310.0))
	})

	It("should return an empty slice for an empty forecasts list", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"forecasts": []}`))
		}))
		defer srv.Close()

		entries, err := newClient(srv.URL).Fetch(ctx, 1, 2, "secret-key")
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("should return a status error on a non-success response", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		entries, err := newClient(srv.URL).Fetch(ctx, 1, 2, "bad-key")
		Expect(entries).To(BeNil())

		var statusErr *solcast.StatusError
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.Code).To(Equal(http.StatusForbidden))
	})

	It("should return an error when the forecasts list is absent", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": "ok"}`))
		}))
		defer srv.Close()

		entries, err := newClient(srv.URL).Fetch(ctx, 1, 2, "secret-key")
		Expect(err).To(MatchError(solcast.ErrMissingForecasts))
		Expect(entries).To(BeNil())
	})

	It("should return an error when the forecasts list is null", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"forecasts": null}`))
		}))
		defer srv.Close()

		entries, err := newClient(srv.URL).Fetch(ctx, 1, 2, "secret-key")
		Expect(err).To(MatchError(solcast.ErrMissingForecasts))
		Expect(entries).To(BeNil())
	})

	It("should return an error on a malformed body", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json at all`))
		}))
		defer srv.Close()

		entries, err := newClient(srv.URL).Fetch(ctx, 1, 2, "secret-key")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("decode"))
		Expect(entries).To(BeNil())
	})

	It("should return an error on an unparseable period_end", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"forecasts": [{"period_end": "yesterday"}]}`))
		}))
		defer srv.Close()

		entries, err := newClient(srv.URL).Fetch(ctx, 1, 2, "secret-key")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("period_end"))
		Expect(entries).To(BeNil())
	})

	It("should surface a transport failure", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		entries, err := newClient(srv.URL).Fetch(ctx, 1, 2, "secret-key")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("request failed"))
		Expect(entries).To(BeNil())
	})
})
