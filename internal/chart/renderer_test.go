package chart_test

import (
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gridwatch/solarcast/internal/chart"
	"github.com/gridwatch/solarcast/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func fv(v float64) *float64 {
	return &v
}

// pngMagic is the fixed eight-byte PNG file signature.
var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

var _ = Describe("NewRenderer", func() {
	It("should create a renderer with a logger", func() {
		r, err := chart.NewRenderer(testLogger())
		Expect(err).NotTo(HaveOccurred())
		Expect(r).NotTo(BeNil())
	})

	It("should return an error when logger is nil", func() {
		r, err := chart.NewRenderer(nil)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("logger cannot be nil"))
		Expect(r).To(BeNil())
	})
})

var _ = Describe("Renderer", func() {
	var (
		renderer *chart.Renderer
		base     time.Time
	)

	BeforeEach(func() {
		var err error
		renderer, err = chart.NewRenderer(testLogger())
		Expect(err).NotTo(HaveOccurred())
		base = time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)
	})

	It("should render a populated snapshot as a PNG image", func() {
		points := []store.ForecastPoint{
			{Timestamp: base, GHI: fv(120), DNI: fv(300), DHI: fv(60)},
			{Timestamp: base.Add(30 * time.Minute), GHI: fv(230), DNI: fv(310), DHI: fv(70)},
			{Timestamp: base.Add(time.Hour), GHI: fv(310), DNI: fv(290), DHI: fv(65)},
		}

		img, err := renderer.Render("Solar Irradiation Forecast", points)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(img)).To(BeNumerically(">", len(pngMagic)))
		Expect(img[:len(pngMagic)]).To(Equal(pngMagic))
	})

	It("should return an error for an empty snapshot", func() {
		img, err := renderer.Render("Empty", nil)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("empty snapshot"))
		Expect(img).To(BeNil())
	})

	It("should return an error when every series lacks values", func() {
		points := []store.ForecastPoint{
			{Timestamp: base},
			{Timestamp: base.Add(30 * time.Minute)},
		}

		img, err := renderer.Render("All nulls", points)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("no series"))
		Expect(img).To(BeNil())
	})

	It("should return an error when no series has two plottable points", func() {
		points := []store.ForecastPoint{
			{Timestamp: base, GHI: fv(100)},
			{Timestamp: base.Add(30 * time.Minute), DNI: fv(200)},
		}

		img, err := renderer.Render("Sparse", points)
		Expect(err).To(HaveOccurred())
		Expect(img).To(BeNil())
	})

	It("should render when at least one series is drawable", func() {
		points := []store.ForecastPoint{
			{Timestamp: base, GHI: fv(100)},
			{Timestamp: base.Add(30 * time.Minute), GHI: fv(200)},
			{Timestamp: base.Add(time.Hour), DHI: fv(50)},
		}

		img, err := renderer.Render("Partial", points)
		Expect(err).NotTo(HaveOccurred())
		Expect(img[:len(pngMagic)]).To(Equal(pngMagic))
	})

	It("should skip nil values inside an otherwise drawable series", func() {
		points := []store.ForecastPoint{
			{Timestamp: base, GHI: fv(100)},
			{Timestamp: base.Add(30 * time.Minute)},
			{Timestamp: base.Add(time.Hour), GHI: fv(300)},
		}

		img, err := renderer.Render("Gappy", points)
		Expect(err).NotTo(HaveOccurred())
		Expect(img[:len(pngMagic)]).To(Equal(pngMagic))
	})
})
