package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/gridwatch/solarcast/internal/store"
)

func ghi(v float64) *float64 { return &v }

var _ = Describe("ForecastStore", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		locations *store.LocationStore
		forecasts *store.ForecastStore
		site      store.Location
		base      time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = newTestDB()

		var err error
		locations, err = store.NewLocationStore(db, testLogger())
		Expect(err).NotTo(HaveOccurred())
		forecasts, err = store.NewForecastStore(db, testLogger())
		Expect(err).NotTo(HaveOccurred())

		site = store.Location{Name: "Solar_One_Plant", Latitude: 7.976510, Longitude: 81.236602}
		Expect(locations.Create(ctx, &site)).To(Succeed())

		base = time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)
	})

	Describe("NewForecastStore", func() {
		It("should return error when database is nil", func() {
			s, err := store.NewForecastStore(nil, testLogger())
			Expect(err).To(HaveOccurred())
			Expect(s).To(BeNil())
		})

		It("should return error when logger is nil", func() {
			s, err := store.NewForecastStore(db, nil)
			Expect(err).To(HaveOccurred())
			Expect(s).To(BeNil())
		})
	})

	Describe("ReplaceSnapshot", func() {
		It("should store exactly the given points", func() {
			points := []store.ForecastPoint{
				{Timestamp: base, GHI: ghi(120.5)},
				{Timestamp: base.Add(30 * time.Minute), GHI: ghi(240)},
				{Timestamp: base.Add(time.Hour), GHI: ghi(310.2)},
			}

			stored, err := forecasts.ReplaceSnapshot(ctx, site.ID, points)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(HaveLen(3))
			Expect(*stored[0].GHI).To(Equal(120.5))
		})

		It("should fully replace the prior snapshot", func() {
			first := []store.ForecastPoint{
				{Timestamp: base},
				{Timestamp: base.Add(30 * time.Minute)},
				{Timestamp: base.Add(time.Hour)},
			}
			_, err := forecasts.ReplaceSnapshot(ctx, site.ID, first)
			Expect(err).NotTo(HaveOccurred())

			second := []store.ForecastPoint{
				{Timestamp: base.Add(2 * time.Hour), GHI: ghi(50)},
				{Timestamp: base.Add(3 * time.Hour), GHI: ghi(60)},
			}
			stored, err := forecasts.ReplaceSnapshot(ctx, site.ID, second)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(HaveLen(2))

			all, err := forecasts.ListByLocation(ctx, site.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[0].Timestamp).To(BeTemporally("==", base.Add(2*time.Hour)))
		})

		It("should return points ordered ascending regardless of input order", func() {
			points := []store.ForecastPoint{
				{Timestamp: base.Add(time.Hour)},
				{Timestamp: base},
				{Timestamp: base.Add(2 * time.Hour)},
				{Timestamp: base.Add(30 * time.Minute)},
			}

			stored, err := forecasts.ReplaceSnapshot(ctx, site.ID, points)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(HaveLen(4))
			for i := 1; i < len(stored); i++ {
				Expect(stored[i].Timestamp.After(stored[i-1].Timestamp)).To(BeTrue())
			}
		})

		It("should accept an empty snapshot as a valid replace", func() {
			_, err := forecasts.ReplaceSnapshot(ctx, site.ID, []store.ForecastPoint{
				{Timestamp: base},
			})
			Expect(err).NotTo(HaveOccurred())

			stored, err := forecasts.ReplaceSnapshot(ctx, site.ID, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeEmpty())

			all, err := forecasts.ListByLocation(ctx, site.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(BeEmpty())
		})

		It("should keep nil numeric fields null", func() {
			points := []store.ForecastPoint{
				{Timestamp: base, GHI: ghi(100), DNI: nil, AirTemp: ghi(28.4)},
			}
			stored, err := forecasts.ReplaceSnapshot(ctx, site.ID, points)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored[0].GHI).NotTo(BeNil())
			Expect(stored[0].DNI).To(BeNil())
			Expect(*stored[0].AirTemp).To(Equal(28.4))
		})

		It("should leave other locations' snapshots untouched", func() {
			other := store.Location{Name: "Other", Latitude: 1, Longitude: 2}
			Expect(locations.Create(ctx, &other)).To(Succeed())

			_, err := forecasts.ReplaceSnapshot(ctx, other.ID, []store.ForecastPoint{{Timestamp: base}})
			Expect(err).NotTo(HaveOccurred())

			_, err = forecasts.ReplaceSnapshot(ctx, site.ID, []store.ForecastPoint{
				{Timestamp: base}, {Timestamp: base.Add(time.Hour)},
			})
			Expect(err).NotTo(HaveOccurred())

			kept, err := forecasts.ListByLocation(ctx, other.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept).To(HaveLen(1))
		})
	})

	Describe("ListByLocation", func() {
		It("should return an empty slice for a location without a snapshot", func() {
			points, err := forecasts.ListByLocation(ctx, site.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(points).To(BeEmpty())
		})

		It("should return points ordered ascending by timestamp", func() {
			_, err := forecasts.ReplaceSnapshot(ctx, site.ID, []store.ForecastPoint{
				{Timestamp: base.Add(time.Hour)},
				{Timestamp: base},
			})
			Expect(err).NotTo(HaveOccurred())

			points, err := forecasts.ListByLocation(ctx, site.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(points).To(HaveLen(2))
			Expect(points[0].Timestamp).To(BeTemporally("==", base))
		})
	})
})
