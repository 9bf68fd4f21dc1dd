package utils

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestToGeoPoint(t *testing.T) {
	Convey("Given a lat/lng pair", t, func() {
		Convey("When both values are finite", func() {
			point := ToGeoPoint(47.6062, -122.3321)

			Convey("Then a GeoJSON point is returned", func() {
				So(point, ShouldNotBeNil)
				So(point.Type, ShouldEqual, "Point")
			})

			Convey("Then coordinates are longitude first", func() {
				So(point.Coordinates[0], ShouldEqual, -122.3321)
				So(point.Coordinates[1], ShouldEqual, 47.6062)
			})
		})

		Convey("When the latitude is NaN", func() {
			So(ToGeoPoint(math.NaN(), -122.3321), ShouldBeNil)
		})

		Convey("When the longitude is NaN", func() {
			So(ToGeoPoint(47.6062, math.NaN()), ShouldBeNil)
		})

		Convey("When either value is infinite", func() {
			So(ToGeoPoint(math.Inf(1), 0), ShouldBeNil)
			So(ToGeoPoint(0, math.Inf(-1)), ShouldBeNil)
		})
	})
}

func TestMileConversions(t *testing.T) {
	Convey("Given the mile/meter conversions", t, func() {
		Convey("One mile converts with the stored constant", func() {
			So(MilesToMeters(1), ShouldEqual, 1609.34)
		})

		Convey("Ten miles scale linearly", func() {
			So(MilesToMeters(10), ShouldEqual, 16093.4)
		})

		Convey("Meters round-trip back to miles at one decimal", func() {
			So(MetersToMiles(1609.34), ShouldEqual, 1.0)
			So(MetersToMiles(2414.01), ShouldEqual, 1.5)
		})
	})
}

func TestHaversineDistanceKm(t *testing.T) {
	Convey("Given the haversine distance", t, func() {
		Convey("A point is zero distance from itself", func() {
			So(HaversineDistanceKm(47.6062, -122.3321, 47.6062, -122.3321), ShouldEqual, 0)
		})

		Convey("A quarter of the equator is about 10007 km", func() {
			distance := HaversineDistanceKm(0, 0, 0, 90)
			So(distance, ShouldAlmostEqual, 10007.5, 1.0)
		})

		Convey("Seattle to Portland is about 233 km", func() {
			distance := HaversineDistanceKm(47.6062, -122.3321, 45.5152, -122.6784)
			So(distance, ShouldAlmostEqual, 233.7, 2.0)
		})

		Convey("Distance is symmetric", func() {
			there := HaversineDistanceKm(47.6062, -122.3321, 45.5152, -122.6784)
			back := HaversineDistanceKm(45.5152, -122.6784, 47.6062, -122.3321)
			So(there, ShouldAlmostEqual, back, 0.0001)
		})
	})
}
