package sky

import (
	"time"

	"github.com/echoflaresat/spheretracer/vectors"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// SunDirection returns the unit vector towards the apparent Sun at t in an
// Earth-fixed frame (x through the prime meridian, z through the north pole).
// World axes are read as that frame.
func SunDirection(t time.Time) vectors.Vec3 {
	jd := julian.TimeToJD(t.UTC())

	// apparent RA/Dec, radians
	ra, dec := solar.ApparentEquatorial(jd)
	raAngle := unit.Angle(ra)

	// inertial frame
	x := dec.Cos() * raAngle.Cos()
	y := dec.Cos() * raAngle.Sin()
	z := dec.Sin()

	// rotate into the Earth-fixed frame by sidereal time
	gst := sidereal.Apparent(jd).Angle()
	cosGST, sinGST := gst.Cos(), gst.Sin()

	return vectors.Vec3{
		X: x*cosGST + y*sinGST,
		Y: -x*sinGST + y*cosGST,
		Z: z,
	}.Normalize()
}

// SunLight places a point light distance units along the solar direction.
func SunLight(t time.Time, distance float64) vectors.Vec3 {
	return SunDirection(t).Scale(distance)
}
