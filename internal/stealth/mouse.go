package stealth

import (
	"math"
	"math/rand"
	"time"
)

// Point is one position along a pointer path.
type Point struct {
	X float64
	Y float64
}

// Mouse generates curved pointer paths so click-to-focus on form fields
// looks like hand movement rather than a teleporting cursor.
type Mouse struct {
	rng *rand.Rand
}

// NewMouse creates a new Mouse instance
func NewMouse() *Mouse {
	return &Mouse{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Path returns a cubic Bézier path from (startX,startY) to (endX,endY) with
// randomized control points. Step count scales with distance.
func (m *Mouse) Path(startX, startY, endX, endY float64) []Point {
	dx := endX - startX
	dy := endY - startY
	dist := math.Hypot(dx, dy)

	steps := int(dist / 15)
	if steps < 8 {
		steps = 8
	}
	if steps > 60 {
		steps = 60
	}

	// Control points offset perpendicular to the straight line, scaled by
	// distance, so short hops curve less than long reaches.
	spread := dist * 0.25
	c1 := Point{
		X: startX + dx*0.3 + (m.rng.Float64()-0.5)*spread,
		Y: startY + dy*0.3 + (m.rng.Float64()-0.5)*spread,
	}
	c2 := Point{
		X: startX + dx*0.7 + (m.rng.Float64()-0.5)*spread,
		Y: startY + dy*0.7 + (m.rng.Float64()-0.5)*spread,
	}

	path := make([]Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		path = append(path, cubicBezier(Point{startX, startY}, c1, c2, Point{endX, endY}, t))
	}

	return path
}

func cubicBezier(p0, p1, p2, p3 Point, t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
