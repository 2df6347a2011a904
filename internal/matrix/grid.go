package matrix

// Design-of-experiments axes. The full factorial over these axes is the
// fixed 45-point condition grid every selected oil is run through.
var (
	Temperatures      = []float64{650, 700, 750, 800, 850}
	Pressures         = []float64{5, 17.5, 30}
	SteamCarbonRatios = []float64{2, 4, 6}
)

// Fixed plant parameters shared by every condition point.
const (
	DefaultFeedRateKgh = 100.0
	HTSTemperatureC    = 370.0
	LTSTemperatureC    = 210.0
	PSAPressureBar     = 25.0
	ResidenceTimeMin   = 2.5
	CatalystWeightKg   = 50.0
	GHSVh1             = 5000.0
)

// Point is one condition point of the grid.
type Point struct {
	ConditionID   int
	TemperatureC  float64
	PressureBar   float64
	SteamToCarbon float64
}

// Size returns the number of points in the grid.
func Size() int {
	return len(Temperatures) * len(Pressures) * len(SteamCarbonRatios)
}

// Grid enumerates the condition points. Condition ids are assigned 1..Size
// with temperature as the slowest axis and steam-to-carbon as the fastest.
func Grid() []Point {
	points := make([]Point, 0, Size())
	id := 1
	for _, t := range Temperatures {
		for _, p := range Pressures {
			for _, sc := range SteamCarbonRatios {
				points = append(points, Point{
					ConditionID:   id,
					TemperatureC:  t,
					PressureBar:   p,
					SteamToCarbon: sc,
				})
				id++
			}
		}
	}
	return points
}
