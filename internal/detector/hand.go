package detector

import "math"

// NumLandmarks is the number of MediaPipe hand landmarks.
const NumLandmarks = 21

// Point3D is a landmark in normalized image coordinates (0-1 for x and y).
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is one detected hand. Box is [x, y, width, height] in pixels.
type Hand struct {
	Box        [4]float64 `json:"bbox"`
	Score      float64    `json:"score"`
	Handedness string     `json:"handedness,omitempty"`
	Landmarks  []Point3D  `json:"landmarks,omitempty"`
}

// BoxFromLandmarks returns the pixel bounding box enclosing normalized landmarks
// on a frame of the given size. It returns a zero box for no landmarks.
func BoxFromLandmarks(points []Point3D, width, height int) [4]float64 {
	if len(points) == 0 {
		return [4]float64{}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	w, h := float64(width), float64(height)
	return [4]float64{minX * w, minY * h, (maxX - minX) * w, (maxY - minY) * h}
}

// IoU returns the intersection over union of two [x, y, width, height] boxes.
func IoU(a, b [4]float64) float64 {
	x1 := math.Max(a[0], b[0])
	y1 := math.Max(a[1], b[1])
	x2 := math.Min(a[0]+a[2], b[0]+b[2])
	y2 := math.Min(a[1]+a[3], b[1]+b[3])

	if x2 <= x1 || y2 <= y1 {
		return 0
	}

	inter := (x2 - x1) * (y2 - y1)
	union := a[2]*a[3] + b[2]*b[3] - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
