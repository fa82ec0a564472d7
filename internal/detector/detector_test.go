package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestBoxFromLandmarks(t *testing.T) {
	t.Run("encloses all points in pixels", func(t *testing.T) {
		points := []Point3D{
			{X: 0.25, Y: 0.5},
			{X: 0.5, Y: 0.25},
			{X: 0.375, Y: 0.75},
		}

		box := BoxFromLandmarks(points, 640, 480)
		want := [4]float64{160, 120, 160, 240}

		for i := range want {
			if math.Abs(box[i]-want[i]) > epsilon {
				t.Errorf("box[%d] = %f, want %f", i, box[i], want[i])
			}
		}
	})

	t.Run("no points returns zero box", func(t *testing.T) {
		box := BoxFromLandmarks(nil, 640, 480)
		if box != ([4]float64{}) {
			t.Errorf("expected zero box, got %v", box)
		}
	})
}

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b [4]float64
		want float64
	}{
		{"identical", [4]float64{0, 0, 10, 10}, [4]float64{0, 0, 10, 10}, 1},
		{"disjoint", [4]float64{0, 0, 10, 10}, [4]float64{20, 20, 10, 10}, 0},
		{"touching edges", [4]float64{0, 0, 10, 10}, [4]float64{10, 0, 10, 10}, 0},
		{"half overlap", [4]float64{0, 0, 10, 10}, [4]float64{5, 0, 10, 10}, 50.0 / 150.0},
		{"zero area", [4]float64{0, 0, 0, 0}, [4]float64{0, 0, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IoU(tt.a, tt.b); math.Abs(got-tt.want) > epsilon {
				t.Errorf("IoU() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	weak := HandAt(0, 0, 50, 50)
	weak.Score = 0.5
	strong := HandAt(200, 200, 50, 50)
	strong.Score = 0.99
	duplicate := HandAt(201, 201, 50, 50)
	duplicate.Score = 0.9
	other := HandAt(400, 100, 50, 50)
	other.Score = 0.85

	hands := []Hand{weak, other, duplicate, strong}

	t.Run("default keeps only the strongest hand", func(t *testing.T) {
		got := Filter(hands, DefaultConfig())
		if len(got) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(got))
		}
		if got[0].Score != strong.Score {
			t.Errorf("expected strongest hand, got score %f", got[0].Score)
		}
	})

	t.Run("suppresses overlapping boxes", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxHands = 5

		got := Filter(hands, cfg)
		if len(got) != 2 {
			t.Fatalf("expected 2 hands, got %d: %v", len(got), got)
		}
		if got[0].Box != strong.Box || got[1].Box != other.Box {
			t.Errorf("unexpected hands: %v", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := Filter(nil, DefaultConfig()); len(got) != 0 {
			t.Errorf("expected no hands, got %v", got)
		}
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("uses bbox when present", func(t *testing.T) {
		line := `{"hands":[{"bbox":[10,20,30,40],"score":0.9,"handedness":"Left"}]}`

		hands, err := parseResponse([]byte(line), 640, 480)
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Box != [4]float64{10, 20, 30, 40} {
			t.Errorf("unexpected box %v", hands[0].Box)
		}
		if hands[0].Handedness != "Left" {
			t.Errorf("expected Left, got %s", hands[0].Handedness)
		}
	})

	t.Run("derives bbox from points", func(t *testing.T) {
		line := `{"hands":[{"points":[{"x":0.5,"y":0.5,"z":0},{"x":0.75,"y":1,"z":0}],"score":0.8}]}`

		hands, err := parseResponse([]byte(line), 100, 100)
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if hands[0].Box != [4]float64{50, 50, 25, 50} {
			t.Errorf("unexpected box %v", hands[0].Box)
		}
		if len(hands[0].Landmarks) != 2 {
			t.Errorf("expected 2 landmarks, got %d", len(hands[0].Landmarks))
		}
	})

	t.Run("skips hands without geometry", func(t *testing.T) {
		hands, err := parseResponse([]byte(`{"hands":[{"score":0.9}]}`), 100, 100)
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected no hands, got %v", hands)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := parseResponse([]byte("not json"), 100, 100); err == nil {
			t.Error("expected error for invalid json")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("queued results come before fixed hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]Hand{HandAt(1, 1, 1, 1)})
		mock.Enqueue(nil, []Hand{HandAt(5, 5, 5, 5)})

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		if len(first) != 0 {
			t.Errorf("expected empty first frame, got %v", first)
		}
		if len(second) != 1 || second[0].Box[0] != 5 {
			t.Errorf("unexpected second frame %v", second)
		}
		if len(third) != 1 || third[0].Box[0] != 1 {
			t.Errorf("unexpected third frame %v", third)
		}
		if mock.Calls() != 3 {
			t.Errorf("expected 3 calls, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)
		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector()

		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
		if !mock.Closed() {
			t.Error("expected mock to be closed")
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}
