package volume

// Level is a coarse name for a volume, used by the tray and the API.
type Level string

const (
	LevelSilent      Level = "silent"
	LevelSuperQuiet  Level = "super-quiet"
	LevelAlmostQuiet Level = "almost-quiet"
	LevelLittleQuiet Level = "little-quiet"
	LevelOkay        Level = "okay"
	LevelNice        Level = "nice"
	LevelSuperNice   Level = "super-nice"
)

// levelFloors is ordered from loudest to quietest; a volume strictly above
// a floor belongs to that level.
var levelFloors = []struct {
	above float64
	level Level
}{
	{90, LevelSuperNice},
	{75, LevelNice},
	{50, LevelOkay},
	{30, LevelLittleQuiet},
	{15, LevelAlmostQuiet},
	{5, LevelSuperQuiet},
}

// LevelFor classifies a volume between 0 and 100.
func LevelFor(v float64) Level {
	for _, f := range levelFloors {
		if v > f.above {
			return f.level
		}
	}
	return LevelSilent
}
