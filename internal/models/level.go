package models

// Level is one of the three canonical participation buckets used for reporting.
type Level string

const (
	LevelInternational Level = "Antarabangsa"
	LevelNational      Level = "Kebangsaan / Antara University"
	LevelCampus        Level = "Kampus"
)

// Levels in display order, highest tier first.
var Levels = []Level{LevelInternational, LevelNational, LevelCampus}

func (l Level) String() string { return string(l) }
