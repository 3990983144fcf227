// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package crush

// Level is a CRUSH bucket type, i.e. one level of the placement hierarchy.
type Level string

const (
	LevelHost       Level = "host"
	LevelChassis    Level = "chassis"
	LevelRack       Level = "rack"
	LevelRow        Level = "row"
	LevelPDU        Level = "pdu"
	LevelPod        Level = "pod"
	LevelRoom       Level = "room"
	LevelDatacenter Level = "datacenter"
	LevelRegion     Level = "region"
	LevelRoot       Level = "root"
)

// levels is ordered from most specific to most general. A bucket of an
// earlier level is always moved under a bucket of a later level.
var levels = [...]Level{
	LevelHost,
	LevelChassis,
	LevelRack,
	LevelRow,
	LevelPDU,
	LevelPod,
	LevelRoom,
	LevelDatacenter,
	LevelRegion,
	LevelRoot,
}

// Levels returns the recognized bucket types, most specific first.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels[:])
	return out
}

// ParseLevel returns the Level named s, or false if s is not a recognized
// bucket type.
func ParseLevel(s string) (Level, bool) {
	l := Level(s)
	return l, l.Valid()
}

// Valid reports whether l is one of the recognized bucket types.
func (l Level) Valid() bool {
	return l.rank() >= 0
}

func (l Level) String() string {
	return string(l)
}

func (l Level) rank() int {
	for i, lv := range levels {
		if lv == l {
			return i
		}
	}
	return -1
}
