package combatlog

import (
	"strconv"
	"strings"
)

// Category groups difficulty ids under one recording toggle.
type Category string

const (
	CategoryLFR    Category = "lfr"
	CategoryNormal Category = "normal"
	CategoryHeroic Category = "heroic"
	CategoryMythic Category = "mythic"
	CategoryOther  Category = "other"
)

var categoryIDs = map[Category][]int{
	CategoryLFR:    {7, 17},
	CategoryNormal: {1, 14},
	CategoryHeroic: {2, 15},
	CategoryMythic: {3, 16, 23},
	CategoryOther:  {4, 5, 8, 9, 24, 33},
}

var difficultyNames = map[int]string{
	1:  "Normal",
	2:  "Heroic",
	3:  "Mythic",
	4:  "Mythic+",
	5:  "Timewalking",
	7:  "LFR",
	9:  "40Player",
	14: "Normal",
	15: "Heroic",
	16: "Mythic",
	17: "LFR",
	23: "Mythic",
	24: "Timewalking",
	33: "Timewalking",
}

// CategoryOf returns the toggle category for a difficulty id.
// Unknown ids fall into CategoryOther.
func CategoryOf(difficultyID int) Category {
	for cat, ids := range categoryIDs {
		for _, id := range ids {
			if id == difficultyID {
				return cat
			}
		}
	}
	return CategoryOther
}

// DifficultyName returns the display name used in file names and the GUI.
func DifficultyName(difficultyID int) string {
	if name, ok := difficultyNames[difficultyID]; ok {
		return name
	}
	return "Difficulty_" + strconv.Itoa(difficultyID)
}

var nameReplacer = strings.NewReplacer(
	"<", "", ">", "", ":", "", `"`, "", "/", "", `\`, "", "|", "", "?", "", "*", "",
	"'", "", ",", "",
	" ", "_",
)

// SanitizeName turns a boss or dungeon name into a file-name-safe token.
func SanitizeName(name string) string {
	return strings.Trim(nameReplacer.Replace(strings.TrimSpace(name)), "_")
}
