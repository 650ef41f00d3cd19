package stores

// Level is one row of the static store progression table. Promotion is
// one-way: a store never demotes even if the table changes underneath it.
type Level struct {
	Level        int    `json:"level"`
	Name         string `json:"name"`
	RequiredExp  int    `json:"required_exp"`
	ListingLimit int    `json:"listing_limit"`
}

var levelTable = []Level{
	{Level: 1, Name: "Warung Baru", RequiredExp: 0, ListingLimit: 10},
	{Level: 2, Name: "Toko Berkembang", RequiredExp: 50, ListingLimit: 25},
	{Level: 3, Name: "Toko Mapan", RequiredExp: 150, ListingLimit: 50},
	{Level: 4, Name: "Juragan", RequiredExp: 400, ListingLimit: 100},
	{Level: 5, Name: "Saudagar", RequiredExp: 1000, ListingLimit: 250},
}

// LevelTable returns a copy of the progression table.
func LevelTable() []Level {
	out := make([]Level, len(levelTable))
	copy(out, levelTable)
	return out
}

// LevelForExp returns the highest level whose required exp is within reach.
func LevelForExp(exp int) Level {
	current := levelTable[0]
	for _, level := range levelTable {
		if exp >= level.RequiredExp {
			current = level
		}
	}
	return current
}

// ListingLimitForLevel resolves the catalog cap for a store level. Unknown
// levels fall back to the first row.
func ListingLimitForLevel(level int) int {
	for _, row := range levelTable {
		if row.Level == level {
			return row.ListingLimit
		}
	}
	return levelTable[0].ListingLimit
}
