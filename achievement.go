package main

// AchievementDef describes one unlockable
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var Achievements = []AchievementDef{
	{"first_kill", "First Kill", "Destroy your first enemy"},
	{"boss_slayer", "Boss Slayer", "Defeat a boss"},
	{"marathon", "Marathon", "Travel 10000 units in a single run"},
	{"high_score", "High Score", "Score 10000 points in a single run"},
	{"century", "Century", "Reach 100 total kills"},
}

// CheckAchievements unlocks whatever the finished run earned and returns
// only the newly unlocked ones. Lifetime stats must already include the run.
func CheckAchievements(db *DB, playerID int64, run RunResult) []AchievementDef {
	if db == nil || playerID <= 0 {
		return nil
	}
	stats, err := db.GetStats(playerID)
	if err != nil || stats == nil {
		return nil
	}

	earned := func(id string) bool {
		switch id {
		case "first_kill":
			return stats.Kills >= 1
		case "boss_slayer":
			return stats.Bosses >= 1
		case "marathon":
			return run.Distance >= 10000
		case "high_score":
			return run.Score >= 10000
		case "century":
			return stats.Kills >= 100
		}
		return false
	}

	var unlocked []AchievementDef
	for _, def := range Achievements {
		if !earned(def.ID) {
			continue
		}
		if ok, err := db.UnlockAchievement(playerID, def.ID); err == nil && ok {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked
}
