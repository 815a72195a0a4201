package seeder

// Defaults returns the demo data set in dependency order. Every seeder is
// idempotent, so running it twice leaves the data unchanged.
func Defaults() []Seeder {
	return []Seeder{
		UsersSeeder{},
		KnowledgeAreasSeeder{},
		UserKnowledgeAreasSeeder{},
		CareerMilestonesSeeder{},
	}
}
