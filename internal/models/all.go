package models

// All lists every persisted model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&AdminGrant{},
		&AdminPassword{},
		&Gift{},
		&Battle{},
		&Purchase{},
		&EnergyLog{},
		&ClickerStat{},
		&TestSubmission{},
		&InternProgress{},
		&EventSlot{},
		&EventBooking{},
		&Task{},
		&VacationBalance{},
		&VacationRequest{},
		&Achievement{},
		&AchievementLike{},
		&AchievementComment{},
		&CompanyContact{},
		&Broadcast{},
		&Invoice{},
		&SystemLog{},
	}
}
