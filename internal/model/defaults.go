package model

// DefaultState returns the seed document used when nothing is stored.
func DefaultState() *State {
	override := 1000.0
	return &State{
		KPIs: KPIs{
			MRR:               12540,
			MRRGoal:           20000,
			ActiveSubscribers: 284,
		},
		MrrHistory: []MrrPoint{
			{Month: "2023-01", Value: 5200},
			{Month: "2023-02", Value: 5800},
			{Month: "2023-03", Value: 6500},
			{Month: "2023-04", Value: 7100},
			{Month: "2023-05", Value: 8200},
			{Month: "2023-06", Value: 8900},
			{Month: "2023-07", Value: 9500},
			{Month: "2023-08", Value: 10100},
			{Month: "2023-09", Value: 10800},
			{Month: "2023-10", Value: 11500},
			{Month: "2023-11", Value: 12100},
			{Month: "2023-12", Value: 12540},
		},
		Clients: []Client{
			{ID: 1, Name: "Client Alpha", IntegrationDate: "2023-01-15", AdAccountID: "act_12345", TotalSpent: 12000, Phone: "0612345678"},
			{ID: 2, Name: "Client Beta", IntegrationDate: "2023-03-22", AdAccountID: "act_67890", TotalSpent: 8500, Phone: "0687654321"},
			{ID: 3, Name: "Client Gamma", IntegrationDate: "2023-05-10", AdAccountID: "act_54321", TotalSpent: 25000, Phone: "0601020304"},
		},
		ClientActivity: []ActivityPoint{
			{Month: "2023-10", Gained: 22, Lost: 5},
			{Month: "2023-11", Gained: 18, Lost: 8},
			{Month: "2023-12", Gained: 25, Lost: 6},
		},
		Affiliates: []Affiliate{
			{ID: 1, Name: "John Doe", ReferredIDs: []int64{1}, IBAN: "FR76******************123"},
			{ID: 2, Name: "Jane Smith", ReferredIDs: []int64{2, 3}, IBAN: "FR76******************456", MonthlyPayoutOverride: &override},
		},
		UI: UIState{MrrTimeRange: Range12},
	}
}
