package model

// Normalize repairs a decoded document in place and returns the legacy
// referral names that matched no client.
//
// Name-based referrals are resolved to client ids (first client with that
// name wins). Nil slices become empty, an unknown time range falls back to
// 12 months, and an open modal of unknown type is closed. A valid modal is
// kept as stored.
func (s *State) Normalize() []string {
	if s.MrrHistory == nil {
		s.MrrHistory = []MrrPoint{}
	}
	if s.Clients == nil {
		s.Clients = []Client{}
	}
	if s.ClientActivity == nil {
		s.ClientActivity = []ActivityPoint{}
	}
	if s.Affiliates == nil {
		s.Affiliates = []Affiliate{}
	}

	byName := make(map[string]int64, len(s.Clients))
	for i := len(s.Clients) - 1; i >= 0; i-- {
		byName[s.Clients[i].Name] = s.Clients[i].ID
	}

	var unresolved []string
	for i := range s.Affiliates {
		a := &s.Affiliates[i]
		for _, name := range a.Referred {
			id, ok := byName[name]
			if !ok {
				unresolved = append(unresolved, name)
				continue
			}
			if !containsID(a.ReferredIDs, id) {
				a.ReferredIDs = append(a.ReferredIDs, id)
			}
		}
		a.Referred = nil
		if a.ReferredIDs == nil {
			a.ReferredIDs = []int64{}
		}
	}

	if !s.UI.MrrTimeRange.Valid() {
		s.UI.MrrTimeRange = Range12
	}
	if s.UI.Modal.IsOpen && !s.UI.Modal.Type.Valid() {
		s.UI.Modal = Modal{}
	}
	return unresolved
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
