package registration

// Contract is the single source of thresholds for a team registration.
// The server validator and the client form controller both build their
// rules from it.
type Contract struct {
	NameMinLen        int
	IdeaSummaryMinLen int
	IdeaSummaryMaxLen int
	MinMembers        int
	MaxMembers        int
	Tracks            []string
	DefaultTrack      string
}

const (
	TrackEducation      = "Education & Skill Development"
	TrackDisaster       = "Disaster Management & Resilience"
	TrackEnergy         = "Renewable Energy & Energy Efficiency"
	TrackPostHarvest    = "AI for Post-harvest Management"
	TrackOpenInnovation = "Open Innovation"
)

func DefaultContract() Contract {
	return Contract{
		NameMinLen:        2,
		IdeaSummaryMinLen: 40,
		IdeaSummaryMaxLen: 1200,
		MinMembers:        2,
		MaxMembers:        5,
		Tracks: []string{
			TrackEducation,
			TrackDisaster,
			TrackEnergy,
			TrackPostHarvest,
			TrackOpenInnovation,
		},
		DefaultTrack: TrackOpenInnovation,
	}
}

// HasTrack reports whether name is one of the contract's tracks.
func (c Contract) HasTrack(name string) bool {
	for _, t := range c.Tracks {
		if t == name {
			return true
		}
	}
	return false
}
