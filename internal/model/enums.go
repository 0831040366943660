package model

type ChiselName string

const (
	ChiselCartographers       ChiselName = "Cartographer's Chisel"
	ChiselMavensAvarice       ChiselName = "Maven's Chisel of Avarice"
	ChiselMavensDivination    ChiselName = "Maven's Chisel of Divination"
	ChiselMavensProcurement   ChiselName = "Maven's Chisel of Procurement"
	ChiselMavensProliferation ChiselName = "Maven's Chisel of Proliferation"
	ChiselMavensScarabs       ChiselName = "Maven's Chisel of Scarabs"
)

// ChiselNames lists every chisel the map device accepts.
var ChiselNames = []ChiselName{
	ChiselCartographers,
	ChiselMavensAvarice,
	ChiselMavensDivination,
	ChiselMavensProcurement,
	ChiselMavensProliferation,
	ChiselMavensScarabs,
}

func (c ChiselName) IsValid() bool {
	for _, name := range ChiselNames {
		if c == name {
			return true
		}
	}
	return false
}

type ContactMessageStatus string

const (
	ContactStatusPending      ContactMessageStatus = "pending"
	ContactStatusInDevQueue   ContactMessageStatus = "inDevelopmentQueue"
	ContactStatusStarred      ContactMessageStatus = "starred"
	ContactStatusHighPriority ContactMessageStatus = "highPriority"
	ContactStatusLowPriority  ContactMessageStatus = "lowPriority"
	ContactStatusAddressed    ContactMessageStatus = "addressed"
)

var ContactMessageStatuses = []ContactMessageStatus{
	ContactStatusPending,
	ContactStatusInDevQueue,
	ContactStatusStarred,
	ContactStatusHighPriority,
	ContactStatusLowPriority,
	ContactStatusAddressed,
}

func (s ContactMessageStatus) IsValid() bool {
	for _, status := range ContactMessageStatuses {
		if s == status {
			return true
		}
	}
	return false
}
