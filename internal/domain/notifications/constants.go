package notifications

const (
	TypeStoreAlert = "store_alert"
	TypeSession    = "session"
)

const (
	defaultCapacity = 200
	defaultLimit    = 50
	maxLimit        = 200
)
