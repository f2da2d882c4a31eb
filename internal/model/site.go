package model

// Creator is shown in the "creators" section of the landing page.
type Creator struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DiscordID   string `json:"discordId"`
	AvatarURL   string `json:"avatar"`
}

// Supporter is shown in the scrolling supporters banner.
type Supporter struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

// Stats are the landing page counters.
type Stats struct {
	Users int `json:"users"`
	Posts int `json:"posts"`
}
