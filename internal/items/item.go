package items

import "time"

// Report types.
const (
	TypeLost  = "lost"
	TypeFound = "found"
)

// Reporter identifies the user who filed a report. Name is a point-in-time
// snapshot taken at creation; it may go stale if the account is renamed.
type Reporter struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Item is a lost-or-found report.
type Item struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Location    string     `json:"location"`
	Date        time.Time  `json:"date"`
	Contact     string     `json:"contact"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	ReportedBy  Reporter   `json:"reportedBy"`
	Claimed     bool       `json:"claimed"`
	ClaimedAt   *time.Time `json:"claimedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}
