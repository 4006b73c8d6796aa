package reddit

// tokenResponse is the body of a successful password-grant token exchange.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
}

// Listing is the standard Reddit listing envelope returned by /r/{sub}/new.
type Listing struct {
	Kind string      `json:"kind"`
	Data ListingData `json:"data"`
}

// ListingData carries the page contents and pagination cursors. After is
// null in the JSON once the listing is exhausted, which decodes to "".
type ListingData struct {
	After    string  `json:"after"`
	Before   string  `json:"before"`
	Dist     int     `json:"dist"`
	Children []Child `json:"children"`
}

// Child wraps one post in a listing.
type Child struct {
	Kind string    `json:"kind"`
	Data ChildData `json:"data"`
}

// ChildData holds the post fields we extract. Name is the globally unique
// fullname ("t3_..."), which serves as the record ID.
type ChildData struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	Subreddit  string  `json:"subreddit"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`
}
