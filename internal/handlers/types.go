package handlers

import "time"

// ShortenRequest is the request for creating a short link.
type ShortenRequest struct {
	UserID string `doc:"Caller identity; a new one is issued when absent or unknown" header:"userId"`
	Body   struct {
		URL      string `doc:"The URL to shorten"            example:"https://example.com/very/long/path" format:"uri" json:"url"             minLength:"1"`
		Quota    *int   `doc:"Maximum number of redirects"   example:"10"                                              json:"quota,omitempty"    minimum:"0"`
		TTLHours *int   `doc:"Hours until the link expires" example:"24"                                              json:"ttlHours,omitempty" maximum:"87600" minimum:"0"`
	}
}

// ShortenResponse is the response for a newly created link.
type ShortenResponse struct {
	Location string `doc:"The short URL" header:"Location"`
	Body     struct {
		Code     string `doc:"The short code"         example:"aB3dE6gH"                             json:"code"`
		ShortURL string `doc:"The full short URL"     example:"http://localhost:8888/aB3dE6gH"       json:"shortUrl"`
		UserID   string `doc:"The identity owning it" example:"3f1c0a9e-5d2b-4c7e-9a41-0c6d2e8b7f10" json:"userId"`
	}
}

// RedirectRequest is the request for following a short link.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"aB3dE6gH" path:"code"`
}

// RedirectResponse sends the client to the target URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// UpdateQuotaRequest changes the quota of an owned link.
type UpdateQuotaRequest struct {
	Code   string `doc:"The short code"  path:"code"`
	UserID string `doc:"Caller identity" header:"userId"`
	Body   struct {
		Quota int `doc:"New maximum number of redirects" example:"25" json:"quota"`
	}
}

// UpdateQuotaResponse confirms a quota change.
type UpdateQuotaResponse struct {
	Body struct {
		Message string `json:"message"`
		Quota   int    `json:"quota"`
	}
}

// LinkRequest addresses an owned link.
type LinkRequest struct {
	Code   string `doc:"The short code"  path:"code"`
	UserID string `doc:"Caller identity" header:"userId"`
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// StatsResponse reports usage of an owned link.
type StatsResponse struct {
	Body struct {
		OriginalURL string    `doc:"The target URL"            json:"originalUrl"`
		ExpiryTime  time.Time `doc:"When the link expires"     json:"expiryTime"`
		ClickCount  int       `doc:"Redirects consumed so far" json:"clickCount"`
		MaxClicks   int       `doc:"Redirect quota"            json:"maxClicks"`
	}
}

// ListRequest lists the links of the caller.
type ListRequest struct {
	UserID string `doc:"Caller identity" header:"userId"`
}

// ListResponse holds the codes owned by the caller.
type ListResponse struct {
	Body struct {
		Links []string `doc:"Owned short codes" json:"links"`
	}
}
