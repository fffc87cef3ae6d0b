package harvest

import "fmt"

// Wire types for the time-tracking API. Only the fields the sync job
// consumes are mapped.

type Client struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Project struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	Client   struct {
		ID int64 `json:"id"`
	} `json:"client"`
	ClientID int64 `json:"client_id"`
}

// ClientRef is the external client id a project points at, from either
// the nested object or the flat field.
func (p Project) ClientRef() int64 {
	if p.Client.ID != 0 {
		return p.Client.ID
	}
	return p.ClientID
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
}

type clientsPage struct {
	Clients  []Client `json:"clients"`
	NextPage *int     `json:"next_page"`
}

type projectsPage struct {
	Projects []Project `json:"projects"`
	NextPage *int      `json:"next_page"`
}

type usersPage struct {
	Users    []User `json:"users"`
	NextPage *int   `json:"next_page"`
}

// APIError reports a non-success upstream response for one resource
// type's page walk.
type APIError struct {
	Resource   string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("harvest %s fetch failed: status %d", e.Resource, e.StatusCode)
}
