package model

// Contact is the wire shape of one contact as produced and consumed by the
// REST API. Tags is a single comma-joined text field; ProfilePic is either
// empty or the generated filename of an uploaded image.
type Contact struct {
	Id         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Favorite   bool   `json:"favorite"`
	Tags       string `json:"tags"`
	ProfilePic string `json:"profilePic"`
}

// ContactInput carries the mutable fields of a contact for create and update
// requests.
type ContactInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Favorite   bool   `json:"favorite"`
	Tags       string `json:"tags"`
	ProfilePic string `json:"profilePic"`
}
