package model

// Contact is the data structure for one person in the address book. The Id
// field is assigned by the database on creation and never changes. Tags is a
// single comma-joined text field; ProfilePic is either empty or the generated
// filename of an uploaded image. Both are always at least an empty string at
// the API boundary, never null.
type Contact struct {
	Id         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Favorite   bool   `json:"favorite"`
	Tags       string `json:"tags"`
	ProfilePic string `json:"profilePic"`
}

// ContactInput carries the mutable fields of a contact as submitted by a
// client, either as a JSON body or as one parsed CSV row. Zero values double
// as the defaults: favorite false, tags and profilePic empty.
type ContactInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Favorite   bool   `json:"favorite"`
	Tags       string `json:"tags"`
	ProfilePic string `json:"profilePic"`
}
