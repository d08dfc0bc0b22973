package main

import (
	"fmt"

	"gitlab.com/contactdeck/contacts-manager/pkg/client"
	"gitlab.com/contactdeck/contacts-manager/pkg/model"
)

const serverURL = "http://localhost:8080"

// A small demo client that exercises the REST API the way the browser UI
// does: create a few contacts, search and filter the cached list, toggle a
// favorite, export the CSV document and clean up again.
//
// Usage example on the command line:
// > go run main.go
func main() {
	c := client.New(serverURL)

	seed := []model.ContactInput{
		{Name: "Marcus Antonius", Email: "marcus@example.com", Phone: "+39 999 777 555", Tags: "rome,politics"},
		{Name: "Kleopatra Philopator", Email: "kleopatra@example.com", Phone: "+20 123 456 789", Tags: "egypt,politics", Favorite: true},
		{Name: "Gaius Octavius", Email: "octavius@example.com", Phone: "+39 111 222 333", Tags: "rome"},
	}
	for _, in := range seed {
		if err := c.Create(in); err != nil {
			fmt.Println("could not create contact:", err)
			panic(err)
		}
	}
	fmt.Printf("created %d contacts\n", len(seed))

	c.SetSearch("octavius")
	fmt.Printf("search 'octavius' matches %d contact(s)\n", len(c.Contacts()))

	c.SetSearch("")
	c.SetTagFilter("politics")
	fmt.Println("contacts tagged 'politics':")
	for _, contact := range c.Contacts() {
		fmt.Printf("  %4d  %-22s %-26s favorite=%v\n", contact.Id, contact.Name, contact.Email, contact.Favorite)
	}
	fmt.Println("known tags:", c.Tags())

	c.SetTagFilter("")
	all := c.Contacts()
	first := all[0]
	first.Favorite = true
	err := c.Update(first.Id, model.ContactInput{
		Name: first.Name, Email: first.Email, Phone: first.Phone,
		Favorite: first.Favorite, Tags: first.Tags, ProfilePic: first.ProfilePic,
	})
	if err != nil {
		fmt.Println("could not update contact:", err)
		panic(err)
	}
	fmt.Printf("marked %q as favorite\n", first.Name)

	csvDoc, err := c.Export()
	if err != nil {
		fmt.Println("could not export contacts:", err)
		panic(err)
	}
	fmt.Printf("exported %d bytes of CSV:\n%s", len(csvDoc), csvDoc)

	for _, contact := range c.Contacts() {
		if err := c.Delete(contact.Id); err != nil {
			fmt.Println("could not delete contact:", err)
			panic(err)
		}
	}
	fmt.Println("cleaned up")
}
