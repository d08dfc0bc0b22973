// Package client is the state controller behind a contacts UI. It keeps the
// last fetched contact list in memory, applies search and tag filter
// predicates locally, and re-fetches the full list after every mutation
// instead of merging the mutation's response. That refetch-everything
// contract is fine for personal address books; callers at larger scale
// should move to incremental updates.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"gitlab.com/contactdeck/contacts-manager/pkg/model"
)

// minPhoneDigits is the minimum number of digit characters a phone number
// must contain, after stripping everything that is not a digit. Enforced
// here on create only, matching the form validation of the browser client.
const minPhoneDigits = 9

// Client talks to a contacts manager service and caches its contact list.
type Client struct {
	baseURL    string
	httpClient *http.Client

	contacts  []model.Contact
	search    string
	tagFilter string
}

// New returns a client for the service at baseURL, for example
// "http://localhost:8080". The cached list is empty until Refresh.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
}

// Refresh replaces the cached list with the server's current one.
func (c *Client) Refresh() error {
	res, err := c.httpClient.Get(c.baseURL + "/contacts")
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching contacts: unexpected status %s", res.Status)
	}
	var contacts []model.Contact
	if err := json.NewDecoder(res.Body).Decode(&contacts); err != nil {
		return err
	}
	c.contacts = contacts
	return nil
}

// SetSearch sets the free-text search predicate. The search matches
// case-insensitively against name and email and as a plain substring against
// the phone number.
func (c *Client) SetSearch(search string) {
	c.search = search
}

// SetTagFilter restricts the visible contacts to those carrying the tag.
// An empty tag shows all contacts.
func (c *Client) SetTagFilter(tag string) {
	c.tagFilter = tag
}

// Contacts returns the cached contacts that match the current search and tag
// filter.
func (c *Client) Contacts() []model.Contact {
	matched := make([]model.Contact, 0, len(c.contacts))
	for _, contact := range c.contacts {
		if matchesSearch(contact, c.search) && matchesTag(contact, c.tagFilter) {
			matched = append(matched, contact)
		}
	}
	return matched
}

// Tags returns the deduplicated set of trimmed tags across all cached
// contacts, in first-seen order. Trimming happens only here, for display and
// filtering; stored tag fields are never rewritten.
func (c *Client) Tags() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, contact := range c.contacts {
		for _, tag := range splitTags(contact.Tags) {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// Create posts a new contact and re-fetches the list. The phone number must
// contain at least nine digit characters; that rule exists only on this
// create path, not on update or import.
func (c *Client) Create(in model.ContactInput) error {
	if digitCount(in.Phone) < minPhoneDigits {
		return fmt.Errorf("phone number must contain at least %d digits", minPhoneDigits)
	}
	if err := c.send(http.MethodPost, "/contacts", in, http.StatusCreated); err != nil {
		return err
	}
	return c.Refresh()
}

// Update replaces all fields of the contact and re-fetches the list.
func (c *Client) Update(id int64, in model.ContactInput) error {
	if err := c.send(http.MethodPut, fmt.Sprintf("/contacts/%d", id), in, http.StatusOK); err != nil {
		return err
	}
	return c.Refresh()
}

// Delete removes the contact and re-fetches the list.
func (c *Client) Delete(id int64) error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/contacts/%d", c.baseURL, id), nil)
	if err != nil {
		return err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		return fmt.Errorf("deleting contact %d: unexpected status %s", id, res.Status)
	}
	return c.Refresh()
}

// Import uploads a CSV document to the bulk import endpoint and re-fetches
// the list on success. On a partial failure the server's message is returned
// as an error and the cached list is left untouched; rows that imported
// before a failing row stay imported on the server.
func (c *Client) Import(csvDoc io.Reader) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("csv", "contacts.csv")
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, csvDoc); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/contacts/import", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("importing contacts: unexpected status %s: %s", res.Status, body)
	}
	io.Copy(io.Discard, res.Body)
	return c.Refresh()
}

// Export downloads the CSV export of all contacts.
func (c *Client) Export() ([]byte, error) {
	res, err := c.httpClient.Get(c.baseURL + "/contacts/export")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exporting contacts: unexpected status %s", res.Status)
	}
	return io.ReadAll(res.Body)
}

func (c *Client) send(method, path string, in model.ContactInput, wantStatus int) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != wantStatus {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%s %s: unexpected status %s: %s", method, path, res.Status, body)
	}
	return nil
}

func matchesSearch(contact model.Contact, search string) bool {
	if search == "" {
		return true
	}
	lower := strings.ToLower(search)
	return strings.Contains(strings.ToLower(contact.Name), lower) ||
		strings.Contains(strings.ToLower(contact.Email), lower) ||
		strings.Contains(contact.Phone, search)
}

func matchesTag(contact model.Contact, tag string) bool {
	if tag == "" {
		return true
	}
	for _, t := range splitTags(contact.Tags) {
		if t == tag {
			return true
		}
	}
	return false
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	var trimmed []string
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			trimmed = append(trimmed, tag)
		}
	}
	return trimmed
}

func digitCount(phone string) int {
	count := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}
