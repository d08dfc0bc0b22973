package integrationtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"gitlab.com/contactdeck/contacts-manager/internal/config"
	"gitlab.com/contactdeck/contacts-manager/internal/model"
	"gitlab.com/contactdeck/contacts-manager/internal/repository"
	"gitlab.com/contactdeck/contacts-manager/internal/service"
	"gitlab.com/contactdeck/contacts-manager/internal/upload"
)

// setupRouter connects to the real database configured in the environment
// and returns a router against which requests can be executed.
func setupRouter(t *testing.T) *gin.Engine {
	cfg := config.Load()
	sqlDB, err := service.CreateDatabase(cfg.DBUser, cfg.DBPassword, cfg.DBHost)
	if err != nil {
		t.Fatalf("could not open the database: %s", err)
	}
	repo, err := repository.New(sqlDB)
	if err != nil {
		t.Fatalf("could not prepare statements: %s", err)
	}
	uploads, err := upload.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("could not create the upload store: %s", err)
	}
	gin.SetMode(gin.ReleaseMode)
	return service.New(repo, uploads, zap.NewNop()).SetupHttpRouter()
}

// TestContactHappyPath tests a POST, PUT, and DELETE with valid data and
// verifies each step through the list endpoint.
func TestContactHappyPath(t *testing.T) {
	router := setupRouter(t)

	// test the endpoint for creating a contact
	postRecorder := httptest.NewRecorder()
	postRequest, _ := http.NewRequest("POST", "/contacts", strings.NewReader(`
		{
			"name": "Erika Mustermann",
			"email": "erika@example.com",
			"phone": "+49 0815 4711",
			"favorite": true,
			"tags": "work, golf"
		}
	`))
	router.ServeHTTP(postRecorder, postRequest)
	assert.Equal(t, http.StatusCreated, postRecorder.Code)
	var created model.Contact
	json.Unmarshal(postRecorder.Body.Bytes(), &created)
	assert.Equal(t, "Erika Mustermann", created.Name)
	assert.Equal(t, "erika@example.com", created.Email)
	assert.True(t, created.Favorite)
	assert.Equal(t, "work, golf", created.Tags, "tags must be stored without normalization")
	assert.Equal(t, "", created.ProfilePic)
	idAsString := fmt.Sprintf("%d", created.Id)

	// test that the list now contains the contact
	found, ok := findInList(t, router, created.Id)
	assert.True(t, ok)
	assert.Equal(t, created, found)

	// test the endpoint for updating a contact
	putRecorder := httptest.NewRecorder()
	putRequest, _ := http.NewRequest("PUT", "/contacts/"+idAsString, strings.NewReader(`
		{
			"name": "Rudi Völler",
			"email": "rudi@example.com",
			"phone": "+49 1234567890"
		}
	`))
	router.ServeHTTP(putRecorder, putRequest)
	assert.Equal(t, http.StatusOK, putRecorder.Code)
	updated, ok := findInList(t, router, created.Id)
	assert.True(t, ok)
	assert.Equal(t, "Rudi Völler", updated.Name)
	assert.False(t, updated.Favorite, "a full replace must reset omitted fields")
	assert.Equal(t, "", updated.Tags)

	// test the endpoint for deleting a contact
	deleteRecorder := httptest.NewRecorder()
	deleteRequest, _ := http.NewRequest("DELETE", "/contacts/"+idAsString, nil)
	router.ServeHTTP(deleteRecorder, deleteRequest)
	assert.Equal(t, http.StatusNoContent, deleteRecorder.Code)
	_, ok = findInList(t, router, created.Id)
	assert.False(t, ok)

	// deleting the same id again must still report success
	deleteAgainRecorder := httptest.NewRecorder()
	deleteAgainRequest, _ := http.NewRequest("DELETE", "/contacts/"+idAsString, nil)
	router.ServeHTTP(deleteAgainRecorder, deleteAgainRequest)
	assert.Equal(t, http.StatusNoContent, deleteAgainRecorder.Code)
}

// TestExportImportRoundTrip exports the current contacts, imports the
// document again and verifies that the imported copies match field by field.
func TestExportImportRoundTrip(t *testing.T) {
	router := setupRouter(t)

	seed := []string{
		`{"name": "Marcus Antonius", "email": "marcus@example.com", "phone": "+39 999 777 555", "tags": "rome,politics", "favorite": true}`,
		`{"name": "Kleopatra Philopator", "email": "kleopatra@example.com", "phone": "+20 123 456 789"}`,
	}
	var seededIds []int64
	for _, body := range seed {
		recorder := httptest.NewRecorder()
		request, _ := http.NewRequest("POST", "/contacts", strings.NewReader(body))
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusCreated, recorder.Code)
		var created model.Contact
		json.Unmarshal(recorder.Body.Bytes(), &created)
		seededIds = append(seededIds, created.Id)
	}

	before := listContacts(t, router)

	// export
	exportRecorder := httptest.NewRecorder()
	exportRequest, _ := http.NewRequest("GET", "/contacts/export", nil)
	router.ServeHTTP(exportRecorder, exportRequest)
	assert.Equal(t, http.StatusOK, exportRecorder.Code)
	assert.Equal(t, "text/csv", exportRecorder.Header().Get("Content-Type"))

	// import the exported document again
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("csv", "contacts.csv")
	part.Write(exportRecorder.Body.Bytes())
	writer.Close()
	importRecorder := httptest.NewRecorder()
	importRequest, _ := http.NewRequest("POST", "/contacts/import", &buf)
	importRequest.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(importRecorder, importRequest)
	assert.Equal(t, http.StatusOK, importRecorder.Code)

	var importBody map[string]interface{}
	json.Unmarshal(importRecorder.Body.Bytes(), &importBody)
	assert.Equal(t, float64(len(before)), importBody["count"])

	// every exported contact must now exist twice, under different ids
	after := listContacts(t, router)
	assert.Equal(t, 2*len(before), len(after))
	for _, original := range before {
		matches := 0
		for _, contact := range after {
			if contact.Name == original.Name && contact.Email == original.Email &&
				contact.Phone == original.Phone && contact.Favorite == original.Favorite &&
				contact.Tags == original.Tags && contact.ProfilePic == original.ProfilePic {
				matches++
			}
		}
		assert.Equal(t, 2, matches, "contact %q must round-trip unchanged", original.Name)
	}

	// clean up everything this test created
	for _, contact := range after {
		recorder := httptest.NewRecorder()
		request, _ := http.NewRequest("DELETE", fmt.Sprintf("/contacts/%d", contact.Id), nil)
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusNoContent, recorder.Code)
	}
}

// TestConcurrentCreatesGetDistinctIds fires parallel create requests with
// identical field values and expects a distinct store-assigned id for each.
func TestConcurrentCreatesGetDistinctIds(t *testing.T) {
	router := setupRouter(t)

	const creates = 20
	ids := make(chan int64, creates)
	var wg sync.WaitGroup
	for i := 0; i < creates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recorder := httptest.NewRecorder()
			request, _ := http.NewRequest("POST", "/contacts", strings.NewReader(`
				{
					"name": "Twin Twinson",
					"email": "twin@example.com",
					"phone": "+49 123 456 789"
				}
			`))
			router.ServeHTTP(recorder, request)
			assert.Equal(t, http.StatusCreated, recorder.Code)
			var created model.Contact
			json.Unmarshal(recorder.Body.Bytes(), &created)
			ids <- created.Id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate store-assigned id %d", id)
		seen[id] = true
	}
	assert.Equal(t, creates, len(seen))

	// clean up everything this test created
	for id := range seen {
		recorder := httptest.NewRecorder()
		request, _ := http.NewRequest("DELETE", fmt.Sprintf("/contacts/%d", id), nil)
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusNoContent, recorder.Code)
	}
}

// listContacts fetches the full contact list.
func listContacts(t *testing.T, router *gin.Engine) []model.Contact {
	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest("GET", "/contacts", nil)
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	var contacts []model.Contact
	json.Unmarshal(recorder.Body.Bytes(), &contacts)
	return contacts
}

// findInList fetches the full contact list and returns the contact with the
// given id, if present.
func findInList(t *testing.T, router *gin.Engine, id int64) (model.Contact, bool) {
	for _, contact := range listContacts(t, router) {
		if contact.Id == id {
			return contact, true
		}
	}
	return model.Contact{}, false
}
