package service

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"gitlab.com/contactdeck/contacts-manager/internal/metrics"
	"gitlab.com/contactdeck/contacts-manager/internal/model"
	"gitlab.com/contactdeck/contacts-manager/internal/repository"
	"gitlab.com/contactdeck/contacts-manager/internal/transfer"
	"gitlab.com/contactdeck/contacts-manager/internal/upload"
)

// maxFailurePreview caps how many failing rows an import response lists.
// The remainder is reported as a count so that the payload stays bounded.
const maxFailurePreview = 10

// Service holds the REST API handlers and their collaborators.
type Service struct {
	repo    *repository.Repository
	uploads *upload.Store
	log     *zap.Logger
}

// New wires the handlers to the specified repository and upload store.
func New(repo *repository.Repository, uploads *upload.Store, log *zap.Logger) *Service {
	return &Service{repo: repo, uploads: uploads, log: log}
}

// CreateDatabase initializes and returns a database connection. The
// connection parameters are taken from the system's environment variables.
func CreateDatabase(user, password, host string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/contacts?parseTime=true", user, password, host)
	return sql.Open("mysql", dsn)
}

// SetupHttpRouter initializes the REST API router and registers all
// endpoints. Setting the environment variable GIN_LOGGING to 'off' disables
// gin's per-request logging.
func (s *Service) SetupHttpRouter() *gin.Engine {
	var router *gin.Engine
	if strings.EqualFold(os.Getenv("GIN_LOGGING"), "off") {
		router = gin.New()
		router.Use(gin.Recovery())
	} else {
		router = gin.Default()
	}
	router.Use(countRequests)
	router.GET("/contacts", s.findContacts)
	router.POST("/contacts", s.createContact)
	router.PUT("/contacts/:id", s.updateContactByID)
	router.DELETE("/contacts/:id", s.deleteContactByID)
	router.POST("/upload", s.uploadProfilePic)
	router.GET("/contacts/export", s.exportContacts)
	router.POST("/contacts/import", s.importContacts)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.Static("/uploads", s.uploads.Dir())
	return router
}

// countRequests feeds the per-route request counter.
func countRequests(c *gin.Context) {
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
}

// findContacts responds with the list of all contacts as JSON. The list may
// be empty; that is not an error.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/contacts"
func (s *Service) findContacts(c *gin.Context) {
	contacts, err := s.repo.List()
	if err != nil {
		s.serverError(c, "list contacts", err)
		return
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// createContact inserts the contact specified in the request's JSON into the
// database. It responds with the full contact data including the newly
// assigned id. Name, email and phone are required; tags and profilePic
// default to the empty string.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Hans Wurst", "email": "hans@example.com", "phone": "+49 0815 4711", "favorite": true, "tags": "work"}'
func (s *Service) createContact(c *gin.Context) {
	var in model.ContactInput
	if err := c.BindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	contact, err := s.repo.Create(in)
	var vErr *repository.ValidationError
	if errors.As(err, &vErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
		return
	}
	if err != nil {
		s.serverError(c, "create contact", err)
		return
	}
	metrics.ContactsCreated.Inc()
	c.IndentedJSON(http.StatusCreated, contact)
}

// updateContactByID replaces all mutable fields of the contact whose ID
// matches the id parameter of the request URL and responds with the new
// version. There is no partial patch: omitted fields are written as their
// defaults. An id that does not exist in the database is a silent no-op.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"name": "Hans Wurst", "email": "hans@example.com", "phone": "+49 0815 4711"}'
func (s *Service) updateContactByID(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	var in model.ContactInput
	if err := c.BindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	contact, err := s.repo.Update(id, in)
	if err != nil {
		s.serverError(c, "update contact", err)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// deleteContactByID deletes the contact whose ID matches the id parameter of
// the request URL. Deleting an id that does not exist still reports success.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56 --request "DELETE"
func (s *Service) deleteContactByID(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	if err := s.repo.Delete(id); err != nil {
		s.serverError(c, "delete contact", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// uploadProfilePic stores the image from the multipart field 'profilePic'
// under a generated collision-resistant name and responds with that name.
// The stored file is served back under /uploads/<filename>.
func (s *Service) uploadProfilePic(c *gin.Context) {
	file, err := c.FormFile("profilePic")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	src, err := file.Open()
	if err != nil {
		s.serverError(c, "open upload", err)
		return
	}
	defer src.Close()
	name, err := s.uploads.Save(src, file.Filename)
	if err != nil {
		s.serverError(c, "store upload", err)
		return
	}
	metrics.UploadsStored.Inc()
	c.JSON(http.StatusOK, gin.H{"filename": name})
}

// exportContacts responds with all contacts as a downloadable CSV document.
//
// Example REST API call:
//
//	> curl --remote-name --remote-header-name "http://localhost:8080/contacts/export"
func (s *Service) exportContacts(c *gin.Context) {
	contacts, err := s.repo.List()
	if err != nil {
		s.serverError(c, "list contacts for export", err)
		return
	}
	var buf strings.Builder
	if err := transfer.Export(&buf, contacts); err != nil {
		s.serverError(c, "serialize export", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="contacts.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(buf.String()))
}

// importContacts reads a CSV document from the multipart field 'csv' and
// inserts one contact per row. Rows fail independently: on a partial failure
// the response lists a bounded preview of the failing rows with status 400.
// A structurally malformed document aborts the import with status 500 and no
// rows committed. The temporary uploaded document is removed on every exit
// path.
func (s *Service) importContacts(c *gin.Context) {
	file, err := c.FormFile("csv")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	tmp, err := os.CreateTemp("", "contacts-import-*.csv")
	if err != nil {
		s.serverError(c, "create temp file", err)
		return
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)
	if err := c.SaveUploadedFile(file, tmpName); err != nil {
		s.serverError(c, "spool upload", err)
		return
	}
	doc, err := os.Open(tmpName)
	if err != nil {
		s.serverError(c, "open spooled upload", err)
		return
	}
	defer doc.Close()

	report, err := transfer.Import(doc, s.repo)
	if err != nil {
		metrics.ImportRequests.WithLabelValues("parse_error").Inc()
		s.log.Error("CSV parse failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse CSV: " + err.Error()})
		return
	}
	metrics.ImportedRows.Add(float64(report.Imported))
	metrics.ImportRowFailures.Add(float64(len(report.Failures)))
	if len(report.Failures) > 0 {
		metrics.ImportRequests.WithLabelValues("partial").Inc()
		preview, omitted := report.Preview(maxFailurePreview)
		body := gin.H{"message": "Some contacts could not be imported.", "errors": preview}
		if omitted > 0 {
			body["omitted"] = omitted
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}
	metrics.ImportRequests.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Contacts imported successfully", "count": report.Imported})
}

// parseId reads the id URL parameter. A non-numeric id is answered with the
// NOT FOUND status code without reaching out to the database.
func parseId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "invalid id parameter"})
		return 0, false
	}
	return id, true
}

// serverError logs a store-level failure and answers with an opaque error.
func (s *Service) serverError(c *gin.Context, op string, err error) {
	s.log.Error(op, zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "database error"})
}
