package repository

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gitlab.com/contactdeck/contacts-manager/internal/model"
)

// ValidationError reports that a contact submitted for creation is missing
// one of the required fields.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %q is missing or empty", e.Field)
}

// contactRow mirrors one row of the contacts table. The favorite flag is kept
// in its 0/1 storage form; tags and profilepic may be NULL in rows written
// before those columns existed.
type contactRow struct {
	Id         int64          `db:"id"`
	Name       string         `db:"name"`
	Email      string         `db:"email"`
	Phone      string         `db:"phone"`
	Favorite   int            `db:"favorite"`
	Tags       sql.NullString `db:"tags"`
	ProfilePic sql.NullString `db:"profilepic"`
}

// writeRow is the shape handed to the insert and update statements, with the
// favorite flag already coerced to its 0/1 storage form.
type writeRow struct {
	Name       string `db:"name"`
	Email      string `db:"email"`
	Phone      string `db:"phone"`
	Favorite   int    `db:"favorite"`
	Tags       string `db:"tags"`
	ProfilePic string `db:"profilepic"`
}

// Repository mediates all reads and writes of contacts. It owns the
// normalization between the storage representation (favorite as 0/1, nullable
// text columns) and the API representation (boolean favorite, never-null
// strings).
type Repository struct {
	db            *sqlx.DB
	insert        *sqlx.NamedStmt
	update        *sqlx.Stmt
	deleteWhereId *sqlx.Stmt
}

// New wraps the specified sql database and prepares all statements. The
// database argument can be a real database for production use or a mock
// database within unit tests.
func New(sqlDB *sql.DB) (*Repository, error) {
	r := &Repository{db: sqlx.NewDb(sqlDB, "mysql")}

	// Prepared statements offer a significant speed increase if executed many times.
	var err error
	r.insert, err = r.db.PrepareNamed(`
		INSERT INTO contacts (name, email, phone, favorite, tags, profilepic)
		VALUES (:name, :email, :phone, :favorite, :tags, :profilepic)
	`)
	if err != nil {
		return nil, err
	}
	r.update, err = r.db.Preparex(`
		UPDATE contacts SET name=?, email=?, phone=?, favorite=?, tags=?, profilepic=? WHERE id=?
	`)
	if err != nil {
		return nil, err
	}
	r.deleteWhereId, err = r.db.Preparex(`
		DELETE FROM contacts WHERE id = ?
	`)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases the prepared statements and the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// List returns all contacts in the store's natural order. The order is not
// guaranteed to be stable across calls.
func (r *Repository) List() ([]model.Contact, error) {
	var rows []contactRow
	if err := r.db.Select(&rows, "SELECT * FROM contacts"); err != nil {
		return nil, err
	}
	contacts := make([]model.Contact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, row.toContact())
	}
	return contacts, nil
}

// Create validates and inserts a new contact and returns it together with the
// id assigned by the database. Name, email and phone must be non-empty;
// otherwise a ValidationError is returned and nothing is written.
func (r *Repository) Create(in model.ContactInput) (model.Contact, error) {
	if err := validate(in); err != nil {
		return model.Contact{}, err
	}
	result, err := r.insert.Exec(toWriteRow(in))
	if err != nil {
		return model.Contact{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Contact{}, err
	}
	return toContact(id, in), nil
}

// Update replaces all mutable fields of the contact at the given id and
// returns the new version. The write is issued without checking that the id
// exists, so updating an unknown id is a silent no-op that still returns the
// submitted data.
func (r *Repository) Update(id int64, in model.ContactInput) (model.Contact, error) {
	row := toWriteRow(in)
	_, err := r.update.Exec(row.Name, row.Email, row.Phone, row.Favorite, row.Tags, row.ProfilePic, id)
	if err != nil {
		return model.Contact{}, err
	}
	return toContact(id, in), nil
}

// Delete removes the contact at the given id. Deleting an id that does not
// exist is not an error.
func (r *Repository) Delete(id int64) error {
	_, err := r.deleteWhereId.Exec(id)
	return err
}

func validate(in model.ContactInput) error {
	if in.Name == "" {
		return &ValidationError{Field: "name"}
	}
	if in.Email == "" {
		return &ValidationError{Field: "email"}
	}
	if in.Phone == "" {
		return &ValidationError{Field: "phone"}
	}
	return nil
}

func toWriteRow(in model.ContactInput) writeRow {
	favorite := 0
	if in.Favorite {
		favorite = 1
	}
	return writeRow{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Favorite:   favorite,
		Tags:       in.Tags,
		ProfilePic: in.ProfilePic,
	}
}

func toContact(id int64, in model.ContactInput) model.Contact {
	return model.Contact{
		Id:         id,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Favorite:   in.Favorite,
		Tags:       in.Tags,
		ProfilePic: in.ProfilePic,
	}
}

func (row contactRow) toContact() model.Contact {
	return model.Contact{
		Id:         row.Id,
		Name:       row.Name,
		Email:      row.Email,
		Phone:      row.Phone,
		Favorite:   row.Favorite != 0,
		Tags:       row.Tags.String,
		ProfilePic: row.ProfilePic.String,
	}
}
