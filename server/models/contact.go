package models

import (
	"strings"
	"unicode"

	pkgErrors "github.com/pkg/errors"
)

const MAX_CONTACTS_PER_USER = 4

type Contact struct {
	BaseModel
	UserID          uint   `json:"user_id" gorm:"not null;index"`
	Name            string `json:"name" validate:"required"`
	Phone           string `json:"phone" validate:"required,phone"`
	NormalizedPhone string `json:"-" gorm:"not null;index"`
}

type contactCounts struct {
	Total    int64
	Matching int64
}

// NormalizePhone keeps only the ASCII digits of 'phone'
func NormalizePhone(phone string) string {
	var builder strings.Builder
	for _, r := range phone {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// AddContact stores a new emergency contact for 'userID'.
// A phone already saved for the user (compared digits only) returns ErrDuplicateContact,
// which takes precedence over ErrContactLimit once MAX_CONTACTS_PER_USER is reached.
//
// The count and the insert are not atomic, so two concurrent requests for
// the same user may both pass the checks.
func (store *Store) AddContact(userID uint, name, phone string) (*Contact, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	normalizedPhone := NormalizePhone(phone)

	if name == "" || phone == "" || normalizedPhone == "" {
		return nil, ErrValidation
	}

	counts := contactCounts{}
	err := store.db.Model(&Contact{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN normalized_phone = ? THEN 1 ELSE 0 END), 0) AS matching", normalizedPhone).
		Where("user_id = ?", userID).
		Scan(&counts).Error
	if err != nil {
		return nil, pkgErrors.Wrap(err, "AddContact")
	}

	if counts.Matching > 0 {
		return nil, ErrDuplicateContact
	}

	if counts.Total >= MAX_CONTACTS_PER_USER {
		return nil, ErrContactLimit
	}

	contact := &Contact{UserID: userID, Name: name, Phone: phone, NormalizedPhone: normalizedPhone}
	err = store.db.Create(contact).Error
	if err != nil {
		return nil, pkgErrors.Wrap(err, "AddContact")
	}

	return contact, nil
}

// ListContacts returns the user's contacts in insertion order
func (store *Store) ListContacts(userID uint) ([]Contact, error) {
	contacts := []Contact{}
	err := store.db.Where("user_id = ?", userID).Order("id asc").Find(&contacts).Error
	if err != nil {
		return nil, pkgErrors.Wrap(err, "ListContacts")
	}

	return contacts, nil
}

// DeleteContact removes contact 'id'
func (store *Store) DeleteContact(id uint) error {
	res := store.db.Delete(&Contact{}, id)
	if res.Error != nil {
		return pkgErrors.Wrap(res.Error, "DeleteContact")
	}

	if res.RowsAffected == 0 {
		return ErrContactNotFound
	}

	return nil
}
