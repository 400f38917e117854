package model

import (
	"fmt"
	"time"

	"github.com/ricardomaia/fundeira/params"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AccessType drives the document and approval rules for an account and never
// changes after registration.
type AccessType int

const (
	AccessTypeIndividual AccessType = iota
	AccessTypeLegalEntity
)

func (t AccessType) String() string {
	if t == AccessTypeLegalEntity {
		return "legal_entity"
	}
	return "individual"
}

type Gender int

const (
	GenderMale Gender = iota
	GenderFemale
)

// Staff role codes. An account is staff iff it holds at least one of them.
const (
	StaffTeam = iota
	StaffFinancialBoard
	StaffTechnicalBoard
	StaffAdviceBoard
)

var StaffNames = map[int]string{
	StaffTeam:           "team",
	StaffFinancialBoard: "financial_board",
	StaffTechnicalBoard: "technical_board",
	StaffAdviceBoard:    "advice_board",
}

// User stores a platform account. Deactivation is the terminal soft delete;
// rows are never removed.
type User struct {
	ID            uint   `gorm:"primarykey"`
	Email         string `gorm:"uniqueIndex;size:256;not null"`
	Name          string `gorm:"size:64"`
	FullName      string `gorm:"size:128"`
	Password      string `gorm:"size:64;not null"`
	Bio           string `gorm:"size:140"`
	ImageURL      string `gorm:"size:256"`
	UploadedImage string `gorm:"size:256"`
	Locale        string `gorm:"size:8"`

	AccessType AccessType               `gorm:"not null;default:0"`
	Gender     Gender                   `gorm:"default:0"`
	Staffs     datatypes.JSONSlice[int] `gorm:"type:json"`
	Admin      bool                     `gorm:"default:false;not null"`

	DeactivatedAt   *time.Time
	ReactivateToken string `gorm:"size:64;index"`
	ApprovedAt      *time.Time

	Doc1URL  string `gorm:"size:256"`
	Doc2URL  string `gorm:"size:256"`
	Doc3URL  string `gorm:"size:256"`
	Doc4URL  string `gorm:"size:256"`
	Doc5URL  string `gorm:"size:256"`
	Doc6URL  string `gorm:"size:256"`
	Doc7URL  string `gorm:"size:256"`
	Doc8URL  string `gorm:"size:256"`
	Doc9URL  string `gorm:"size:256"`
	Doc10URL string `gorm:"size:256"`
	Doc11URL string `gorm:"size:256"`
	Doc12URL string `gorm:"size:256"`
	Doc13URL string `gorm:"size:256"`

	AddressStreet string `gorm:"size:128"`
	AddressCity   string `gorm:"size:64"`
	AddressState  string `gorm:"size:32"`
	PhoneNumber   string `gorm:"size:32"`
	CPF           string `gorm:"column:cpf;size:20"`
	Twitter       string `gorm:"size:64"`

	ChannelID *uint
	Channel   *Channel

	UserTotal         *UserTotal         `gorm:"foreignKey:UserID;references:ID"`
	BankAccount       *BankAccount       `gorm:"foreignKey:UserID;references:ID"`
	Contributions     []Contribution     `gorm:"foreignKey:UserID;references:ID"`
	Projects          []Project          `gorm:"foreignKey:UserID;references:ID"`
	Unsubscribes      []Unsubscribe      `gorm:"foreignKey:UserID;references:ID"`
	CategoryFollowers []CategoryFollower `gorm:"foreignKey:UserID;references:ID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == 0 {
		u.ID = GenerateID()
	}
	return nil
}

// ActiveForAuthentication reports whether the account may hold a session.
func (u *User) ActiveForAuthentication() bool {
	return u.DeactivatedAt == nil
}

// Approved reports whether the account may publish projects. Individuals are
// always approved; legal entities need an approval no older than one year.
func (u *User) Approved() bool {
	if u.AccessType == AccessTypeIndividual {
		return true
	}
	return u.ApprovedAt != nil && u.ApprovedAt.After(time.Now().Add(-params.ApprovalValidity))
}

// PendingDocuments reports whether the account still owes identity documents.
// Legal entities go through manual approval instead, so this is always false
// for them.
func (u *User) PendingDocuments() bool {
	return u.AccessType == AccessTypeIndividual && (u.Doc12URL == "" || u.Doc13URL == "")
}

// DocumentsList returns the document slot names required for the account's
// access type: the ID and proof-of-residence slots for individuals, all
// thirteen slots for legal entities.
func (u *User) DocumentsList() []string {
	first := 1
	if u.AccessType == AccessTypeIndividual {
		first = params.IndividualFirstDocument
	}
	slots := make([]string, 0, params.DocumentSlots-first+1)
	for i := first; i <= params.DocumentSlots; i++ {
		slots = append(slots, fmt.Sprintf("doc%d_url", i))
	}
	return slots
}

// DocumentURL returns the value of a document slot by number (1-based).
func (u *User) DocumentURL(slot int) string {
	urls := []string{
		u.Doc1URL, u.Doc2URL, u.Doc3URL, u.Doc4URL, u.Doc5URL,
		u.Doc6URL, u.Doc7URL, u.Doc8URL, u.Doc9URL, u.Doc10URL,
		u.Doc11URL, u.Doc12URL, u.Doc13URL,
	}
	if slot < 1 || slot > len(urls) {
		return ""
	}
	return urls[slot-1]
}

func (u *User) IsStaff() bool {
	return len(u.Staffs) > 0
}
