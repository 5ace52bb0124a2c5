package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string
	LastName     string
	Role         string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type OrderModel struct {
	ID            string `gorm:"primaryKey"`
	StudentID     string `gorm:"not null;index"`
	PaperType     string `gorm:"not null"`
	NumberOfPages int    `gorm:"not null"`
	DueDate       string
	TotalAmount   float64   `gorm:"not null"`
	DepositAmount float64   `gorm:"not null"`
	Status        string    `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

type UploadedFileModel struct {
	ID        string `gorm:"primaryKey"`
	OrderID   string `gorm:"not null;index"`
	URL       string `gorm:"not null"`
	Name      string `gorm:"not null"`
	Size      int64
	MimeType  string
	CreatedAt time.Time `gorm:"not null"`
}

type PaymentModel struct {
	ID            string  `gorm:"primaryKey"`
	OrderID       string  `gorm:"not null;index"`
	Amount        float64 `gorm:"not null"`
	PaymentStatus string  `gorm:"not null"`
	// Pointer so the unique index ignores payments without a gateway
	// transaction (NULL values never collide).
	TransactionID  *string        `gorm:"uniqueIndex"`
	GatewayPayload datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"not null"`
	UpdatedAt      time.Time      `gorm:"not null"`
}

type AssignmentModel struct {
	ID        string    `gorm:"primaryKey"`
	OrderID   string    `gorm:"not null;index"`
	WriterID  string    `gorm:"not null;index"`
	Status    string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type ReviewModel struct {
	ID        string `gorm:"primaryKey"`
	OrderID   string `gorm:"not null;index"`
	QAID      string `gorm:"column:qa_id;not null;index"`
	WriterID  string `gorm:"not null;index"`
	Rating    int    `gorm:"not null"`
	Comments  string
	Status    string
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
