package domain

import "time"

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleWriter  UserRole = "WRITER"
	RoleQA      UserRole = "QA"
	RoleAdmin   UserRole = "ADMIN"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderInProgress OrderStatus = "IN_PROGRESS"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderReviewed   OrderStatus = "REVIEWED"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "PENDING"
	AssignmentInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentCompleted  AssignmentStatus = "COMPLETED"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Order struct {
	ID            string         `json:"id"`
	StudentID     string         `json:"studentId"`
	PaperType     string         `json:"paperType"`
	NumberOfPages int            `json:"numberOfPages"`
	DueDate       string         `json:"dueDate"`
	TotalAmount   float64        `json:"totalAmount"`
	DepositAmount float64        `json:"depositAmount"`
	Status        OrderStatus    `json:"status"`
	Files         []UploadedFile `json:"uploadedFiles,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// UploadedFile metadata is immutable once created.
type UploadedFile struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
}

type Payment struct {
	ID            string        `json:"id"`
	OrderID       string        `json:"orderId"`
	Amount        float64       `json:"amount"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	TransactionID string        `json:"transactionId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type Assignment struct {
	ID        string           `json:"id"`
	OrderID   string           `json:"orderId"`
	WriterID  string           `json:"writerId"`
	Status    AssignmentStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type Review struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	QAID      string    `json:"qaId"`
	WriterID  string    `json:"writerId"`
	Rating    int       `json:"rating"`
	Comments  string    `json:"comments"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PendingRegistration is the payload staged in the cache between the
// register and complete-registration phases. No relational row exists
// for it until completion commits.
type PendingRegistration struct {
	Email         string `json:"email"`
	PaperType     string `json:"paperType"`
	NumberOfPages int    `json:"numberOfPages"`
	DueDate       string `json:"dueDate"`
}
